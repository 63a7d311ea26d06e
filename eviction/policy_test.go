package eviction_test

import (
	"testing"

	"github.com/dargueta/gofat32/eviction"
	"github.com/stretchr/testify/assert"
)

func TestLeastRecentlyAccessed_PicksSmallestCounter(t *testing.T) {
	candidates := []eviction.Entry{
		{LastAccessed: 5},
		{LastAccessed: 1},
		{LastAccessed: 9},
	}
	assert.Equal(t, 1, eviction.LeastRecentlyAccessed.PickVictim(candidates))
}

func TestMostRecentlyAccessed_PicksLargestCounter(t *testing.T) {
	candidates := []eviction.Entry{
		{LastAccessed: 5},
		{LastAccessed: 1},
		{LastAccessed: 9},
	}
	assert.Equal(t, 2, eviction.MostRecentlyAccessed.PickVictim(candidates))
}

func TestOldest_PicksSmallestAge(t *testing.T) {
	candidates := []eviction.Entry{{Age: 3}, {Age: 10}, {Age: 1}}
	assert.Equal(t, 2, eviction.Oldest.PickVictim(candidates))
}

func TestYoungest_PicksLargestAge(t *testing.T) {
	candidates := []eviction.Entry{{Age: 3}, {Age: 10}, {Age: 1}}
	assert.Equal(t, 1, eviction.Youngest.PickVictim(candidates))
}

func TestUnmodifiedFirst_PrefersCleanOverDirtyRegardlessOfInner(t *testing.T) {
	policy := eviction.UnmodifiedFirst(eviction.Oldest)
	candidates := []eviction.Entry{
		{Age: 0, Dirty: true},
		{Age: 1, Dirty: false},
	}
	assert.Equal(t, 1, policy.PickVictim(candidates))
}

func TestModifiedFirst_PrefersDirtyOverCleanRegardlessOfInner(t *testing.T) {
	policy := eviction.ModifiedFirst(eviction.Youngest)
	candidates := []eviction.Entry{
		{Age: 9, Dirty: false},
		{Age: 1, Dirty: true},
	}
	assert.Equal(t, 1, policy.PickVictim(candidates))
}

func TestUnmodifiedFirst_BreaksTiesWithInner(t *testing.T) {
	policy := eviction.UnmodifiedFirst(eviction.Oldest)
	candidates := []eviction.Entry{
		{Age: 5, Dirty: false},
		{Age: 9, Dirty: false},
	}
	assert.Equal(t, 0, policy.PickVictim(candidates))
}
