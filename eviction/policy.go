// Package eviction provides the pluggable eviction policies the sector
// cache consults when it needs to make room: a total order over resident
// cache entries, the maximum of which is evicted first.
//
// This mirrors the original cache's EvictionPolicy trait and its
// eviction_policies::policy! macro, which generated one type per policy;
// Go has no macro system, so each policy here is just a small type
// implementing one interface instead.
package eviction

// Entry is the subset of cache-entry state an eviction policy needs to
// rank candidates. Age and LastAccessed are monotonically increasing
// counters maintained by the cache, not wall-clock time.
type Entry struct {
	Age          uint64
	LastAccessed uint64
	Dirty        bool
}

// Policy orders resident cache entries by eviction preference. Compare
// follows the usual three-way comparator convention: a positive result
// means a should be evicted before b, a negative result means the
// opposite, zero means the policy has no preference between them.
//
// PickVictim returns the index, within candidates, of the entry that
// should be evicted: the maximum under Compare, since "greatest" is
// "most evictable" by this module's convention (mirroring the original's
// Ord impl, where CacheEntry::Free sorts greater than everything else).
type Policy interface {
	Compare(a, b Entry) int
	PickVictim(candidates []Entry) int
}

// base implements the default PickVictim (a linear max-by-Compare scan)
// shared by every built-in policy, exactly as the original trait's
// default pick_entry_to_evict does for every policy generated by its
// macro.
type base struct {
	compare func(a, b Entry) int
}

func (p base) Compare(a, b Entry) int {
	return p.compare(a, b)
}

func (p base) PickVictim(candidates []Entry) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if p.compare(candidates[i], candidates[best]) > 0 {
			best = i
		}
	}
	return best
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Youngest evicts the entry with the largest Age (most recently loaded
// into the cache, not most recently touched).
var Youngest Policy = base{compare: func(a, b Entry) int { return cmpUint64(a.Age, b.Age) }}

// Oldest evicts the entry with the smallest Age (least recently loaded).
var Oldest Policy = base{compare: func(a, b Entry) int { return cmpUint64(b.Age, a.Age) }}

// MostRecentlyAccessed evicts the entry with the largest LastAccessed
// counter.
var MostRecentlyAccessed Policy = base{compare: func(a, b Entry) int { return cmpUint64(a.LastAccessed, b.LastAccessed) }}

// LeastRecentlyAccessed evicts the entry with the smallest LastAccessed
// counter — classic LRU.
var LeastRecentlyAccessed Policy = base{compare: func(a, b Entry) int { return cmpUint64(b.LastAccessed, a.LastAccessed) }}

// dirtyAware, built by UnmodifiedFirst and ModifiedFirst, composes an
// outer dirty/clean preference with an inner tie-breaking policy, mirroring the original's
// UnmodifiedFirst<Inner>/ModifiedFirst<Inner> wrappers.
type dirtyAware struct {
	inner        Policy
	preferClean  bool
}

func (p dirtyAware) Compare(a, b Entry) int {
	if a.Dirty != b.Dirty {
		// A clean entry should be evicted before a dirty one when
		// preferClean is true (UnmodifiedFirst), so a clean entry
		// compares greater in that case.
		if a.Dirty {
			if p.preferClean {
				return -1
			}
			return 1
		}
		if p.preferClean {
			return 1
		}
		return -1
	}
	return p.inner.Compare(a, b)
}

func (p dirtyAware) PickVictim(candidates []Entry) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if p.Compare(candidates[i], candidates[best]) > 0 {
			best = i
		}
	}
	return best
}

// UnmodifiedFirst evicts clean entries before ever evicting a dirty one,
// breaking ties among same-dirty-state entries with inner.
func UnmodifiedFirst(inner Policy) Policy {
	return dirtyAware{inner: inner, preferClean: true}
}

// ModifiedFirst evicts dirty entries before ever evicting a clean one,
// breaking ties among same-dirty-state entries with inner.
func ModifiedFirst(inner Policy) Policy {
	return dirtyAware{inner: inner, preferClean: false}
}
