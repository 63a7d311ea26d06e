package fat_test

import (
	"testing"

	"github.com/dargueta/gofat32/cache"
	"github.com/dargueta/gofat32/eviction"
	"github.com/dargueta/gofat32/fat"
	"github.com/dargueta/gofat32/fat32err"
	"github.com/dargueta/gofat32/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeometry() fat.Geometry {
	return fat.Geometry{
		SectorSize:        512,
		SectorsPerCluster: 1,
		FATStartSector:    1,
		FATSectors:        4,
		NumFATs:           1,
		TotalClusters:     100,
	}
}

func newTestCache(t *testing.T, sectors int) *cache.Cache {
	port, err := storage.NewMemoryPort(make([]byte, sectors*storage.SectorSize))
	require.NoError(t, err)
	return cache.New(port, 8, eviction.LeastRecentlyAccessed)
}

func TestEntry_IsEndOfChain_RangeChecksRatherThanExactMatch(t *testing.T) {
	assert.True(t, fat.Entry{Next: 0x0FFFFFF8}.IsEndOfChain())
	assert.True(t, fat.Entry{Next: 0x0FFFFFFF}.IsEndOfChain())
	assert.True(t, fat.Entry{Next: 0x0FFFFFFA}.IsEndOfChain())
	assert.False(t, fat.Entry{Next: 0x0FFFFFF7}.IsEndOfChain())
	assert.False(t, fat.Entry{Next: 5}.IsEndOfChain())
}

func TestReadWriteEntry_RoundTrip(t *testing.T) {
	geo := newTestGeometry()
	c := newTestCache(t, 20)

	require.NoError(t, fat.WriteEntry(c, geo, 5, fat.Entry{Next: 42}))

	entry, err := fat.ReadEntry(c, geo, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 42, entry.Next)
}

func TestAllocator_AllocatesFreeClusterAndMarksEndOfChain(t *testing.T) {
	geo := newTestGeometry()
	c := newTestCache(t, 20)
	alloc := fat.NewAllocator(c, geo)

	cluster, err := alloc.Allocate()
	require.NoError(t, err)
	assert.EqualValues(t, fat.FirstDataCluster, cluster)

	entry, err := fat.ReadEntry(c, geo, cluster)
	require.NoError(t, err)
	assert.True(t, entry.IsEndOfChain())
}

func TestAllocator_SkipsAllocatedClustersAndReturnsDiskFull(t *testing.T) {
	geo := newTestGeometry()
	geo.TotalClusters = 3 // clusters 2, 3, 4 only
	c := newTestCache(t, 20)
	alloc := fat.NewAllocator(c, geo)

	for i := 0; i < 3; i++ {
		_, err := alloc.Allocate()
		require.NoError(t, err)
	}

	_, err := alloc.Allocate()
	assert.ErrorIs(t, err, fat32err.ErrDiskFull)
}

func TestTracer_WalksChainToEnd(t *testing.T) {
	geo := newTestGeometry()
	c := newTestCache(t, 20)

	require.NoError(t, fat.WriteEntry(c, geo, 2, fat.Entry{Next: 3}))
	require.NoError(t, fat.WriteEntry(c, geo, 3, fat.Entry{Next: 4}))
	require.NoError(t, fat.MarkEndOfChain(c, geo, 4))

	tracer := fat.NewTracer(c, geo, 2)
	clusters, err := tracer.Collect()
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 4}, clusters)
}

func TestTracer_GrowChainExtendsAfterEnd(t *testing.T) {
	geo := newTestGeometry()
	c := newTestCache(t, 20)
	alloc := fat.NewAllocator(c, geo)

	require.NoError(t, fat.MarkEndOfChain(c, geo, 2))

	tracer := fat.NewTracer(c, geo, 2)
	_, err := tracer.Collect()
	require.NoError(t, err)

	grown, err := tracer.GrowChain(alloc)
	require.NoError(t, err)
	assert.NotEqualValues(t, 2, grown)

	entry, err := fat.ReadEntry(c, geo, 2)
	require.NoError(t, err)
	assert.EqualValues(t, grown, entry.Next)
}

func TestTracer_GrowChainFailsBeforeEndReached(t *testing.T) {
	geo := newTestGeometry()
	c := newTestCache(t, 20)
	alloc := fat.NewAllocator(c, geo)

	require.NoError(t, fat.WriteEntry(c, geo, 2, fat.Entry{Next: 3}))
	require.NoError(t, fat.MarkEndOfChain(c, geo, 3))

	tracer := fat.NewTracer(c, geo, 2)
	_, err := alloc.Allocate() // unrelated allocation, just to exercise the allocator
	require.NoError(t, err)

	_, _, err = tracer.Next() // consumes cluster 2, chain not yet done
	require.NoError(t, err)

	_, err = tracer.GrowChain(alloc)
	assert.ErrorIs(t, err, fat32err.ErrGrowWithoutEnd)
}
