package dirent_test

import (
	"testing"

	"github.com/dargueta/gofat32/cache"
	"github.com/dargueta/gofat32/dirent"
	"github.com/dargueta/gofat32/eviction"
	"github.com/dargueta/gofat32/fat"
	"github.com/dargueta/gofat32/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallGeometry is sized so a cluster is exactly one sector and holds
// exactly 16 directory entries (512 / 32), making it easy to force a
// directory-growth scenario in tests.
func smallGeometry() fat.Geometry {
	return fat.Geometry{
		SectorSize:        512,
		SectorsPerCluster: 1,
		FATStartSector:    1,
		FATSectors:        4,
		NumFATs:           1,
		TotalClusters:     50,
	}
}

func newTestCacheAndAlloc(t *testing.T) (*cache.Cache, fat.Geometry, *fat.Allocator) {
	port, err := storage.NewMemoryPort(make([]byte, 60*storage.SectorSize))
	require.NoError(t, err)
	c := cache.New(port, 16, eviction.LeastRecentlyAccessed)
	geo := smallGeometry()
	return c, geo, fat.NewAllocator(c, geo)
}

func TestIterator_WalksEntriesAndSkipsLFNAndDeleted(t *testing.T) {
	c, geo, alloc := newTestCacheAndAlloc(t)

	root, err := alloc.Allocate()
	require.NoError(t, err)

	it := dirent.NewIterator(c, geo, root)
	require.NoError(t, it.AddEntry(alloc, dirent.NewFile([8]byte{'A', ' ', ' ', ' ', ' ', ' ', ' ', ' '}, [3]byte{' ', ' ', ' '}, 5)))

	it2 := dirent.NewIterator(c, geo, root)
	require.NoError(t, it2.AddEntry(alloc, dirent.Entry{Attributes: dirent.AttrLongName}))

	itDeleted := dirent.NewIterator(c, geo, root)
	require.NoError(t, itDeleted.AddEntry(alloc, dirent.Entry{Name: [8]byte{0xE5, 'D'}}))

	it3 := dirent.NewIterator(c, geo, root)
	require.NoError(t, it3.AddEntry(alloc, dirent.NewFile([8]byte{'B', ' ', ' ', ' ', ' ', ' ', ' ', ' '}, [3]byte{' ', ' ', ' '}, 6)))

	walker := dirent.NewIterator(c, geo, root)
	var names []string
	for {
		entry, ok, err := walker.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		names = append(names, entry.FileName())
	}

	assert.Equal(t, []string{"A", "B"}, names)
}

func TestIterator_AddEntryGrowsDirectoryWhenFull(t *testing.T) {
	c, geo, alloc := newTestCacheAndAlloc(t)

	root, err := alloc.Allocate()
	require.NoError(t, err)

	// Fill the single-sector cluster up to one slot short of full: 16
	// entries fit, but the loop must always leave room for the
	// end-of-directory marker, so filling 15 leaves just 1 free slot
	// (insufficient for entry + terminator), forcing growth on the 16th add.
	for i := 0; i < 15; i++ {
		it := dirent.NewIterator(c, geo, root)
		name := [8]byte{'F', byte('0' + i/10), byte('0' + i%10)}
		require.NoError(t, it.AddEntry(alloc, dirent.NewFile(name, [3]byte{}, uint32(10+i))))
	}

	it := dirent.NewIterator(c, geo, root)
	require.NoError(t, it.AddEntry(alloc, dirent.NewFile([8]byte{'L', 'A', 'S', 'T'}, [3]byte{}, 99)))

	walker := dirent.NewIterator(c, geo, root)
	count := 0
	for {
		_, ok, err := walker.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 16, count)
}

func TestIterator_DeleteAtMarksEntryDeleted(t *testing.T) {
	c, geo, alloc := newTestCacheAndAlloc(t)
	root, err := alloc.Allocate()
	require.NoError(t, err)

	it := dirent.NewIterator(c, geo, root)
	require.NoError(t, it.AddEntry(alloc, dirent.NewFile([8]byte{'X'}, [3]byte{}, 7)))

	walker := dirent.NewIterator(c, geo, root)
	_, ok, err := walker.Next()
	require.NoError(t, err)
	require.True(t, ok)

	cluster, offset := walker.Position()
	require.NoError(t, walker.DeleteAt(cluster, offset))

	recheck := dirent.NewIterator(c, geo, root)
	_, ok, err = recheck.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}
