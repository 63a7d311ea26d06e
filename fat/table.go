// Package fat implements the FAT32 allocation table: cluster address
// math, cluster-chain traversal and growth, and free-cluster allocation.
// It rides on top of the cache package for every sector it touches,
// exactly the way the original's FatEntry/FatEntryTracer ride on top of
// its SectorCache.
package fat

import (
	"encoding/binary"

	"github.com/dargueta/gofat32/bpb"
	"github.com/dargueta/gofat32/cache"
	"github.com/dargueta/gofat32/fat32err"
)

// FirstDataCluster is the first valid data cluster number on any FAT
// volume; clusters 0 and 1 are reserved.
const FirstDataCluster uint32 = 2

const entrySize = 4

// free and eocWrite are the sentinel values this module writes. Reading
// an end-of-chain marker uses a range check instead (see IsEndOfChain):
// the FAT32 standard allows any value in 0x0FFFFFF8-0x0FFFFFFF to mean
// end-of-chain, and other implementations are free to use any of them.
const free uint32 = 0x00000000
const eocWrite uint32 = 0x0FFFFFF8

// Geometry holds the address-math constants derived from a mounted
// volume's boot sector, grounded on the original's cluster_to_table_pos
// and cluster_to_sector.
type Geometry struct {
	SectorSize        uint32
	SectorsPerCluster uint32
	FATStartSector    uint32
	FATSectors        uint32
	NumFATs           uint32
	TotalClusters     uint32
}

// NewGeometry builds a Geometry from a decoded boot sector.
func NewGeometry(bs *bpb.BootSector) Geometry {
	return Geometry{
		SectorSize:        bs.BytesPerSector,
		SectorsPerCluster: bs.SectorsPerCluster,
		FATStartSector:    bs.StartingFATSector,
		FATSectors:        bs.SectorsPerFAT,
		NumFATs:           bs.NumFATs,
		TotalClusters:     bs.TotalClusters,
	}
}

// TablePosition converts a cluster index into the sector and byte offset
// of its 4-byte FAT entry, per cluster_to_table_pos_inner.
func (g Geometry) TablePosition(cluster uint32) (sectorIdx uint64, byteOffset uint32) {
	entriesPerSector := g.SectorSize / entrySize
	sectorIdx = uint64(g.FATStartSector) + uint64(cluster)/uint64(entriesPerSector)
	byteOffset = (cluster % entriesPerSector) * entrySize
	return
}

// ClusterToSector converts a cluster index plus a byte offset within that
// cluster into an absolute sector index and byte offset within that
// sector, per cluster_to_sector. See SPEC_FULL.md §12 for why this does
// not apply an additional "-2" adjustment.
func (g Geometry) ClusterToSector(cluster uint32, offset uint32) (sectorIdx uint64, sectorOffset uint32) {
	sector := uint64(cluster) * uint64(g.SectorsPerCluster)
	sector += uint64(offset) / uint64(g.SectorSize)
	sector += uint64(g.FATStartSector) + uint64(g.FATSectors)*uint64(g.NumFATs)

	return sector, offset % g.SectorSize
}

// ClusterSectorRange returns the half-open range of sectors a cluster
// occupies.
func (g Geometry) ClusterSectorRange(cluster uint32) (start, end uint64) {
	start, _ = g.ClusterToSector(cluster, 0)
	return start, start + uint64(g.SectorsPerCluster)
}

// Entry is a single cell of the FAT: either the index of the next
// cluster in a chain, free, or the end of a chain.
type Entry struct {
	Next uint32
}

func entryFromRaw(raw uint32) Entry {
	return Entry{Next: raw & 0x0FFFFFFF}
}

// IsFree reports whether this entry marks an unallocated cluster.
func (e Entry) IsFree() bool {
	return e.Next == free
}

// IsEndOfChain reports whether this entry terminates a cluster chain.
// Per the FAT32 standard (and SPEC_FULL.md §12), any value in
// 0x0FFFFFF8-0x0FFFFFFF counts, not just the single value
// 0xFFFFFFF8 the original compares against exactly.
func (e Entry) IsEndOfChain() bool {
	return e.Next >= 0x0FFFFFF8 && e.Next <= 0x0FFFFFFF
}

// ReadEntry reads the FAT entry for cluster from the cache.
func ReadEntry(c *cache.Cache, geo Geometry, cluster uint32) (Entry, error) {
	sectorIdx, offset := geo.TablePosition(cluster)

	lease, err := c.Get(sectorIdx)
	if err != nil {
		return Entry{}, err
	}
	defer lease.Release()

	raw := binary.LittleEndian.Uint32(lease.Data()[offset : offset+entrySize])
	return entryFromRaw(raw), nil
}

// WriteEntry overwrites the FAT entry for cluster.
func WriteEntry(c *cache.Cache, geo Geometry, cluster uint32, entry Entry) error {
	sectorIdx, offset := geo.TablePosition(cluster)

	lease, err := c.Get(sectorIdx)
	if err != nil {
		return err
	}
	defer lease.Release()

	binary.LittleEndian.PutUint32(lease.Data()[offset:offset+entrySize], entry.Next&0x0FFFFFFF)
	lease.MarkDirty()
	return nil
}

// MarkEndOfChain writes the allocation-time end-of-chain sentinel into
// cluster's FAT entry.
func MarkEndOfChain(c *cache.Cache, geo Geometry, cluster uint32) error {
	return WriteEntry(c, geo, cluster, Entry{Next: eocWrite})
}

// MarkFree writes the free sentinel into cluster's FAT entry.
func MarkFree(c *cache.Cache, geo Geometry, cluster uint32) error {
	return WriteEntry(c, geo, cluster, Entry{Next: free})
}

// Allocator finds and reserves free clusters, scanning forward from a
// remembered starting point the way the original's next_free_cluster
// does, but — per SPEC_FULL.md §12's open-question decision — giving up
// with fat32err.ErrDiskFull after one full sweep instead of spinning
// forever on a full volume.
type Allocator struct {
	cache *cache.Cache
	geo   Geometry
	next  uint32
}

// NewAllocator creates an Allocator seeded to scan starting at the first
// data cluster, per SPEC_FULL.md §12 (not the root directory cluster,
// which the original incorrectly uses).
func NewAllocator(c *cache.Cache, geo Geometry) *Allocator {
	return &Allocator{cache: c, geo: geo, next: FirstDataCluster}
}

// Allocate reserves one free cluster, marks it as an end-of-chain (so it
// is immediately usable as the tail of a new chain), and returns its
// index.
func (a *Allocator) Allocate() (uint32, error) {
	numClusters := a.geo.TotalClusters
	start := a.next

	for examined := uint32(0); examined < numClusters; examined++ {
		candidate := FirstDataCluster + (a.next-FirstDataCluster)%(numClusters)

		entry, err := ReadEntry(a.cache, a.geo, candidate)
		if err != nil {
			return 0, err
		}

		if entry.IsFree() {
			if err := MarkEndOfChain(a.cache, a.geo, candidate); err != nil {
				return 0, err
			}
			a.next = FirstDataCluster + (candidate-FirstDataCluster+1)%numClusters
			return candidate, nil
		}

		a.next = FirstDataCluster + (a.next-FirstDataCluster+1)%numClusters
	}

	a.next = start
	return 0, fat32err.ErrDiskFull
}
