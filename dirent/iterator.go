package dirent

import (
	"github.com/dargueta/gofat32/cache"
	"github.com/dargueta/gofat32/fat"
	"github.com/dargueta/gofat32/fat32err"
)

// Iterator walks the directory entries stored in a cluster chain, one
// 32-byte entry at a time, transparently following the chain across
// cluster boundaries and skipping Long File Name fragments. It
// generalizes the original's DirIter, trading its borrow-checked
// lifetime parameters for a cache/Geometry pair the way this module's
// fat.Tracer already does.
type Iterator struct {
	c    *cache.Cache
	geo  fat.Geometry
	tracer      *fat.Tracer
	currentClus uint32
	offset      uint32 // offset within currentClus; meaningless once exhausted
	exhausted   bool
	hitEndClus  uint32
	hitEndOff   uint32
	lastClus    uint32 // cluster/offset of the entry Next most recently returned
	lastOff     uint32
}

// NewIterator starts iterating the directory whose entries begin at
// startCluster.
func NewIterator(c *cache.Cache, geo fat.Geometry, startCluster uint32) *Iterator {
	return &Iterator{
		c:           c,
		geo:         geo,
		tracer:      fat.NewTracer(c, geo, startCluster),
		currentClus: startCluster,
	}
}

func (it *Iterator) readEntry(cluster, offset uint32) (Entry, error) {
	sectorIdx, sectorOffset := it.geo.ClusterToSector(cluster, offset)
	lease, err := it.c.Get(sectorIdx)
	if err != nil {
		return Entry{}, err
	}
	defer lease.Release()

	return Decode(lease.Data()[sectorOffset : sectorOffset+Size]), nil
}

func (it *Iterator) writeEntry(cluster, offset uint32, e Entry) error {
	sectorIdx, sectorOffset := it.geo.ClusterToSector(cluster, offset)
	lease, err := it.c.Get(sectorIdx)
	if err != nil {
		return err
	}
	defer lease.Release()

	e.Encode(lease.Data()[sectorOffset : sectorOffset+Size])
	lease.MarkDirty()
	return nil
}

// Next returns the next live (non-LFN-fragment) entry, or ok=false once
// the directory's end marker has been reached.
func (it *Iterator) Next() (Entry, bool, error) {
	for {
		if it.exhausted {
			return Entry{}, false, nil
		}

		entryClus, entryOff := it.currentClus, it.offset
		entry, err := it.readEntry(entryClus, entryOff)
		if err != nil {
			return Entry{}, false, err
		}

		if entry.State() == StateEnd {
			it.exhausted = true
			it.hitEndClus = it.currentClus
			it.hitEndOff = it.offset
			return Entry{}, false, nil
		}

		bytesPerCluster := it.geo.SectorsPerCluster * it.geo.SectorSize
		if it.offset+Size >= bytesPerCluster {
			next, ok, terr := it.tracer.Next()
			if terr == nil && ok && next == it.currentClus {
				// The tracer yields its starting cluster first, and that is
				// the cluster this iterator is already reading.
				next, ok, terr = it.tracer.Next()
			}
			if terr != nil {
				return Entry{}, false, terr
			}
			if !ok {
				it.exhausted = true
				return Entry{}, false, nil
			}
			it.currentClus = next
			it.offset = 0
		} else {
			it.offset += Size
		}

		if entry.State() == StateDeleted || entry.IsLongNameFragment() {
			continue
		}

		it.lastClus, it.lastOff = entryClus, entryOff
		return entry, true, nil
	}
}

// AddEntry writes e where this directory's end marker is, walking (and
// consuming) the rest of the iterator to find it, and writes a new end
// marker right after it. Deleted slots are not reused. If the new end
// marker would not fit in the same cluster, it grows the directory's
// chain by one cluster — the behavior the original left unimplemented —
// and puts the new end marker at the start of the new cluster.
func (it *Iterator) AddEntry(alloc *fat.Allocator, e Entry) error {
	for {
		_, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}

	if !it.exhausted {
		return fat32err.ErrNotImplemented.WithMessage("directory iterator did not reach its end")
	}

	bytesPerCluster := it.geo.SectorsPerCluster * it.geo.SectorSize

	if it.hitEndOff+2*Size > bytesPerCluster {
		// The terminator wouldn't fit after a new entry in this cluster, but
		// the entry itself still has room: overwrite the old End marker with
		// e, grow the chain, and move the terminator to the start of the new
		// cluster. Writing e into the new cluster instead (as a literal
		// reading of "grow, then place the entry" might suggest) would strand
		// it past the still-present old End marker, which Next stops at
		// before ever crossing the cluster boundary.
		//
		// Grow the chain directly rather than through fat.Tracer.GrowChain:
		// that method requires the tracer to have fully consumed the
		// chain itself, but this iterator's tracer only advances when a
		// directory cluster boundary is crossed, which may lag behind
		// hitEndClus when the final cluster still had room for entries.
		newCluster, err := alloc.Allocate()
		if err != nil {
			return err
		}
		if err := fat.WriteEntry(it.c, it.geo, it.hitEndClus, fat.Entry{Next: newCluster}); err != nil {
			return err
		}

		if err := it.writeEntry(it.hitEndClus, it.hitEndOff, e); err != nil {
			return err
		}
		if err := it.writeEntry(newCluster, 0, Entry{}); err != nil {
			return err
		}

		it.currentClus = it.hitEndClus
		it.offset = it.hitEndOff
		it.exhausted = false
		return nil
	}

	if err := it.writeEntry(it.hitEndClus, it.hitEndOff, e); err != nil {
		return err
	}
	if err := it.writeEntry(it.hitEndClus, it.hitEndOff+Size, Entry{}); err != nil {
		return err
	}

	it.currentClus = it.hitEndClus
	it.offset = it.hitEndOff
	it.exhausted = false
	return nil
}

// DeleteAt marks the entry at the given cluster/offset as deleted.
// Callers must pass back the cluster/offset pair they want deleted
// (typically from Position); DeleteAt exists instead of an implicit "last returned" cursor
// so a caller can delete an entry found earlier without re-walking.
func (it *Iterator) DeleteAt(cluster, offset uint32) error {
	entry, err := it.readEntry(cluster, offset)
	if err != nil {
		return err
	}

	entry.Name[0] = deletedMarker
	return it.writeEntry(cluster, offset, entry)
}

// Position returns the cluster and in-cluster byte offset of the entry
// Next most recently returned, for later use with DeleteAt. Next records
// this before advancing its cursor, since the cursor may already point
// into the following cluster by the time the caller asks.
func (it *Iterator) Position() (cluster, offset uint32) {
	return it.lastClus, it.lastOff
}
