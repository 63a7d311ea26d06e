package fs

import (
	"github.com/dargueta/gofat32/dirent"
	"github.com/dargueta/gofat32/fat"
	"github.com/dargueta/gofat32/fat32err"
	"github.com/noxer/bytewriter"
)

// ReadFile returns the first n bytes (or fewer, if the file is shorter)
// of the file at path, starting at offset.
func (f *FS) ReadFile(path string, offset int64, n int) ([]byte, error) {
	entry, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	if entry.IsDir() {
		return nil, fat32err.ErrIsADirectory.WithMessage(path)
	}

	if offset >= int64(entry.FileSize) {
		return nil, nil
	}
	remaining := int64(entry.FileSize) - offset
	if int64(n) > remaining {
		n = int(remaining)
	}

	out := make([]byte, 0, n)
	sink := bytewriter.New(make([]byte, 0, n))

	bytesPerCluster := int64(f.geo.SectorsPerCluster * f.geo.SectorSize)
	clusterIdx := offset / bytesPerCluster
	offsetInCluster := uint32(offset % bytesPerCluster)

	chain, err := fat.NewTracer(f.cache, f.geo, entry.Cluster()).Collect()
	if err != nil {
		return nil, err
	}
	if clusterIdx >= int64(len(chain)) {
		return nil, fat32err.ErrOutOfRange.WithMessage("read offset beyond end of cluster chain")
	}

	remainingToRead := n
	for ci := int(clusterIdx); ci < len(chain) && remainingToRead > 0; ci++ {
		cluster := chain[ci]
		for offsetInCluster < uint32(bytesPerCluster) && remainingToRead > 0 {
			sectorIdx, sectorOffset := f.geo.ClusterToSector(cluster, offsetInCluster)
			lease, err := f.cache.Get(sectorIdx)
			if err != nil {
				return nil, err
			}

			available := f.geo.SectorSize - sectorOffset
			toCopy := remainingToRead
			if int(available) < toCopy {
				toCopy = int(available)
			}

			chunk := lease.Data()[sectorOffset : sectorOffset+uint32(toCopy)]
			if _, err := sink.Write(chunk); err != nil {
				lease.Release()
				return nil, fat32err.ErrIOFailed.WrapError(err)
			}
			lease.Release()

			offsetInCluster += uint32(toCopy)
			remainingToRead -= toCopy
		}
		offsetInCluster = 0
	}

	out = append(out, sink.Bytes()...)
	return out, nil
}

// WriteFile writes data at offset into the file at path, growing its
// cluster chain as needed. It does not extend FileSize in the directory
// entry automatically to a value smaller than offset+len(data); callers
// needing sparse-file semantics are out of this module's scope (there is
// no on-disk format/mkfs non-goal carve-out for that).
func (f *FS) WriteFile(path string, offset int64, data []byte) error {
	entry, err := f.resolve(path)
	if err != nil {
		return err
	}
	if entry.IsDir() {
		return fat32err.ErrIsADirectory.WithMessage(path)
	}

	bytesPerCluster := int64(f.geo.SectorsPerCluster * f.geo.SectorSize)
	tracer := fat.NewTracer(f.cache, f.geo, entry.Cluster())

	clusterIdx := offset / bytesPerCluster
	offsetInCluster := uint32(offset % bytesPerCluster)

	var cluster uint32
	found := false
	idx := int64(0)
	for {
		c, ok, err := tracer.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if idx == clusterIdx {
			cluster = c
			found = true
			break
		}
		idx++
	}

	for !found {
		newCluster, err := tracer.GrowChain(f.alloc)
		if err != nil {
			return err
		}
		// Consume the grown cluster so the tracer's position matches the
		// invariant the walk loop above relies on: positioned just past
		// "cluster", ready to yield whatever comes after it on the next
		// Next() call.
		if _, _, err := tracer.Next(); err != nil {
			return err
		}

		if idx == clusterIdx {
			cluster = newCluster
			found = true
			break
		}
		idx++
	}

	remaining := data
	for len(remaining) > 0 {
		if offsetInCluster >= uint32(bytesPerCluster) {
			offsetInCluster = 0
			next, ok, err := tracer.Next()
			if err != nil {
				return err
			}
			if !ok {
				next, err = tracer.GrowChain(f.alloc)
				if err != nil {
					return err
				}
				// Consume the grown cluster, as the loop above does.
				if _, _, err := tracer.Next(); err != nil {
					return err
				}
			}
			cluster = next
		}

		sectorIdx, sectorOffset := f.geo.ClusterToSector(cluster, offsetInCluster)
		lease, err := f.cache.Get(sectorIdx)
		if err != nil {
			return err
		}

		available := f.geo.SectorSize - sectorOffset
		toCopy := len(remaining)
		if int(available) < toCopy {
			toCopy = int(available)
		}

		copy(lease.Data()[sectorOffset:sectorOffset+uint32(toCopy)], remaining[:toCopy])
		lease.MarkDirty()
		lease.Release()

		offsetInCluster += uint32(toCopy)
		remaining = remaining[toCopy:]
	}

	newSize := uint32(offset) + uint32(len(data))
	if newSize > entry.FileSize {
		entry.FileSize = newSize
		if err := f.updateEntry(path, entry); err != nil {
			return err
		}
	}

	return nil
}

// updateEntry rewrites the directory entry for path in place.
func (f *FS) updateEntry(path string, updated dirent.Entry) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fat32err.ErrInvalidArgument.WithMessage("cannot update the root directory's own entry")
	}

	parentCluster, err := f.resolveParentCluster(parts)
	if err != nil {
		return err
	}

	name := parts[len(parts)-1]
	it := dirent.NewIterator(f.cache, f.geo, parentCluster)
	for {
		e, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if e.FileName() == name {
			cluster, byteOffset := it.Position()
			sectorIdx, sectorOffset := f.geo.ClusterToSector(cluster, byteOffset)
			lease, err := f.cache.Get(sectorIdx)
			if err != nil {
				return err
			}
			updated.Encode(lease.Data()[sectorOffset : sectorOffset+dirent.Size])
			lease.MarkDirty()
			lease.Release()
			return nil
		}
	}

	return fat32err.ErrNotFound.WithMessage(name)
}
