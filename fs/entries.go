package fs

import (
	"github.com/dargueta/gofat32/dirent"
	"github.com/dargueta/gofat32/fat32err"
)

// resolveParentCluster walks every path component but the last, returning
// the starting cluster of the directory that should contain it.
func (f *FS) resolveParentCluster(parts []string) (uint32, error) {
	cluster := f.rootCluster
	for _, part := range parts[:len(parts)-1] {
		it := dirent.NewIterator(f.cache, f.geo, cluster)
		matched := false
		for {
			e, ok, err := it.Next()
			if err != nil {
				return 0, err
			}
			if !ok {
				break
			}
			if e.FileName() == part {
				if !e.IsDir() {
					return 0, fat32err.ErrNotADirectory.WithMessage(part)
				}
				cluster = e.Cluster()
				matched = true
				break
			}
		}
		if !matched {
			return 0, fat32err.ErrNotFound.WithMessage(part)
		}
	}
	return cluster, nil
}

// CreateFile adds a new, empty file entry named by the last component of
// path inside the directory named by the rest of it. name and ext are the
// raw space-padded 8.3 components, matching dirent.NewFile's expectations.
func (f *FS) CreateFile(path string, name [8]byte, ext [3]byte) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fat32err.ErrInvalidArgument.WithMessage("cannot create the root directory")
	}

	if _, err := f.resolve(path); err == nil {
		return fat32err.ErrExists.WithMessage(path)
	}

	parentCluster, err := f.resolveParentCluster(parts)
	if err != nil {
		return err
	}

	cluster, err := f.alloc.Allocate()
	if err != nil {
		return err
	}

	entry := dirent.NewFile(name, ext, cluster)
	it := dirent.NewIterator(f.cache, f.geo, parentCluster)
	return it.AddEntry(f.alloc, entry)
}

// Mkdir adds a new, empty subdirectory entry named by the last component
// of path inside the directory named by the rest of it.
func (f *FS) Mkdir(path string, name [8]byte) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fat32err.ErrInvalidArgument.WithMessage("cannot create the root directory")
	}

	if _, err := f.resolve(path); err == nil {
		return fat32err.ErrExists.WithMessage(path)
	}

	parentCluster, err := f.resolveParentCluster(parts)
	if err != nil {
		return err
	}

	cluster, err := f.alloc.Allocate()
	if err != nil {
		return err
	}

	entry := dirent.NewDir(name, cluster)
	it := dirent.NewIterator(f.cache, f.geo, parentCluster)
	return it.AddEntry(f.alloc, entry)
}

// Remove overwrites the directory entry at path with the deleted marker.
// Per this module's directory-iterator semantics, the entry's clusters and
// recorded file size are not reclaimed by this operation alone.
func (f *FS) Remove(path string) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fat32err.ErrInvalidArgument.WithMessage("cannot remove the root directory")
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
			cluster, offset := it.Position()
			return it.DeleteAt(cluster, offset)
		}
	}

	return fat32err.ErrNotFound.WithMessage(name)
}
