// Package fs is the FAT32 façade: mounting a partition, resolving paths
// component by component through directory iterators, and reading and
// writing byte ranges of a file's cluster chain. It plays the role the
// teacher's driver/driver.go + drivers/fat/driverbase.go play — a thin
// orchestration layer over the lower packages — generalized to FAT32
// per _examples/original_source/src/fat/mod.rs's FatFs::mount/read/write.
package fs

import (
	"strings"

	"github.com/dargueta/gofat32/bpb"
	"github.com/dargueta/gofat32/cache"
	"github.com/dargueta/gofat32/dirent"
	"github.com/dargueta/gofat32/eviction"
	"github.com/dargueta/gofat32/fat"
	"github.com/dargueta/gofat32/fat32err"
	"github.com/dargueta/gofat32/gpt"
	"github.com/dargueta/gofat32/storage"
)

// FS is a mounted FAT32 volume.
type FS struct {
	port        storage.Port
	cache       *cache.Cache
	geo         fat.Geometry
	alloc       *fat.Allocator
	rootCluster uint32
	boot        *bpb.BootSector
}

// Mount reads the GPT header and its single partition entry off disk,
// verifies it is a Microsoft Basic Data (i.e. FAT) partition, decodes
// the FAT32 boot sector found at the start of that partition, and
// returns a ready-to-use FS backed by a sector cache of the given
// capacity and eviction policy.
func Mount(disk storage.Port, cacheCapacity int, policy eviction.Policy) (*FS, error) {
	header, err := gpt.ReadHeader(disk)
	if err != nil {
		return nil, err
	}

	partition, err := gpt.ReadPartitionEntry(disk, header, 0)
	if err != nil {
		return nil, err
	}

	if !partition.TypeGUID.Equal(gpt.MicrosoftBasicData) {
		return nil, fat32err.ErrInvalidFileSystem.WithMessage("partition 0 is not a Microsoft Basic Data partition")
	}

	view, err := storage.NewPartitionView(disk, partition.FirstLBA, partition.LastLBA)
	if err != nil {
		return nil, err
	}

	bootSectorRaw := make([]byte, storage.SectorSize)
	if err := view.ReadSector(0, bootSectorRaw); err != nil {
		return nil, err
	}

	boot, err := bpb.Decode(bootSectorRaw)
	if err != nil {
		return nil, err
	}

	c := cache.New(view, cacheCapacity, policy)
	geo := fat.NewGeometry(boot)

	return &FS{
		port:        view,
		cache:       c,
		geo:         geo,
		alloc:       fat.NewAllocator(c, geo),
		rootCluster: boot.RootCluster,
		boot:        boot,
	}, nil
}

// Unmount flushes every dirty cache entry back to storage.
func (f *FS) Unmount() error {
	return f.cache.Flush()
}

// BootSector exposes the decoded boot sector this volume was mounted
// from.
func (f *FS) BootSector() *bpb.BootSector {
	return f.boot
}

// splitPath breaks a "/"-separated path into its non-empty components.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// resolve walks path component by component from the root directory,
// returning the directory entry for the final component.
func (f *FS) resolve(path string) (dirent.Entry, error) {
	cluster := f.rootCluster
	parts := splitPath(path)

	if len(parts) == 0 {
		return dirent.NewDir([8]byte{}, cluster), nil
	}

	var found dirent.Entry
	for i, part := range parts {
		it := dirent.NewIterator(f.cache, f.geo, cluster)
		found = dirent.Entry{}
		matched := false

		for {
			entry, ok, err := it.Next()
			if err != nil {
				return dirent.Entry{}, err
			}
			if !ok {
				break
			}
			if entry.FileName() == part {
				found = entry
				matched = true
				break
			}
		}

		if !matched {
			return dirent.Entry{}, fat32err.ErrNotFound.WithMessage(part)
		}

		if i < len(parts)-1 {
			if !found.IsDir() {
				return dirent.Entry{}, fat32err.ErrNotADirectory.WithMessage(part)
			}
			cluster = found.Cluster()
		}
	}

	return found, nil
}

// Stat resolves path and returns its directory entry.
func (f *FS) Stat(path string) (dirent.Entry, error) {
	return f.resolve(path)
}

// ReadDir lists the entries of the directory at path.
func (f *FS) ReadDir(path string) ([]dirent.Entry, error) {
	entry, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	if !entry.IsDir() && path != "" && path != "/" {
		return nil, fat32err.ErrNotADirectory.WithMessage(path)
	}

	cluster := f.rootCluster
	if path != "" && path != "/" {
		cluster = entry.Cluster()
	}

	it := dirent.NewIterator(f.cache, f.geo, cluster)
	var entries []dirent.Entry
	for {
		e, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}
