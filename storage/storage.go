// Package storage defines the sector-addressed medium that the rest of
// this module rides on top of. A Port is the thing a host gives us: a
// GPT partition on a raw block device, a memory-mapped image, whatever —
// as long as it can read and write fixed-size sectors.
package storage

import "github.com/dargueta/gofat32/fat32err"

// SectorSize is the only sector size this module supports; see the
// non-goals around non-512-byte sectors.
const SectorSize = 512

// Port is the storage abstraction every higher-level package in this
// module is built against. Implementations must never panic; out-of-range
// accesses are reported through fat32err sentinels instead.
type Port interface {
	// ReadSector fills buf (which must be exactly SectorSize bytes) with
	// the contents of the sector at the given index.
	ReadSector(sectorIdx uint64, buf []byte) error

	// WriteSector writes buf (which must be exactly SectorSize bytes) to
	// the sector at the given index.
	WriteSector(sectorIdx uint64, buf []byte) error

	// SectorCount returns the number of sectors addressable through this
	// port.
	SectorCount() uint64
}

func checkBounds(p Port, sectorIdx uint64, buf []byte) error {
	if len(buf) != SectorSize {
		return fat32err.ErrInvalidArgument.WithMessage("buffer must be exactly one sector")
	}
	if sectorIdx >= p.SectorCount() {
		return fat32err.ErrOutOfRange.WithMessage("sector index beyond end of medium")
	}
	return nil
}
