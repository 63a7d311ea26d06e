// Package bpb decodes and encodes the FAT32 BIOS Parameter Block carried
// in a volume's boot sector, and derives the quantities the rest of this
// module needs from it (sectors per FAT, total clusters, where the data
// region starts, and so on).
package bpb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dargueta/gofat32/fat32err"
)

// rawFAT32BootSector is the on-disk layout of a FAT32 boot sector's
// BPB and extended BPB, decoded with encoding/binary the way the
// teacher's drivers/fat/common.go and drivers/fat/fat32.go decode the
// FAT12/16 boot sector, extended with the FAT32-only fields from
// _examples/original_source/src/fat/boot_sector.rs.
type rawFAT32BootSector struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT16   uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32

	// FAT32-only extended BPB fields.
	SectorsPerFAT32  uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      uint32
	FSInfoSector     uint16
	BackupBootSector uint16
	_                [12]byte
	DriveNumber      uint8
	_                uint8
	BootSignature    uint8
	VolumeID         uint32
	VolumeLabel      [11]byte
	FileSystemType   [8]byte
}

// BootSector is the decoded, derived-field view of a FAT32 boot sector.
type BootSector struct {
	BytesPerSector    uint32
	SectorsPerCluster uint32
	ReservedSectors   uint32
	NumFATs           uint32
	HiddenSectors     uint32
	SectorsPerFAT     uint32
	RootCluster       uint32
	FSInfoSector      uint32
	BackupBootSector  uint32
	VolumeID          uint32
	VolumeLabel       string
	TotalSectors      uint32

	// Derived quantities.
	BytesPerCluster  uint32
	TotalDataSectors uint32
	TotalClusters    uint32
	FirstDataSector  uint32

	// StartingFATSector is where the first FAT begins, relative to the
	// start of the medium this boot sector was read from. This module's
	// storage.Port is already scoped to a single GPT partition (see the
	// gpt package), so unlike the original's whole-disk-relative
	// starting_fat_sector, HiddenSectors is not folded in here — it would
	// double count the partition's own starting LBA, which the GPT
	// partition entry already accounts for.
	StartingFATSector uint32
}

// Decode reads a 512-byte boot sector and returns its derived view. It
// validates the handful of invariants the FAT32 standard requires (sector
// size in {512,1024,2048,4096}, sectors per cluster a power of two in
// [1,128], zero root entry count) the same way the teacher's
// NewFATBootSectorFromStream does, plus a check that this is in fact a
// FAT32 volume and not a FAT12/16 one (determined by total cluster count,
// per Microsoft's FAT spec — the same threshold the teacher's
// DetermineFATVersion uses).
func Decode(sector []byte) (*BootSector, error) {
	if len(sector) < 512 {
		return nil, fat32err.ErrInvalidArgument.WithMessage("boot sector must be at least 512 bytes")
	}

	var raw rawFAT32BootSector
	if err := binary.Read(bytes.NewReader(sector), binary.LittleEndian, &raw); err != nil {
		return nil, fat32err.ErrIOFailed.WrapError(err)
	}

	switch raw.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return nil, fat32err.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("bad BytesPerSector: %d", raw.BytesPerSector))
	}

	switch raw.SectorsPerCluster {
	case 1, 2, 4, 8, 16, 32, 64, 128:
	default:
		return nil, fat32err.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("SectorsPerCluster must be a power of 2 in 1-128, got %d", raw.SectorsPerCluster))
	}

	if raw.RootEntryCount != 0 {
		return nil, fat32err.ErrFileSystemCorrupted.WithMessage(
			"RootEntryCount must be zero on a FAT32 volume")
	}

	totalSectors := raw.TotalSectors32
	if raw.TotalSectors16 != 0 {
		totalSectors = uint32(raw.TotalSectors16)
	}

	totalFATSectors := uint32(raw.NumFATs) * raw.SectorsPerFAT32
	dataSectors := totalSectors - uint32(raw.ReservedSectors) - totalFATSectors
	totalClusters := dataSectors / uint32(raw.SectorsPerCluster)

	if totalClusters < 65525 {
		return nil, fat32err.ErrInvalidFileSystem.WithMessage(
			"cluster count is too small for FAT32; this looks like a FAT12/16 volume")
	}

	bs := &BootSector{
		BytesPerSector:    uint32(raw.BytesPerSector),
		SectorsPerCluster: uint32(raw.SectorsPerCluster),
		ReservedSectors:   uint32(raw.ReservedSectors),
		NumFATs:           uint32(raw.NumFATs),
		HiddenSectors:     raw.HiddenSectors,
		SectorsPerFAT:     raw.SectorsPerFAT32,
		RootCluster:       raw.RootCluster,
		FSInfoSector:      uint32(raw.FSInfoSector),
		BackupBootSector:  uint32(raw.BackupBootSector),
		VolumeID:          raw.VolumeID,
		VolumeLabel:       string(bytes.TrimRight(raw.VolumeLabel[:], " ")),
		TotalSectors:      totalSectors,

		BytesPerCluster:  uint32(raw.BytesPerSector) * uint32(raw.SectorsPerCluster),
		TotalDataSectors: dataSectors,
		TotalClusters:    totalClusters,
		FirstDataSector:   uint32(raw.ReservedSectors) + totalFATSectors,
		StartingFATSector: uint32(raw.ReservedSectors),
	}

	return bs, nil
}
