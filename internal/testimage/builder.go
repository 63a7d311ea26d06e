package testimage

import (
	"encoding/binary"

	"github.com/dargueta/gofat32/gpt"
	"github.com/dargueta/gofat32/storage"
)

// partitionFirstLBA mimics a real GPT disk's layout: LBA 0 is the
// protective MBR (left zeroed; this module never reads it), LBA 1 the GPT
// header, LBAs 2-33 the partition entry array (128 entries of 128 bytes
// each, matching real-world GPT tools), and the FAT32 partition itself
// begins at LBA 34.
const partitionFirstLBA = 34

const partitionEntrySize = 128
const numPartitionEntries = 128

// Built is a synthetic disk image ready to be handed to fs.Mount, plus
// facts about its layout a test needs but can't otherwise recover without
// re-parsing the image.
type Built struct {
	Disk        storage.Port
	RootCluster uint32
}

// Build lays out a minimal but spec-valid GPT header and partition entry
// array, a FAT32 boot sector, NumFATs FAT copies (each with clusters 0
// and 1 set to the standard reserved values and the root directory
// cluster marked end-of-chain), and an empty, zero-filled root directory
// cluster — zero bytes already decode as dirent.StateEnd everywhere, so
// no explicit "end of directory" marker needs to be written.
func Build(geo Geometry) (*Built, error) {
	const entrySize = uint32(4)
	fatEntries := geo.TotalClusters + 2 // indices 0 and 1 are reserved
	fatBytes := fatEntries * entrySize
	fatSectors := (fatBytes + storage.SectorSize - 1) / storage.SectorSize

	// The FAT32 cluster-to-sector arithmetic this module uses does not
	// subtract 2 from the cluster number (see fat.Geometry.ClusterToSector),
	// so the data region must have room up through cluster index
	// TotalClusters+1, not TotalClusters-1.
	dataSectors := (geo.TotalClusters + 2) * geo.SectorsPerCluster

	partitionSectors := geo.ReservedSectors + geo.NumFATs*fatSectors + dataSectors
	totalSectors := uint64(partitionFirstLBA) + uint64(partitionSectors)

	image := make([]byte, totalSectors*storage.SectorSize)

	writeGPT(image, partitionFirstLBA, uint64(partitionSectors))
	writeBootSector(image, geo, fatSectors, partitionSectors)
	writeInitialFATs(image, geo, fatSectors)

	disk, err := storage.NewMemoryPort(image)
	if err != nil {
		return nil, err
	}

	return &Built{Disk: disk, RootCluster: 2}, nil
}

func sectorSlice(image []byte, lba uint64) []byte {
	off := lba * storage.SectorSize
	return image[off : off+storage.SectorSize]
}

func writeGPT(image []byte, firstLBA, partitionSectors uint64) {
	header := sectorSlice(image, 1)
	copy(header[0:8], []byte("EFI PART"))
	binary.LittleEndian.PutUint32(header[8:12], 0x00010000)
	binary.LittleEndian.PutUint32(header[12:16], 92)
	binary.LittleEndian.PutUint64(header[24:32], 1)
	binary.LittleEndian.PutUint64(header[72:80], 2)
	binary.LittleEndian.PutUint32(header[80:84], numPartitionEntries)
	binary.LittleEndian.PutUint32(header[84:88], partitionEntrySize)

	entries := sectorSlice(image, 2)
	typeGUID := gpt.MicrosoftBasicData.Bytes()
	copy(entries[0:16], typeGUID[:])
	binary.LittleEndian.PutUint64(entries[32:40], firstLBA)
	binary.LittleEndian.PutUint64(entries[40:48], firstLBA+partitionSectors-1)
}

// writeBootSector pokes the FAT32 BPB fields directly by byte offset, the
// same layout bpb.Decode expects (see bpb/bpb_test.go for the same
// offsets used against a standalone boot sector).
func writeBootSector(image []byte, geo Geometry, fatSectors, partitionSectors uint32) {
	buf := sectorSlice(image, partitionFirstLBA)

	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }
	put32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }
	putU8 := func(off int, v uint8) { buf[off] = v }

	put16(0x00B, storage.SectorSize)
	putU8(0x00D, uint8(geo.SectorsPerCluster))
	put16(0x00E, uint16(geo.ReservedSectors))
	putU8(0x010, uint8(geo.NumFATs))
	put16(0x011, 0) // RootEntryCount, must be 0 on FAT32
	put16(0x013, 0) // TotalSectors16, unused; TotalSectors32 carries it
	putU8(0x015, 0xF8)
	put16(0x016, 0) // SectorsPerFAT16, unused on FAT32
	put32(0x01C, 0) // HiddenSectors: partition-relative addressing, see bpb.BootSector
	put32(0x020, partitionSectors)
	put32(0x024, fatSectors)
	put32(0x02C, 2) // RootCluster
	put16(0x030, 1) // FSInfoSector
	put16(0x032, 6) // BackupBootSector

	copy(buf[0x047:0x047+11], []byte("TESTVOL    "))
}

func writeInitialFATs(image []byte, geo Geometry, fatSectors uint32) {
	for copyIdx := uint32(0); copyIdx < geo.NumFATs; copyIdx++ {
		fatStart := uint64(partitionFirstLBA) + uint64(geo.ReservedSectors) + uint64(copyIdx)*uint64(fatSectors)

		sector0 := sectorSlice(image, fatStart)
		binary.LittleEndian.PutUint32(sector0[0:4], 0x0FFFFFF8) // cluster 0: media descriptor in low byte
		binary.LittleEndian.PutUint32(sector0[4:8], 0x0FFFFFFF) // cluster 1: reserved
		binary.LittleEndian.PutUint32(sector0[8:12], 0x0FFFFFF8) // cluster 2 (root dir): end of chain
	}
}
