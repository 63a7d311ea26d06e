package bpb_test

import (
	"encoding/binary"
	"testing"

	"github.com/dargueta/gofat32/bpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBootSector assembles a minimal, internally-consistent FAT32 boot
// sector for tests: 512-byte sectors, 8 sectors/cluster, 32 reserved
// sectors, 2 FATs of 200 sectors each, and a big enough total sector
// count to land comfortably in FAT32's cluster-count range.
func buildBootSector() []byte {
	buf := make([]byte, 512)

	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }
	put32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }
	putU8 := func(off int, v uint8) { buf[off] = v }

	put16(0x00B, 512)   // BytesPerSector
	putU8(0x00D, 8)     // SectorsPerCluster
	put16(0x00E, 32)    // ReservedSectors
	putU8(0x010, 2)     // NumFATs
	put16(0x011, 0)     // RootEntryCount (must be 0 for FAT32)
	put16(0x013, 0)     // TotalSectors16 (use 32-bit field instead)
	putU8(0x015, 0xF8)  // Media
	put16(0x016, 0)     // SectorsPerFAT16 (unused on FAT32)
	put32(0x01C, 0)     // HiddenSectors
	put32(0x020, 4_000_000) // TotalSectors32: big enough for FAT32 cluster count
	put32(0x024, 16000) // SectorsPerFAT32
	put32(0x02C, 2)     // RootCluster
	put16(0x030, 1)     // FSInfoSector
	put16(0x032, 6)     // BackupBootSector

	copy(buf[0x047:0x047+11], []byte("NO NAME    "))

	return buf
}

func TestDecode_DerivesExpectedFields(t *testing.T) {
	bs, err := bpb.Decode(buildBootSector())
	require.NoError(t, err)

	assert.EqualValues(t, 512, bs.BytesPerSector)
	assert.EqualValues(t, 8, bs.SectorsPerCluster)
	assert.EqualValues(t, 32, bs.ReservedSectors)
	assert.EqualValues(t, 2, bs.RootCluster)
	assert.EqualValues(t, 4096, bs.BytesPerCluster)
	assert.EqualValues(t, 32, bs.StartingFATSector)
	assert.EqualValues(t, 32+2*16000, bs.FirstDataSector)
	assert.Equal(t, "NO NAME", bs.VolumeLabel)
}

func TestDecode_RejectsBadBytesPerSector(t *testing.T) {
	buf := buildBootSector()
	binary.LittleEndian.PutUint16(buf[0x00B:], 300)

	_, err := bpb.Decode(buf)
	assert.Error(t, err)
}

func TestDecode_RejectsNonzeroRootEntryCountOnFAT32(t *testing.T) {
	buf := buildBootSector()
	binary.LittleEndian.PutUint16(buf[0x011:], 512)

	_, err := bpb.Decode(buf)
	assert.Error(t, err)
}

func TestDecode_RejectsTooShortBuffer(t *testing.T) {
	_, err := bpb.Decode(make([]byte, 100))
	assert.Error(t, err)
}
