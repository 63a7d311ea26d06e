package gpt_test

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/dargueta/gofat32/gpt"
	"github.com/dargueta/gofat32/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImageWithGPT(t *testing.T) storage.Port {
	const numSectors = 8
	image := make([]byte, numSectors*storage.SectorSize)

	header := image[storage.SectorSize : 2*storage.SectorSize]
	copy(header[0:8], []byte("EFI PART"))
	binary.LittleEndian.PutUint32(header[8:12], 0x00010000)
	binary.LittleEndian.PutUint32(header[12:16], 92)
	binary.LittleEndian.PutUint64(header[24:32], 1)
	binary.LittleEndian.PutUint64(header[40:48], 4)
	binary.LittleEndian.PutUint64(header[48:56], 6)
	binary.LittleEndian.PutUint64(header[72:80], 2)
	binary.LittleEndian.PutUint32(header[80:84], 1)
	binary.LittleEndian.PutUint32(header[84:88], 128)

	entries := image[2*storage.SectorSize : 3*storage.SectorSize]
	typeGUID := gpt.MicrosoftBasicData.Bytes()
	copy(entries[0:16], typeGUID[:])
	binary.LittleEndian.PutUint64(entries[32:40], 4)
	binary.LittleEndian.PutUint64(entries[40:48], 5)

	name := utf16.Encode([]rune("DATA"))
	for i, u := range name {
		binary.LittleEndian.PutUint16(entries[56+i*2:], u)
	}

	port, err := storage.NewMemoryPort(image)
	require.NoError(t, err)
	return port
}

func TestReadHeader_DecodesFields(t *testing.T) {
	port := buildImageWithGPT(t)

	h, err := gpt.ReadHeader(port)
	require.NoError(t, err)
	assert.EqualValues(t, 92, h.HeaderSize)
	assert.EqualValues(t, 1, h.NumPartitionEntries)
	assert.EqualValues(t, 128, h.PartitionEntrySize)
	assert.EqualValues(t, 2, h.PartitionEntriesLBA)
}

func TestReadPartitionEntry_DecodesFields(t *testing.T) {
	port := buildImageWithGPT(t)

	h, err := gpt.ReadHeader(port)
	require.NoError(t, err)

	entry, err := gpt.ReadPartitionEntry(port, h, 0)
	require.NoError(t, err)

	assert.True(t, entry.TypeGUID.Equal(gpt.MicrosoftBasicData))
	assert.EqualValues(t, 4, entry.FirstLBA)
	assert.EqualValues(t, 5, entry.LastLBA)
	assert.Equal(t, "DATA", entry.Name)
}

func TestReadPartitionEntry_RejectsOutOfRangeIndex(t *testing.T) {
	port := buildImageWithGPT(t)
	h, err := gpt.ReadHeader(port)
	require.NoError(t, err)

	_, err = gpt.ReadPartitionEntry(port, h, 1)
	assert.Error(t, err)
}

func TestReadHeader_RejectsBadSignature(t *testing.T) {
	image := make([]byte, 4*storage.SectorSize)
	port, err := storage.NewMemoryPort(image)
	require.NoError(t, err)

	_, err = gpt.ReadHeader(port)
	assert.Error(t, err)
}
