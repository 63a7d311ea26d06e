// Package gpt reads the GUID Partition Table header and partition entry
// for the single FAT32 partition this module mounts, per spec. The
// teacher repo has no GPT support of its own; the byte-offset layout
// here is grounded on _examples/soypat-fat/internal/gpt/gpt.go, and the
// exact field semantics and GUID handling on
// _examples/original_source/src/gpt.rs.
package gpt

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/dargueta/gofat32/fat32err"
	"github.com/dargueta/gofat32/storage"
)

var signature = [8]byte{'E', 'F', 'I', ' ', 'P', 'A', 'R', 'T'}

// Header is the decoded GPT header, normally found at LBA 1.
type Header struct {
	Revision              uint32
	HeaderSize            uint32
	CurrentLBA            uint64
	BackupLBA             uint64
	FirstUsableLBA        uint64
	LastUsableLBA         uint64
	DiskGUID              Guid
	PartitionEntriesLBA   uint64
	NumPartitionEntries   uint32
	PartitionEntrySize    uint32
	PartitionEntriesCRC32 uint32
}

// PartitionEntry is a single decoded entry from the partition entry
// array.
type PartitionEntry struct {
	TypeGUID   Guid
	UniqueGUID Guid
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       string
}

// ReadHeader reads and validates the GPT header at LBA 1.
func ReadHeader(port storage.Port) (*Header, error) {
	sector := make([]byte, storage.SectorSize)
	if err := port.ReadSector(1, sector); err != nil {
		return nil, err
	}

	var sig [8]byte
	copy(sig[:], sector[0:8])
	if sig != signature {
		return nil, fat32err.ErrFileSystemCorrupted.WithMessage("GPT signature not found at LBA 1")
	}

	return &Header{
		Revision:              binary.LittleEndian.Uint32(sector[8:12]),
		HeaderSize:            binary.LittleEndian.Uint32(sector[12:16]),
		CurrentLBA:            binary.LittleEndian.Uint64(sector[24:32]),
		BackupLBA:             binary.LittleEndian.Uint64(sector[32:40]),
		FirstUsableLBA:        binary.LittleEndian.Uint64(sector[40:48]),
		LastUsableLBA:         binary.LittleEndian.Uint64(sector[48:56]),
		DiskGUID:              DecodeGuid(sector[56:72]),
		PartitionEntriesLBA:   binary.LittleEndian.Uint64(sector[72:80]),
		NumPartitionEntries:   binary.LittleEndian.Uint32(sector[80:84]),
		PartitionEntrySize:    binary.LittleEndian.Uint32(sector[84:88]),
		PartitionEntriesCRC32: binary.LittleEndian.Uint32(sector[88:92]),
	}, nil
}

// PartitionEntry reads partition entry idx out of the partition entry
// array described by h. Unlike the original's get_partition_entry, which
// only supports idx == 0 and panics on anything else, this returns an
// error for an out-of-range index and for any index beyond the number
// of entries the disk actually has — the restriction to idx 0 for the
// FAT32 volume this module mounts belongs to the caller (fs.Mount), not
// to this decoder.
func ReadPartitionEntry(port storage.Port, h *Header, idx uint32) (*PartitionEntry, error) {
	if idx >= h.NumPartitionEntries {
		return nil, fat32err.ErrOutOfRange.WithMessage("partition entry index out of range")
	}

	entriesPerSector := storage.SectorSize / h.PartitionEntrySize
	sectorIdx := h.PartitionEntriesLBA + uint64(idx/entriesPerSector)
	offsetInSector := (idx % entriesPerSector) * h.PartitionEntrySize

	sector := make([]byte, storage.SectorSize)
	if err := port.ReadSector(sectorIdx, sector); err != nil {
		return nil, err
	}

	entry := sector[offsetInSector : offsetInSector+h.PartitionEntrySize]

	name := make([]uint16, 36)
	for i := range name {
		off := 56 + i*2
		name[i] = binary.LittleEndian.Uint16(entry[off : off+2])
	}

	return &PartitionEntry{
		TypeGUID:   DecodeGuid(entry[0:16]),
		UniqueGUID: DecodeGuid(entry[16:32]),
		FirstLBA:   binary.LittleEndian.Uint64(entry[32:40]),
		LastLBA:    binary.LittleEndian.Uint64(entry[40:48]),
		Attributes: binary.LittleEndian.Uint64(entry[48:56]),
		Name:       decodeUTF16Name(name),
	}, nil
}

func decodeUTF16Name(units []uint16) string {
	end := len(units)
	for i, u := range units {
		if u == 0 {
			end = i
			break
		}
	}
	return string(utf16.Decode(units[:end]))
}
