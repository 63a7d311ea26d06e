package gpt

import (
	"encoding/binary"
	"fmt"
)

// Guid is a 128-bit GUID as stored on disk in a GPT: the first three
// fields are little-endian, the last two are big-endian. This mixed
// layout (sometimes called "middle-endian") is exactly what
// _examples/original_source/src/gpt.rs's Guid type encodes/decodes.
type Guid struct {
	first  uint32
	second uint16
	third  uint16
	fourth uint16
	fifth  [6]byte
}

// MicrosoftBasicData is the GPT partition type GUID for an ordinary data
// partition (as opposed to EFI system partitions, Microsoft reserved
// partitions, etc.) — the type this module expects a FAT32 partition to
// carry.
var MicrosoftBasicData = Guid{
	first:  0xEBD0A0A2,
	second: 0xB9E5,
	third:  0x4433,
	fourth: 0x87C0,
	fifth:  [6]byte{0x68, 0xB6, 0xB7, 0x26, 0x99, 0xC7},
}

// DecodeGuid reads a 16-byte mixed-endian GUID as it appears on disk.
func DecodeGuid(b []byte) Guid {
	return Guid{
		first:  binary.LittleEndian.Uint32(b[0:4]),
		second: binary.LittleEndian.Uint16(b[4:6]),
		third:  binary.LittleEndian.Uint16(b[6:8]),
		fourth: binary.BigEndian.Uint16(b[8:10]),
		fifth:  [6]byte{b[10], b[11], b[12], b[13], b[14], b[15]},
	}
}

// Bytes encodes the GUID back into its 16-byte on-disk mixed-endian form.
func (g Guid) Bytes() [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint32(out[0:4], g.first)
	binary.LittleEndian.PutUint16(out[4:6], g.second)
	binary.LittleEndian.PutUint16(out[6:8], g.third)
	binary.BigEndian.PutUint16(out[8:10], g.fourth)
	copy(out[10:16], g.fifth[:])
	return out
}

func (g Guid) Equal(other Guid) bool {
	return g == other
}

// String renders the GUID in the conventional
// XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX form.
func (g Guid) String() string {
	return fmt.Sprintf(
		"%08X-%04X-%04X-%04X-%02X%02X%02X%02X%02X%02X",
		g.first, g.second, g.third, g.fourth,
		g.fifth[0], g.fifth[1], g.fifth[2], g.fifth[3], g.fifth[4], g.fifth[5],
	)
}
