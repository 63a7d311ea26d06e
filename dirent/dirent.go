// Package dirent implements FAT32's 32-byte directory entry format and
// the directory iterator that walks and mutates them. It is grounded on
// the teacher's drivers/fat/dirent.go for the Go decode idiom (unexported
// raw struct, os.FileMode-shaped public accessors) and on
// _examples/original_source/src/fat/dir.rs for the exact byte layout,
// attribute set, and iteration/growth state machine.
package dirent

import (
	"encoding/binary"
	"os"
	"strings"
	"time"
)

// Size is the length in bytes of one directory entry on disk.
const Size = 32

// Attr is a directory entry attribute bit.
type Attr uint8

const (
	AttrReadOnly  Attr = 0x01
	AttrHidden    Attr = 0x02
	AttrSystem    Attr = 0x04
	AttrVolumeID  Attr = 0x08
	AttrDirectory Attr = 0x10
	AttrArchive   Attr = 0x20
)

// AttrLongName is the attribute mask a fragment of a Long File Name
// entry always carries. This module skips LFN fragments rather than
// synthesizing long names from them (see spec's LFN non-goal).
const AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID

// State describes what an entry's first name byte says about its slot.
type State int

const (
	StateExists State = iota
	StateDeleted
	StateEnd
)

const (
	deletedMarker = 0xE5
	escapedE5     = 0x05
	endMarker     = 0x00
)

// Entry is the decoded, in-memory view of one 32-byte directory entry.
type Entry struct {
	Name             [8]byte
	Ext              [3]byte
	Attributes       Attr
	CreationTimeTenths uint8
	CreationTime     uint16
	CreationDate     uint16
	LastAccessDate   uint16
	ClusterHi        uint16
	LastModifiedTime uint16
	LastModifiedDate uint16
	ClusterLo        uint16
	FileSize         uint32
}

// State reports whether this slot holds a live entry, a deleted entry,
// or marks the end of the directory.
func (e *Entry) State() State {
	switch e.Name[0] {
	case endMarker:
		return StateEnd
	case deletedMarker:
		return StateDeleted
	default:
		return StateExists
	}
}

// IsLongNameFragment reports whether this entry is a piece of a Long
// File Name rather than a normal 8.3 entry; this module skips these
// without attempting to reassemble the long name.
func (e *Entry) IsLongNameFragment() bool {
	return e.Attributes == AttrLongName
}

// Cluster returns the entry's starting cluster number.
func (e *Entry) Cluster() uint32 {
	return uint32(e.ClusterHi)<<16 | uint32(e.ClusterLo)
}

// SetCluster sets the entry's starting cluster number.
func (e *Entry) SetCluster(cluster uint32) {
	e.ClusterHi = uint16(cluster >> 16)
	e.ClusterLo = uint16(cluster)
}

// IsDir reports whether this entry describes a directory.
func (e *Entry) IsDir() bool {
	return e.Attributes&AttrDirectory != 0
}

// FileName joins the 8.3 name components into "NAME.EXT" (or "NAME" if
// there's no extension), trimming the space padding FAT uses. It does
// not decode the 0x05-escaped-0xE5 case back into 0xE5 in the name
// visible here; Decode already un-escapes it into Name[0].
func (e *Entry) FileName() string {
	name := strings.TrimRight(string(e.Name[:]), " ")
	ext := strings.TrimRight(string(e.Ext[:]), " ")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// Mode returns the entry's permission/type bits as an os.FileMode, the
// same attribute-to-mode mapping the teacher's AttrFlagsToFileMode uses.
func (e *Entry) Mode() os.FileMode {
	var mode os.FileMode = 0o666
	if e.Attributes&AttrReadOnly != 0 {
		mode = 0o444
	}
	if e.IsDir() {
		mode |= os.ModeDir
		mode |= 0o111
	}
	return mode
}

// ModTime converts the entry's last-modified date/time fields into a
// time.Time, using the same bit layout the teacher's
// TimestampFromParts/DateFromInt decode.
func (e *Entry) ModTime() time.Time {
	return fatTimeToGo(e.LastModifiedDate, e.LastModifiedTime)
}

func fatTimeToGo(date, t uint16) time.Time {
	year := 1980 + int(date>>9)
	month := int((date >> 5) & 0x0F)
	day := int(date & 0x1F)
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}

	hour := int(t >> 11)
	minute := int((t >> 5) & 0x3F)
	second := int((t & 0x1F) * 2)

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// Decode parses a 32-byte directory entry, handling the 0xE5-deleted and
// 0x05-escaped-0xE5 first-byte special cases the way the teacher's
// NewDirentFromRaw does.
func Decode(buf []byte) Entry {
	var e Entry
	copy(e.Name[:], buf[0:8])
	copy(e.Ext[:], buf[8:11])

	if e.Name[0] == escapedE5 {
		e.Name[0] = deletedMarker
	}

	e.Attributes = Attr(buf[11])
	e.CreationTimeTenths = buf[13]
	e.CreationTime = binary.LittleEndian.Uint16(buf[14:16])
	e.CreationDate = binary.LittleEndian.Uint16(buf[16:18])
	e.LastAccessDate = binary.LittleEndian.Uint16(buf[18:20])
	e.ClusterHi = binary.LittleEndian.Uint16(buf[20:22])
	e.LastModifiedTime = binary.LittleEndian.Uint16(buf[22:24])
	e.LastModifiedDate = binary.LittleEndian.Uint16(buf[24:26])
	e.ClusterLo = binary.LittleEndian.Uint16(buf[26:28])
	e.FileSize = binary.LittleEndian.Uint32(buf[28:32])

	return e
}

// Encode serializes the entry back into its 32-byte on-disk form.
func (e *Entry) Encode(buf []byte) {
	copy(buf[0:8], e.Name[:])
	copy(buf[8:11], e.Ext[:])
	buf[11] = byte(e.Attributes)
	buf[12] = 0
	buf[13] = e.CreationTimeTenths
	binary.LittleEndian.PutUint16(buf[14:16], e.CreationTime)
	binary.LittleEndian.PutUint16(buf[16:18], e.CreationDate)
	binary.LittleEndian.PutUint16(buf[18:20], e.LastAccessDate)
	binary.LittleEndian.PutUint16(buf[20:22], e.ClusterHi)
	binary.LittleEndian.PutUint16(buf[22:24], e.LastModifiedTime)
	binary.LittleEndian.PutUint16(buf[24:26], e.LastModifiedDate)
	binary.LittleEndian.PutUint16(buf[26:28], e.ClusterLo)
	binary.LittleEndian.PutUint32(buf[28:32], e.FileSize)
}

// NewFile builds a fresh file entry with the given 8.3 name components
// and starting cluster.
func NewFile(name [8]byte, ext [3]byte, cluster uint32) Entry {
	e := Entry{Name: name, Ext: ext, Attributes: AttrArchive}
	e.SetCluster(cluster)
	return e
}

// NewDir builds a fresh directory entry with the given 8.3 name
// components and starting cluster.
func NewDir(name [8]byte, cluster uint32) Entry {
	e := Entry{Name: name, Ext: [3]byte{' ', ' ', ' '}, Attributes: AttrDirectory}
	e.SetCluster(cluster)
	return e
}
