package storage

import (
	"io"

	"github.com/dargueta/gofat32/fat32err"
	"github.com/xaionaro-go/bytesextra"
)

// MemoryPort is a Port backed entirely by an in-memory byte slice, built
// over the same bytesextra.ReadWriteSeeker the teacher's test fixtures use
// to turn a []byte into an io.ReadWriteSeeker.
type MemoryPort struct {
	stream      io.ReadWriteSeeker
	sectorCount uint64
}

// NewMemoryPort wraps image (whose length must be a multiple of
// SectorSize) as a Port.
func NewMemoryPort(image []byte) (*MemoryPort, error) {
	if len(image)%SectorSize != 0 {
		return nil, fat32err.ErrInvalidArgument.WithMessage("image length is not a multiple of the sector size")
	}

	return &MemoryPort{
		stream:      bytesextra.NewReadWriteSeeker(image),
		sectorCount: uint64(len(image)) / SectorSize,
	}, nil
}

func (m *MemoryPort) SectorCount() uint64 {
	return m.sectorCount
}

func (m *MemoryPort) ReadSector(sectorIdx uint64, buf []byte) error {
	if err := checkBounds(m, sectorIdx, buf); err != nil {
		return err
	}

	if _, err := m.stream.Seek(int64(sectorIdx)*SectorSize, io.SeekStart); err != nil {
		return fat32err.ErrIOFailed.WrapError(err)
	}
	if _, err := io.ReadFull(m.stream, buf); err != nil {
		return fat32err.ErrIOFailed.WrapError(err)
	}
	return nil
}

func (m *MemoryPort) WriteSector(sectorIdx uint64, buf []byte) error {
	if err := checkBounds(m, sectorIdx, buf); err != nil {
		return err
	}

	if _, err := m.stream.Seek(int64(sectorIdx)*SectorSize, io.SeekStart); err != nil {
		return fat32err.ErrIOFailed.WrapError(err)
	}
	if _, err := m.stream.Write(buf); err != nil {
		return fat32err.ErrIOFailed.WrapError(err)
	}
	return nil
}
