package storage

import (
	"os"

	"github.com/dargueta/gofat32/fat32err"
)

// FilePort is a Port backed by an *os.File, for mounting a real raw block
// device or disk image instead of an in-memory one. It uses ReadAt/WriteAt
// rather than Seek+Read/Write so a single *os.File can safely back more
// than one FilePort (or be shared with other readers of the same
// descriptor) without the two interfering via a shared file offset.
type FilePort struct {
	file        *os.File
	sectorCount uint64
}

// OpenFilePort opens path and wraps it as a Port. The file's size must be
// a multiple of SectorSize.
func OpenFilePort(path string, flag int, perm os.FileMode) (*FilePort, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, fat32err.ErrIOFailed.WrapError(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fat32err.ErrIOFailed.WrapError(err)
	}

	if info.Size()%SectorSize != 0 {
		f.Close()
		return nil, fat32err.ErrInvalidArgument.WithMessage("file size is not a multiple of the sector size")
	}

	return &FilePort{file: f, sectorCount: uint64(info.Size()) / SectorSize}, nil
}

func (p *FilePort) Close() error {
	return p.file.Close()
}

func (p *FilePort) SectorCount() uint64 {
	return p.sectorCount
}

func (p *FilePort) ReadSector(sectorIdx uint64, buf []byte) error {
	if err := checkBounds(p, sectorIdx, buf); err != nil {
		return err
	}
	if _, err := p.file.ReadAt(buf, int64(sectorIdx)*SectorSize); err != nil {
		return fat32err.ErrIOFailed.WrapError(err)
	}
	return nil
}

func (p *FilePort) WriteSector(sectorIdx uint64, buf []byte) error {
	if err := checkBounds(p, sectorIdx, buf); err != nil {
		return err
	}
	if _, err := p.file.WriteAt(buf, int64(sectorIdx)*SectorSize); err != nil {
		return fat32err.ErrIOFailed.WrapError(err)
	}
	return nil
}
