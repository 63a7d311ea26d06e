package storage

import "github.com/dargueta/gofat32/fat32err"

// PartitionView presents a contiguous LBA range of an underlying Port as
// its own zero-based Port, the way a GPT partition entry carves a region
// out of a whole-disk device. This lets fs.Mount address the FAT32
// volume exactly as the rest of this module's packages expect: sector 0
// is the volume's own boot sector, not an absolute disk LBA.
type PartitionView struct {
	backing  Port
	firstLBA uint64
	count    uint64
}

// NewPartitionView creates a view over [firstLBA, lastLBA] (inclusive) of
// backing.
func NewPartitionView(backing Port, firstLBA, lastLBA uint64) (*PartitionView, error) {
	if lastLBA < firstLBA || lastLBA >= backing.SectorCount() {
		return nil, fat32err.ErrInvalidArgument.WithMessage("partition LBA range is invalid")
	}

	return &PartitionView{
		backing:  backing,
		firstLBA: firstLBA,
		count:    lastLBA - firstLBA + 1,
	}, nil
}

func (p *PartitionView) SectorCount() uint64 {
	return p.count
}

func (p *PartitionView) ReadSector(sectorIdx uint64, buf []byte) error {
	if sectorIdx >= p.count {
		return fat32err.ErrOutOfRange.WithMessage("sector index beyond end of partition")
	}
	return p.backing.ReadSector(p.firstLBA+sectorIdx, buf)
}

func (p *PartitionView) WriteSector(sectorIdx uint64, buf []byte) error {
	if sectorIdx >= p.count {
		return fat32err.ErrOutOfRange.WithMessage("sector index beyond end of partition")
	}
	return p.backing.WriteSector(p.firstLBA+sectorIdx, buf)
}
