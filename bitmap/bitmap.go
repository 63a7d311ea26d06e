// Package bitmap gives the sector cache a fixed-capacity occupancy bitmap
// with a fast free-slot search, grounded on the same bit-per-slot idea
// the original cache's BitMap<LEN> uses, laid over go-bitmap the way the
// teacher's block cache does for its loaded/dirty tracking.
package bitmap

import (
	"github.com/boljen/go-bitmap"
)

// Bitmap tracks one bit of state per slot in a fixed-capacity table.
type Bitmap struct {
	bits bitmap.Bitmap
	size int
}

// New creates a Bitmap with size slots, all initially clear.
func New(size int) *Bitmap {
	return &Bitmap{
		bits: bitmap.Bitmap(bitmap.NewSlice(size)),
		size: size,
	}
}

func (b *Bitmap) Get(index int) bool {
	return b.bits.Get(index)
}

func (b *Bitmap) Set(index int, value bool) {
	b.bits.Set(index, value)
}

// FindFirstZero returns the lowest-indexed clear bit, or -1 if every bit
// is set.
func (b *Bitmap) FindFirstZero() int {
	for i := 0; i < b.size; i++ {
		if !b.bits.Get(i) {
			return i
		}
	}
	return -1
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	n := 0
	for i := 0; i < b.size; i++ {
		if b.bits.Get(i) {
			n++
		}
	}
	return n
}

func (b *Bitmap) Len() int {
	return b.size
}
