package fat

import (
	"github.com/dargueta/gofat32/cache"
	"github.com/dargueta/gofat32/fat32err"
)

// Tracer walks a cluster chain one link at a time, starting from a given
// cluster, stopping at the first end-of-chain marker. It generalizes the
// original's FatEntryTracer into a plain Go iterator shape (Next/Collect)
// rather than carrying the borrow-checker lifetimes the Rust version
// needed, matching the teacher's driverbase.go style of a small stateful
// struct with a Next-like method instead of implementing an interface
// with callback-heavy machinery.
type Tracer struct {
	cache   *cache.Cache
	geo     Geometry
	current uint32
	done    bool
	lastSeen uint32
}

// NewTracer starts tracing a chain at startCluster.
func NewTracer(c *cache.Cache, geo Geometry, startCluster uint32) *Tracer {
	return &Tracer{cache: c, geo: geo, current: startCluster}
}

// Next returns the next cluster in the chain and true, or 0 and false
// once the chain's end-of-chain marker has been consumed.
func (t *Tracer) Next() (uint32, bool, error) {
	if t.done {
		return 0, false, nil
	}

	cluster := t.current
	entry, err := ReadEntry(t.cache, t.geo, cluster)
	if err != nil {
		return 0, false, err
	}

	if entry.IsEndOfChain() {
		t.done = true
		t.lastSeen = cluster
	} else {
		t.current = entry.Next
	}

	return cluster, true, nil
}

// Collect drains the tracer, returning every cluster in the chain in
// order.
func (t *Tracer) Collect() ([]uint32, error) {
	var clusters []uint32
	for {
		cluster, ok, err := t.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return clusters, nil
		}
		clusters = append(clusters, cluster)
	}
}

// GrowChain appends a freshly allocated cluster to the end of the chain
// this tracer has just finished walking. It is only valid to call once
// Next has returned the chain's last cluster (the one whose entry is
// end-of-chain); calling it before that returns
// fat32err.ErrGrowWithoutEnd. This implements the behavior the
// original's FatEntryTracer::grow_file provides for plain cluster
// chains; fs.WriteFile uses it to extend a file. dirent.AddEntry grows
// a directory by allocating and linking a cluster itself instead.
func (t *Tracer) GrowChain(alloc *Allocator) (uint32, error) {
	if !t.done {
		return 0, fat32err.ErrGrowWithoutEnd
	}

	newCluster, err := alloc.Allocate()
	if err != nil {
		return 0, err
	}

	if err := WriteEntry(t.cache, t.geo, t.lastSeen, Entry{Next: newCluster}); err != nil {
		return 0, err
	}

	t.current = newCluster
	t.done = false
	return newCluster, nil
}
