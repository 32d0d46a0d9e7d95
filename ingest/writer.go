package ingest

import (
	"os"

	"github.com/hictk-go/hictk/pixel"
)

// Accumulator implements §4.9's buffer/sort-coalesce/spill pipeline
// stages. Pixels are accepted in any order; Finish drains everything
// into a single sorted, deduplicated pixel.Iterator via an N-way merge
// of the spill files plus the final in-memory chunk.
type Accumulator struct {
	opts   Options
	buf    []pixel.Pixel
	spills []string // paths; compression algo is opts.Compression.Algo for all
	failed bool
}

// New returns an Accumulator configured by opts.
func New(opts Options) *Accumulator {
	return &Accumulator{opts: opts.withDefaults()}
}

// Add buffers one pixel, spilling the buffer to a temp file once it
// reaches opts.ChunkSize.
func (a *Accumulator) Add(p pixel.Pixel) error {
	a.buf = append(a.buf, p)
	if len(a.buf) >= a.opts.ChunkSize {
		return a.spill()
	}
	return nil
}

// AddFrom drains it into the accumulator.
func (a *Accumulator) AddFrom(it pixel.Iterator) error {
	for it.Next() {
		if err := a.Add(it.Pixel()); err != nil {
			it.Close()
			return err
		}
	}
	if err := it.Error(); err != nil {
		it.Close()
		return err
	}
	return it.Close()
}

func (a *Accumulator) spill() error {
	a.buf = sortAndCoalesce(a.buf)
	sw, err := newSpillWriter(a.opts.TmpDir, a.opts.Compression)
	if err != nil {
		a.failed = true
		return err
	}
	if err := sw.writeAll(a.buf); err != nil {
		a.failed = true
		return err
	}
	path, err := sw.close()
	if err != nil {
		a.failed = true
		return err
	}
	a.spills = append(a.spills, path)
	a.buf = a.buf[:0]
	return nil
}

// Finish drains the accumulator into a single sorted, deduplicated
// pixel.Iterator (§4.9 steps 2-4). The Accumulator must not be reused
// afterward; call Abort instead if Finish is never called.
func (a *Accumulator) Finish() (pixel.Iterator, error) {
	a.buf = sortAndCoalesce(a.buf)
	sources := make([]mergeSource, 0, len(a.spills)+1)
	for _, path := range a.spills {
		sr, err := openSpillReader(path, a.opts.Compression.Algo)
		if err != nil {
			a.Abort()
			return nil, err
		}
		sources = append(sources, sr)
	}
	sources = append(sources, &sliceSource{pixels: a.buf})
	m, err := newMerger(sources)
	if err != nil {
		a.Abort()
		return nil, err
	}
	return &cleanupIterator{Iterator: m, paths: a.spills}, nil
}

// Abort unlinks every spill file written so far, per §4.9's failure
// semantics: on any fatal error, all spill files are unlinked.
func (a *Accumulator) Abort() {
	for _, path := range a.spills {
		os.Remove(path)
	}
	a.spills = nil
}

// cleanupIterator wraps the merged iterator so Close unlinks the spill
// files once the merge is fully drained or abandoned.
type cleanupIterator struct {
	pixel.Iterator
	paths []string
}

func (c *cleanupIterator) Close() error {
	err := c.Iterator.Close()
	for _, p := range c.paths {
		os.Remove(p)
	}
	return err
}
