// Package zoomify implements the Coarsener (C8): multi-resolution zoom
// level generation by streaming base-resolution pixels into a
// bounded, row-bounded accumulation buffer.
package zoomify

import (
	"sort"

	"github.com/hictk-go/hictk/pixel"
)

// Coarsener streams base-resolution pixels in (bin1,bin2) order, mapping
// each to its target bin (⌊bin1/k⌋, ⌊bin2/k⌋), accumulating counts in a
// buffer keyed by target bin2 that is flushed to the output stream as
// soon as the input's target bin1 advances past the buffered row, per
// §4.8. Memory footprint is bounded by one target row's worth of
// distinct bin2 values, not the whole coarsened matrix.
//
// Coarsener itself is pull-based and implements pixel.Iterator; it never
// materializes the base iterator or the output beyond one buffered row,
// mirroring bam.Merger's reader-pulls-on-demand shape.
type Coarsener struct {
	base pixel.Iterator
	k    int64

	started  bool
	baseDone bool
	curRow   int64
	buf      map[int64]float64

	ready    []pixel.Pixel
	readyPos int

	cur pixel.Pixel
	err error
}

// NewCoarsener wraps base, mapping base resolution B pixels to target
// resolution T = k*B. k must be >= 2.
func NewCoarsener(base pixel.Iterator, k int64) pixel.Iterator {
	return &Coarsener{base: base, k: k, buf: map[int64]float64{}}
}

func (c *Coarsener) Next() bool {
	if c.err != nil {
		return false
	}
	for c.readyPos >= len(c.ready) {
		if c.baseDone {
			return false
		}
		c.fill()
		if c.err != nil {
			return false
		}
	}
	c.cur = c.ready[c.readyPos]
	c.readyPos++
	return true
}

// fill pulls one base pixel (or drains the base iterator), either
// buffering it into the current target row or flushing that row into
// c.ready when the target row advances.
func (c *Coarsener) fill() {
	if !c.base.Next() {
		if err := c.base.Error(); err != nil {
			c.err = err
			return
		}
		c.flushRow()
		c.baseDone = true
		return
	}
	p := c.base.Pixel()
	t1 := p.Bin1 / c.k
	t2 := p.Bin2 / c.k
	if !c.started {
		c.curRow = t1
		c.started = true
	}
	if t1 != c.curRow {
		c.flushRow()
		c.curRow = t1
	}
	c.buf[t2] += p.Count
}

func (c *Coarsener) flushRow() {
	if len(c.buf) == 0 {
		c.ready, c.readyPos = nil, 0
		return
	}
	keys := make([]int64, 0, len(c.buf))
	for k := range c.buf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	row := c.curRow
	out := make([]pixel.Pixel, len(keys))
	for i, k := range keys {
		out[i] = pixel.Pixel{Bin1: row, Bin2: k, Count: c.buf[k]}
	}
	c.buf = map[int64]float64{}
	c.ready, c.readyPos = out, 0
}

func (c *Coarsener) Pixel() pixel.Pixel { return c.cur }

func (c *Coarsener) Error() error { return c.err }

func (c *Coarsener) Close() error {
	if err := c.base.Close(); err != nil {
		return err
	}
	return c.err
}
