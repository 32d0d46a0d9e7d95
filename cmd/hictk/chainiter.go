package main

import "github.com/hictk-go/hictk/pixel"

// chainIterator concatenates several pixel.Iterators in order, draining
// each fully before advancing to the next. Used by dump's Hic back-end,
// which produces one iterator per chromosome-pair block set rather than
// a single genome-wide scan; global (bin1,bin2) ordering across distinct
// chromosome pairs is not required for CLI output, so a plain
// concatenation (not a merge) is enough.
type chainIterator struct {
	its []pixel.Iterator
	i   int
	cur pixel.Pixel
	err error
}

func chainIterators(its []pixel.Iterator) pixel.Iterator {
	return &chainIterator{its: its}
}

func (c *chainIterator) Next() bool {
	for c.i < len(c.its) {
		if c.its[c.i].Next() {
			c.cur = c.its[c.i].Pixel()
			return true
		}
		if err := c.its[c.i].Error(); err != nil {
			c.err = err
			return false
		}
		if err := c.its[c.i].Close(); err != nil {
			c.err = err
			return false
		}
		c.i++
	}
	return false
}

func (c *chainIterator) Pixel() pixel.Pixel { return c.cur }

func (c *chainIterator) Error() error { return c.err }

func (c *chainIterator) Close() error {
	for ; c.i < len(c.its); c.i++ {
		if err := c.its[c.i].Close(); err != nil {
			return err
		}
	}
	return c.err
}
