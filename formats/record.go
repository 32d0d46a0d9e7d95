// Package formats parses the plain-text Hi-C contact formats ingest
// accepts: 4DN pairs, bedGraph2, sparse COO triples, and Hi-C-Pro
// validPairs, translating each record to a pixel.Pixel via a BinTable.
package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// Record is one parsed contact before bin resolution: two genomic
// positions and a contribution to the pixel count (usually 1, or an
// explicit weight for bedGraph2/COO inputs).
type Record struct {
	Chrom1 string
	Pos1   int64
	Chrom2 string
	Pos2   int64
	Count  float64
}

// RecordScanner is a forward-only source of Records, implemented by each
// text format's Scanner type.
type RecordScanner interface {
	Scan() bool
	Record() Record
	Err() error
}

// ToPixels resolves a RecordScanner's Records against bins, summing
// duplicate (bin1,bin2) pairs as it goes is NOT performed here — callers
// route the result through an ingest.Accumulator for that, per §4.9.
// Records naming an unknown chromosome are a hard error.
func ToPixels(rs RecordScanner, ref *genome.Reference, bins *genome.BinTable) pixel.Iterator {
	return &recordIterator{rs: rs, ref: ref, bins: bins}
}

// ToPixelsIgnoringUnknownChromosomes is ToPixels, but silently skips
// records naming a chromosome absent from ref instead of failing the
// whole load, matching the `--ignore-unknown-chromosomes` flag.
func ToPixelsIgnoringUnknownChromosomes(rs RecordScanner, ref *genome.Reference, bins *genome.BinTable) pixel.Iterator {
	return &recordIterator{rs: rs, ref: ref, bins: bins, ignoreUnknownChrom: true}
}

type recordIterator struct {
	rs                 RecordScanner
	ref                *genome.Reference
	bins               *genome.BinTable
	ignoreUnknownChrom bool
	cur                pixel.Pixel
	err                error
}

func (it *recordIterator) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if !it.rs.Scan() {
			it.err = it.rs.Err()
			return false
		}
		rec := it.rs.Record()
		c1, ok := it.ref.ByName(rec.Chrom1)
		if !ok {
			if it.ignoreUnknownChrom {
				continue
			}
			it.err = fmt.Errorf("%w: unknown chromosome %q", hictkerr.ErrUnknownChromosome, rec.Chrom1)
			return false
		}
		c2, ok := it.ref.ByName(rec.Chrom2)
		if !ok {
			if it.ignoreUnknownChrom {
				continue
			}
			it.err = fmt.Errorf("%w: unknown chromosome %q", hictkerr.ErrUnknownChromosome, rec.Chrom2)
			return false
		}
		b1, err := it.bins.BinIDOf(c1.Rank, rec.Pos1)
		if err != nil {
			it.err = err
			return false
		}
		b2, err := it.bins.BinIDOf(c2.Rank, rec.Pos2)
		if err != nil {
			it.err = err
			return false
		}
		if b1 > b2 {
			b1, b2 = b2, b1
		}
		it.cur = pixel.Pixel{Bin1: b1, Bin2: b2, Count: rec.Count}
		return true
	}
}

func (it *recordIterator) Pixel() pixel.Pixel { return it.cur }
func (it *recordIterator) Error() error        { return it.err }
func (it *recordIterator) Close() error        { return it.err }

// PixelScanner is a forward-only source of already-binned pixels (the COO
// format names bin ids directly rather than genomic positions).
type PixelScanner interface {
	Scan() bool
	Pixel() pixel.Pixel
	Err() error
}

// ToPixelsDirect adapts a PixelScanner to a pixel.Iterator.
func ToPixelsDirect(ps PixelScanner) pixel.Iterator {
	return &pixelScanIterator{ps: ps}
}

type pixelScanIterator struct {
	ps  PixelScanner
	cur pixel.Pixel
	err error
}

func (it *pixelScanIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.ps.Scan() {
		it.err = it.ps.Err()
		return false
	}
	it.cur = it.ps.Pixel()
	return true
}

func (it *pixelScanIterator) Pixel() pixel.Pixel { return it.cur }
func (it *pixelScanIterator) Error() error        { return it.err }
func (it *pixelScanIterator) Close() error        { return it.err }

// splitFields splits a text line on whitespace, skipping blank lines and
// lines beginning with '#'.
func splitFields(line string) ([]string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false
	}
	return strings.Fields(line), true
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return sc
}
