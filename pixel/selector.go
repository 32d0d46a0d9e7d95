package pixel

import (
	"math"

	"github.com/hictk-go/hictk/genome"
)

// Selector narrows a back-end's raw pixel stream to one of the five C5
// selector shapes (gw, cis_only, trans_only, range(q1), range(q1,q2)) and
// optionally applies a bound weight vector. It wraps an Iterator the way
// bam.Iterator wraps a Reader: a thin forward-only filter, not a new scan.
type Selector struct {
	base  Iterator
	bins  *genome.BinTable
	mode  mode
	q1lo, q1hi int64
	q2lo, q2hi int64

	weights []float64 // nil if no normalization bound

	cur Pixel
	err error
}

type mode int

const (
	modeGenomeWide mode = iota
	modeCisOnly
	modeTransOnly
	modeRange1D
	modeRange2D
)

// GenomeWide selects every pixel with bin1 <= bin2 (already guaranteed by
// back-end storage order).
func GenomeWide(base Iterator, bins *genome.BinTable) *Selector {
	return &Selector{base: base, bins: bins, mode: modeGenomeWide}
}

// CisOnly selects pixels where chrom1 == chrom2.
func CisOnly(base Iterator, bins *genome.BinTable) *Selector {
	return &Selector{base: base, bins: bins, mode: modeCisOnly}
}

// TransOnly selects pixels where chrom1 != chrom2.
func TransOnly(base Iterator, bins *genome.BinTable) *Selector {
	return &Selector{base: base, bins: bins, mode: modeTransOnly}
}

// RangeOneD selects pixels with bin1 and bin2 both in [lo,hi).
func RangeOneD(base Iterator, bins *genome.BinTable, lo, hi int64) *Selector {
	return &Selector{base: base, bins: bins, mode: modeRange1D, q1lo: lo, q1hi: hi}
}

// RangeTwoD selects pixels with bin1 in [lo1,hi1) and bin2 in [lo2,hi2).
// If the first range sorts after the second by reference rank, the two
// ranges are swapped so q1 <= q2 as required for upper-triangular storage.
func RangeTwoD(base Iterator, bins *genome.BinTable, lo1, hi1, lo2, hi2 int64) *Selector {
	if lo1 > lo2 {
		lo1, hi1, lo2, hi2 = lo2, hi2, lo1, hi1
	}
	return &Selector{base: base, bins: bins, mode: modeRange2D, q1lo: lo1, q1hi: hi1, q2lo: lo2, q2hi: hi2}
}

// WithWeights binds a per-bin weight vector: count is replaced by
// raw/(w[bin1]*w[bin2]); pixels where either weight is NaN are suppressed.
func (s *Selector) WithWeights(w []float64) *Selector {
	s.weights = w
	return s
}

func (s *Selector) Next() bool {
	for s.base.Next() {
		p := s.base.Pixel()
		if !s.passes(p) {
			continue
		}
		if s.weights != nil {
			w1, w2 := s.weights[p.Bin1], s.weights[p.Bin2]
			if math.IsNaN(w1) || math.IsNaN(w2) {
				continue
			}
			p.Count = p.Count / (w1 * w2)
		}
		s.cur = p
		return true
	}
	s.err = s.base.Error()
	return false
}

func (s *Selector) passes(p Pixel) bool {
	switch s.mode {
	case modeGenomeWide:
		return true
	case modeCisOnly, modeTransOnly:
		b1, err := s.bins.CoordsOf(p.Bin1)
		if err != nil {
			s.err = err
			return false
		}
		b2, err := s.bins.CoordsOf(p.Bin2)
		if err != nil {
			s.err = err
			return false
		}
		cis := b1.Chrom == b2.Chrom
		if s.mode == modeCisOnly {
			return cis
		}
		return !cis
	case modeRange1D:
		return p.Bin1 >= s.q1lo && p.Bin1 < s.q1hi && p.Bin2 >= s.q1lo && p.Bin2 < s.q1hi
	case modeRange2D:
		return p.Bin1 >= s.q1lo && p.Bin1 < s.q1hi && p.Bin2 >= s.q2lo && p.Bin2 < s.q2hi
	}
	return false
}

func (s *Selector) Pixel() Pixel { return s.cur }

func (s *Selector) Error() error { return s.err }

func (s *Selector) Close() error {
	if err := s.base.Close(); err != nil {
		return err
	}
	return s.Error()
}
