// Package pixel defines the unified sparse-matrix-entry types and the lazy
// iterator abstraction shared by the Cooler and Hic back-ends.
package pixel

import "github.com/hictk-go/hictk/genome"

// Pixel is one non-zero matrix entry: a pair of bin ids, upper-triangular
// (Bin1 <= Bin2), and a count. Count carries raw (integer) values as a
// float64 with no fractional part, and balanced/aggregated values as an
// arbitrary float64; a Pixel does not record which of the two it holds.
type Pixel struct {
	Bin1  int64
	Bin2  int64
	Count float64
}

// Joined is the (chrom1,start1,end1,chrom2,start2,end2,count) variant of a
// Pixel, produced when a Dump-style join is requested.
type Joined struct {
	Chrom1      string
	Start1, End1 int64
	Chrom2      string
	Start2, End2 int64
	Count       float64
}

// Join resolves a Pixel against a BinTable to produce its Joined form.
func Join(p Pixel, bins *genome.BinTable, ref *genome.Reference) (Joined, error) {
	b1, err := bins.CoordsOf(p.Bin1)
	if err != nil {
		return Joined{}, err
	}
	b2, err := bins.CoordsOf(p.Bin2)
	if err != nil {
		return Joined{}, err
	}
	return Joined{
		Chrom1: ref.At(b1.Chrom).Name, Start1: b1.Start, End1: b1.End,
		Chrom2: ref.At(b2.Chrom).Name, Start2: b2.Start, End2: b2.End,
		Count: p.Count,
	}, nil
}
