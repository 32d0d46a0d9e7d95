package genome

import (
	"fmt"
	"sort"

	"github.com/hictk-go/hictk/hictkerr"
)

// Bin is one row of a BinTable: a half-open genomic interval and its
// globally unique bin id (its position in the table).
type Bin struct {
	ID    int64
	Chrom int // chromosome rank
	Start int64
	End   int64
}

// BinTable maps bin ids to genomic coordinates and back, for either a
// fixed bin width or an explicit variable bin list.
type BinTable struct {
	ref *Reference

	// fixed-width fields; binSize == 0 means this is a variable table.
	binSize      int64
	chromOffset  []int64 // first bin_id of each chromosome, len = nChroms+1
	binsPerChrom []int64

	// variable-width fields.
	variable []Bin // sorted by (Chrom, Start); only set when binSize == 0
}

// Reference returns the BinTable's underlying Reference.
func (t *BinTable) Reference() *Reference { return t.ref }

// BinSize returns the fixed bin width, or 0 if the table is variable.
func (t *BinTable) BinSize() int64 { return t.binSize }

// NumBins returns the total number of bins in the table.
func (t *BinTable) NumBins() int64 {
	if t.binSize > 0 {
		return t.chromOffset[len(t.chromOffset)-1]
	}
	return int64(len(t.variable))
}

// BuildFixed builds a BinTable with uniform bin width binSize. The last bin
// of each chromosome may be shorter than binSize. binSize must be positive.
func BuildFixed(ref *Reference, binSize int64) (*BinTable, error) {
	if binSize <= 0 {
		return nil, fmt.Errorf("%w: bin size must be positive, got %d", hictkerr.ErrBadBinTable, binSize)
	}
	n := ref.Len()
	offsets := make([]int64, n+1)
	perChrom := make([]int64, n)
	var running int64
	for i, c := range ref.All() {
		nb := (c.Length + binSize - 1) / binSize
		perChrom[i] = nb
		offsets[i] = running
		running += nb
	}
	offsets[n] = running
	return &BinTable{ref: ref, binSize: binSize, chromOffset: offsets, binsPerChrom: perChrom}, nil
}

// BuildVariable builds a BinTable from an explicit, chromosome-major list
// of (chrom_rank, start, end) triples. The triples must already be sorted
// by chrom_rank then start, contiguous within a chromosome (no gaps, no
// overlaps), and each end must not exceed that chromosome's length.
func BuildVariable(ref *Reference, bins []Bin) (*BinTable, error) {
	if !sort.SliceIsSorted(bins, func(i, j int) bool {
		if bins[i].Chrom != bins[j].Chrom {
			return bins[i].Chrom < bins[j].Chrom
		}
		return bins[i].Start < bins[j].Start
	}) {
		return nil, fmt.Errorf("%w: variable bins not sorted by (chrom,start)", hictkerr.ErrBadBinTable)
	}
	var prevChrom = -1
	var prevEnd int64
	out := make([]Bin, len(bins))
	for i, b := range bins {
		if b.Chrom < 0 || b.Chrom >= ref.Len() {
			return nil, fmt.Errorf("%w: bin %d references unknown chromosome rank %d", hictkerr.ErrBadBinTable, i, b.Chrom)
		}
		if b.Start < 0 || b.End <= b.Start || b.End > ref.At(b.Chrom).Length {
			return nil, fmt.Errorf("%w: bin %d has invalid span [%d,%d)", hictkerr.ErrBadBinTable, i, b.Start, b.End)
		}
		if b.Chrom == prevChrom && b.Start != prevEnd {
			return nil, fmt.Errorf("%w: bin %d is not contiguous with the previous bin (gap or overlap)", hictkerr.ErrBadBinTable, i)
		}
		if b.Chrom != prevChrom && b.Start != 0 {
			return nil, fmt.Errorf("%w: chromosome %d's first bin does not start at 0", hictkerr.ErrBadBinTable, b.Chrom)
		}
		out[i] = Bin{ID: int64(i), Chrom: b.Chrom, Start: b.Start, End: b.End}
		prevChrom, prevEnd = b.Chrom, b.End
	}
	return &BinTable{ref: ref, variable: out}, nil
}

// CoordsOf returns the (chrom_rank, start, end) of the given bin id.
// Fixed tables binary-search the per-chromosome bin offsets (logarithmic
// in the number of chromosomes, not O(1)) and then compute start/end
// arithmetically; variable tables index the stored bin list directly.
func (t *BinTable) CoordsOf(binID int64) (Bin, error) {
	if binID < 0 || binID >= t.NumBins() {
		return Bin{}, fmt.Errorf("%w: bin id %d out of range [0,%d)", hictkerr.ErrBadRange, binID, t.NumBins())
	}
	if t.binSize > 0 {
		chrom := sort.Search(len(t.chromOffset)-1, func(i int) bool { return t.chromOffset[i+1] > binID })
		within := binID - t.chromOffset[chrom]
		start := within * t.binSize
		end := start + t.binSize
		if cend := t.ref.At(chrom).Length; end > cend {
			end = cend
		}
		return Bin{ID: binID, Chrom: chrom, Start: start, End: end}, nil
	}
	return t.variable[binID], nil
}

// BinIDOf maps a base-pair position on the given chromosome to the
// enclosing bin id. A position equal to the chromosome's length maps one
// past the last bin of that chromosome (a half-open upper bound).
func (t *BinTable) BinIDOf(chromRank int, pos int64) (int64, error) {
	if chromRank < 0 || chromRank >= t.ref.Len() {
		return 0, fmt.Errorf("%w: chromosome rank %d out of range", hictkerr.ErrUnknownChromosome, chromRank)
	}
	length := t.ref.At(chromRank).Length
	if pos < 0 || pos > length {
		return 0, fmt.Errorf("%w: position %d out of range for chromosome of length %d", hictkerr.ErrBadRange, pos, length)
	}
	if t.binSize > 0 {
		base := t.chromOffset[chromRank]
		if pos == length {
			return t.chromOffset[chromRank+1], nil
		}
		return base + pos/t.binSize, nil
	}
	// Variable table: binary search within [chromStart(chromRank), chromStart(chromRank+1))
	lo, hi := t.chromBinRange(chromRank)
	if pos == length {
		return hi, nil
	}
	i := sort.Search(int(hi-lo), func(i int) bool {
		return t.variable[lo+int64(i)].End > pos
	})
	return lo + int64(i), nil
}

// chromBinRange returns the half-open [lo, hi) bin id range belonging to
// the given chromosome rank.
func (t *BinTable) chromBinRange(chromRank int) (lo, hi int64) {
	if t.binSize > 0 {
		return t.chromOffset[chromRank], t.chromOffset[chromRank+1]
	}
	lo = int64(sort.Search(len(t.variable), func(i int) bool { return t.variable[i].Chrom >= chromRank }))
	hi = int64(sort.Search(len(t.variable), func(i int) bool { return t.variable[i].Chrom > chromRank }))
	return lo, hi
}

// ChromRange returns the half-open bin id range for the named chromosome.
func (t *BinTable) ChromRange(chromRank int) (lo, hi int64) { return t.chromBinRange(chromRank) }
