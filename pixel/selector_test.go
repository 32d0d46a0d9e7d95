package pixel

import (
	"math"
	"testing"

	"github.com/hictk-go/hictk/genome"
)

func testBins(t *testing.T) *genome.BinTable {
	t.Helper()
	ref, err := genome.NewReference([]string{"chr1", "chr2"}, []int64{400, 200})
	if err != nil {
		t.Fatal(err)
	}
	bins, err := genome.BuildFixed(ref, 100)
	if err != nil {
		t.Fatal(err)
	}
	return bins
}

// bins: chr1 = [0,4), chr2 = [4,6)

func TestSelectorCisOnly(t *testing.T) {
	bins := testBins(t)
	src := []Pixel{
		{Bin1: 0, Bin2: 1, Count: 1},
		{Bin1: 0, Bin2: 4, Count: 2}, // trans
		{Bin1: 4, Bin2: 5, Count: 3},
	}
	sel := CisOnly(FromSlice(src), bins)
	var got []Pixel
	for sel.Next() {
		got = append(got, sel.Pixel())
	}
	if err := sel.Close(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cis pixels, want 2: %+v", len(got), got)
	}
}

func TestSelectorTransOnly(t *testing.T) {
	bins := testBins(t)
	src := []Pixel{
		{Bin1: 0, Bin2: 1, Count: 1},
		{Bin1: 0, Bin2: 4, Count: 2},
	}
	sel := TransOnly(FromSlice(src), bins)
	var got []Pixel
	for sel.Next() {
		got = append(got, sel.Pixel())
	}
	if len(got) != 1 || got[0].Bin2 != 4 {
		t.Fatalf("unexpected trans selection: %+v", got)
	}
}

func TestSelectorRangeTwoD(t *testing.T) {
	bins := testBins(t)
	src := []Pixel{
		{Bin1: 0, Bin2: 1, Count: 1},
		{Bin1: 1, Bin2: 5, Count: 2},
		{Bin1: 2, Bin2: 4, Count: 3},
	}
	sel := RangeTwoD(FromSlice(src), bins, 0, 3, 4, 6)
	var got []Pixel
	for sel.Next() {
		got = append(got, sel.Pixel())
	}
	if len(got) != 2 {
		t.Fatalf("got %d pixels, want 2: %+v", len(got), got)
	}
}

func TestSelectorWithWeightsSuppressesNaN(t *testing.T) {
	bins := testBins(t)
	src := []Pixel{
		{Bin1: 0, Bin2: 1, Count: 4},
		{Bin1: 0, Bin2: 2, Count: 4},
	}
	weights := make([]float64, bins.NumBins())
	for i := range weights {
		weights[i] = 2
	}
	weights[2] = math.NaN()
	sel := GenomeWide(FromSlice(src), bins).WithWeights(weights)
	var got []Pixel
	for sel.Next() {
		got = append(got, sel.Pixel())
	}
	if len(got) != 1 {
		t.Fatalf("expected the NaN-weighted pixel to be suppressed, got %+v", got)
	}
	if got[0].Count != 1 {
		t.Fatalf("got count %v, want 4/(2*2)=1", got[0].Count)
	}
}

func TestJoin(t *testing.T) {
	bins := testBins(t)
	ref := bins.Reference()
	j, err := Join(Pixel{Bin1: 0, Bin2: 4, Count: 5}, bins, ref)
	if err != nil {
		t.Fatal(err)
	}
	if j.Chrom1 != "chr1" || j.Chrom2 != "chr2" || j.Start1 != 0 || j.Start2 != 0 {
		t.Fatalf("unexpected join: %+v", j)
	}
}
