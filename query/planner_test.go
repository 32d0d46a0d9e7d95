package query

import (
	"testing"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/gquery"
)

func testRef(t *testing.T) (*genome.Reference, *genome.BinTable) {
	t.Helper()
	ref, err := genome.NewReference([]string{"chr1", "chr2", "chr3"}, []int64{300, 200, 100})
	if err != nil {
		t.Fatal(err)
	}
	bins, err := genome.BuildFixed(ref, 100)
	if err != nil {
		t.Fatal(err)
	}
	return ref, bins
}

func TestBuildCoolerGenomeWide(t *testing.T) {
	ref, bins := testRef(t)
	plan, err := Build(BackendCooler, ref, bins.NumBins(), Options{Resolution: 100}, []int64{100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.RowSlabs) != 1 {
		t.Fatalf("got %d row slabs, want 1", len(plan.RowSlabs))
	}
	slab := plan.RowSlabs[0]
	if slab.Bin1Lo != 0 || slab.Bin1Hi != bins.NumBins() {
		t.Fatalf("unexpected genome-wide slab: %+v", slab)
	}
}

func TestBuildCoolerRangeOneD(t *testing.T) {
	ref, bins := testRef(t)
	q1, err := gquery.Parse("chr2", ref, bins)
	if err != nil {
		t.Fatal(err)
	}
	plan, err := Build(BackendCooler, ref, bins.NumBins(), Options{Resolution: 100, Q1: &q1}, []int64{100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	slab := plan.RowSlabs[0]
	if slab.Bin1Lo != q1.BinBegin || slab.Bin2Hi != q1.BinEnd {
		t.Fatalf("unexpected range slab: %+v", slab)
	}
}

func TestBuildRejectsUnknownResolution(t *testing.T) {
	ref, bins := testRef(t)
	_, err := Build(BackendCooler, ref, bins.NumBins(), Options{Resolution: 50}, []int64{100, 200}, nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered resolution")
	}
}

func TestBuildRejectsConflictingRangeAndCisOnly(t *testing.T) {
	ref, bins := testRef(t)
	q1, _ := gquery.Parse("chr1", ref, bins)
	_, err := Build(BackendCooler, ref, bins.NumBins(), Options{Resolution: 100, Q1: &q1, CisOnly: true}, []int64{100}, nil)
	if err == nil {
		t.Fatal("expected an error for a range combined with cis-only")
	}
}

func TestBuildHicBlockSetsCisOnly(t *testing.T) {
	ref, bins := testRef(t)
	plan, err := Build(BackendHic, ref, bins.NumBins(), Options{Resolution: 100, CisOnly: true}, []int64{100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.BlockSets) != ref.Len() {
		t.Fatalf("got %d block sets, want %d (one per chromosome)", len(plan.BlockSets), ref.Len())
	}
	for _, bs := range plan.BlockSets {
		if bs.Pair.Chrom1 != bs.Pair.Chrom2 {
			t.Fatalf("expected only cis pairs, got %+v", bs.Pair)
		}
	}
}

func TestBuildHicBlockSetsGenomeWide(t *testing.T) {
	ref, bins := testRef(t)
	plan, err := Build(BackendHic, ref, bins.NumBins(), Options{Resolution: 100}, []int64{100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	n := ref.Len()
	want := n * (n + 1) / 2
	if len(plan.BlockSets) != want {
		t.Fatalf("got %d block sets, want %d (upper triangle incl. diagonal)", len(plan.BlockSets), want)
	}
}

func TestBuildRejectsUnknownNormalization(t *testing.T) {
	ref, bins := testRef(t)
	_, err := Build(BackendCooler, ref, bins.NumBins(), Options{Resolution: 100, Normalization: "ice"}, []int64{100}, []string{"vc"})
	if err == nil {
		t.Fatal("expected an error for an unregistered normalization")
	}
}
