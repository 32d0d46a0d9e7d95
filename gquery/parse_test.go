package gquery

import (
	"testing"

	"github.com/hictk-go/hictk/genome"
)

func setupRef(t *testing.T) (*genome.Reference, *genome.BinTable) {
	t.Helper()
	ref, err := genome.NewReference([]string{"chr1", "chr2"}, []int64{1000, 500})
	if err != nil {
		t.Fatal(err)
	}
	bins, err := genome.BuildFixed(ref, 100)
	if err != nil {
		t.Fatal(err)
	}
	return ref, bins
}

func TestParseWholeChromosome(t *testing.T) {
	ref, bins := setupRef(t)
	r, err := Parse("chr1", ref, bins)
	if err != nil {
		t.Fatal(err)
	}
	if r.Chrom != 0 || r.Start != 0 || r.End != 1000 {
		t.Fatalf("unexpected range: %+v", r)
	}
	if r.BinBegin != 0 || r.BinEnd != 10 {
		t.Fatalf("unexpected bin range: %+v", r)
	}
}

func TestParseStartOnly(t *testing.T) {
	ref, bins := setupRef(t)
	r, err := Parse("chr2:200", ref, bins)
	if err != nil {
		t.Fatal(err)
	}
	if r.Start != 200 || r.End != 500 {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestParseRejectsTrailingDashAfterCommaStart(t *testing.T) {
	ref, bins := setupRef(t)
	r, err := Parse("chr1:1,000-", ref, bins)
	if err == nil {
		t.Fatalf("expected a malformed open-ended range with trailing dash to fail, got %+v", r)
	}
}

func TestParseRejectsUnknownChromosome(t *testing.T) {
	ref, bins := setupRef(t)
	if _, err := Parse("chrX", ref, bins); err == nil {
		t.Fatal("expected an error for an unknown chromosome")
	}
}

func TestParseRejectsInvertedRange(t *testing.T) {
	ref, bins := setupRef(t)
	if _, err := Parse("chr1:500-100", ref, bins); err == nil {
		t.Fatal("expected an error for end <= start")
	}
}

func TestGenomeRange(t *testing.T) {
	_, bins := setupRef(t)
	r := Genome(bins)
	if !r.Span() {
		t.Fatal("expected the genome-wide range to report Span() == true")
	}
	if r.BinBegin != 0 || r.BinEnd != bins.NumBins() {
		t.Fatalf("unexpected genome range: %+v", r)
	}
}
