package genome

import (
	"strings"
	"testing"
)

func TestParseBinTable(t *testing.T) {
	ref, err := NewReference([]string{"chr1", "chr2"}, []int64{100, 50})
	if err != nil {
		t.Fatal(err)
	}
	text := "chr1\t0\t40\nchr1\t40\t100\nchr2\t0\t50\n"
	bins, err := ParseBinTable(strings.NewReader(text), ref)
	if err != nil {
		t.Fatal(err)
	}
	if bins.NumBins() != 3 {
		t.Fatalf("got %d bins, want 3", bins.NumBins())
	}
	b, err := bins.CoordsOf(1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Start != 40 || b.End != 100 || b.Chrom != 0 {
		t.Fatalf("unexpected bin 1: %+v", b)
	}
}

func TestParseBinTableUnknownChromosome(t *testing.T) {
	ref, err := NewReference([]string{"chr1"}, []int64{100})
	if err != nil {
		t.Fatal(err)
	}
	_, err = ParseBinTable(strings.NewReader("chrX\t0\t10\n"), ref)
	if err == nil {
		t.Fatal("expected an error for an unknown chromosome")
	}
}

func TestParseStandaloneBinTable(t *testing.T) {
	text := "chr1\t0\t50\nchr1\t50\t100\nchr2\t0\t30\n"
	ref, bins, err := ParseStandaloneBinTable(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if ref.Len() != 2 {
		t.Fatalf("got %d chromosomes, want 2", ref.Len())
	}
	if ref.At(0).Length != 100 || ref.At(1).Length != 30 {
		t.Fatalf("unexpected inferred lengths: %+v %+v", ref.At(0), ref.At(1))
	}
	if bins.NumBins() != 3 {
		t.Fatalf("got %d bins, want 3", bins.NumBins())
	}
}

func TestParseStandaloneBinTableBlankAndCommentLines(t *testing.T) {
	text := "# header\n\nchr1\t0\t10\n"
	ref, bins, err := ParseStandaloneBinTable(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if ref.Len() != 1 || bins.NumBins() != 1 {
		t.Fatalf("unexpected result: ref.Len()=%d bins.NumBins()=%d", ref.Len(), bins.NumBins())
	}
}
