package genome

import "testing"

func TestReferenceByNameAndRankOf(t *testing.T) {
	ref, err := NewReference([]string{"chr1", "chr2", "chr3"}, []int64{100, 200, 300})
	if err != nil {
		t.Fatal(err)
	}
	c, ok := ref.ByName("chr2")
	if !ok || c.Rank != 1 || c.Length != 200 {
		t.Fatalf("unexpected lookup: %+v ok=%v", c, ok)
	}
	if ref.RankOf("chr3") != 2 {
		t.Fatalf("got rank %d, want 2", ref.RankOf("chr3"))
	}
	if ref.RankOf("missing") != -1 {
		t.Fatalf("expected -1 for unknown chromosome")
	}
}

func TestReferenceEqual(t *testing.T) {
	a, _ := NewReference([]string{"chr1", "chr2"}, []int64{10, 20})
	b, _ := NewReference([]string{"chr1", "chr2"}, []int64{10, 20})
	c, _ := NewReference([]string{"chr2", "chr1"}, []int64{20, 10})
	if !a.Equal(b) {
		t.Fatal("expected equal references to compare equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differently ordered references to compare unequal")
	}
}

func TestReferenceRejectsDuplicateNames(t *testing.T) {
	_, err := NewReference([]string{"chr1", "chr1"}, []int64{10, 20})
	if err == nil {
		t.Fatal("expected an error for duplicate chromosome names")
	}
}

func TestBuildFixedBinCounts(t *testing.T) {
	ref, _ := NewReference([]string{"chr1", "chr2"}, []int64{250, 100})
	bins, err := BuildFixed(ref, 100)
	if err != nil {
		t.Fatal(err)
	}
	if bins.NumBins() != 4 {
		t.Fatalf("got %d bins, want 4 (3 + 1)", bins.NumBins())
	}
	last, err := bins.CoordsOf(2)
	if err != nil {
		t.Fatal(err)
	}
	if last.Start != 200 || last.End != 250 {
		t.Fatalf("unexpected last bin of chr1: %+v", last)
	}
}

func TestBinIDOfEndOfChromosome(t *testing.T) {
	ref, _ := NewReference([]string{"chr1", "chr2"}, []int64{250, 100})
	bins, _ := BuildFixed(ref, 100)
	id, err := bins.BinIDOf(0, 250)
	if err != nil {
		t.Fatal(err)
	}
	if id != 3 {
		t.Fatalf("got bin id %d, want 3 (one past chr1's last bin)", id)
	}
}
