package zoomify

import (
	"testing"

	"github.com/hictk-go/hictk/pixel"
)

func TestCoarsenerAggregatesIntoTargetBins(t *testing.T) {
	base := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 1},
		{Bin1: 0, Bin2: 1, Count: 2},
		{Bin1: 1, Bin2: 1, Count: 3},
		{Bin1: 2, Bin2: 3, Count: 4},
	}
	c := NewCoarsener(pixel.FromSlice(base), 2)
	got, err := pixel.Slice(c)
	if err != nil {
		t.Fatal(err)
	}
	want := map[[2]int64]float64{
		{0, 0}: 6, // bins (0,0),(0,1),(1,1) -> target (0,0)
		{1, 1}: 4, // bins (2,3) -> target (1,1)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pixels, want %d: %+v", len(got), len(want), got)
	}
	for _, p := range got {
		wantCount, ok := want[[2]int64{p.Bin1, p.Bin2}]
		if !ok || wantCount != p.Count {
			t.Fatalf("unexpected coarsened pixel %+v", p)
		}
	}
}

func TestCoarsenerEmptyInput(t *testing.T) {
	c := NewCoarsener(pixel.FromSlice(nil), 2)
	got, err := pixel.Slice(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no output pixels, got %+v", got)
	}
}
