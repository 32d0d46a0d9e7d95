package balance

import (
	"math"
	"testing"

	"github.com/hictk-go/hictk/pixel"
)

func factory(pixels []pixel.Pixel) IteratorFactory {
	return func() (pixel.Iterator, error) {
		cp := make([]pixel.Pixel, len(pixels))
		copy(cp, pixels)
		return pixel.FromSlice(cp), nil
	}
}

func TestMarginalsSymmetricAccumulation(t *testing.T) {
	pixels := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 2},
		{Bin1: 0, Bin2: 1, Count: 3},
		{Bin1: 1, Bin2: 1, Count: 1},
	}
	m, err := marginals(factory(pixels), ones(2))
	if err != nil {
		t.Fatal(err)
	}
	// bin0: diag 2 + off-diag 3 = 5; bin1: off-diag 3 + diag 1 = 4
	if m[0] != 5 || m[1] != 4 {
		t.Fatalf("unexpected marginals: %+v", m)
	}
}

func TestVCNormalizesByRowSum(t *testing.T) {
	pixels := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 4},
		{Bin1: 0, Bin2: 1, Count: 2},
		{Bin1: 1, Bin2: 1, Count: 4},
	}
	w, err := VC(factory(pixels), 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range w {
		if math.IsNaN(v) || v <= 0 {
			t.Fatalf("expected positive weights, got %+v", w)
		}
	}
}

func TestVCZeroMarginalProducesNaN(t *testing.T) {
	// bin 1 has no pixels at all.
	pixels := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 1},
	}
	w, err := VC(factory(pixels), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(w[1]) {
		t.Fatalf("expected bin 1's weight to be NaN, got %v", w[1])
	}
}

func TestICEConverges(t *testing.T) {
	pixels := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 5},
		{Bin1: 0, Bin2: 1, Count: 3},
		{Bin1: 0, Bin2: 2, Count: 2},
		{Bin1: 1, Bin2: 1, Count: 4},
		{Bin1: 1, Bin2: 2, Count: 3},
		{Bin1: 2, Bin2: 2, Count: 6},
	}
	w, err := ICE(factory(pixels), 3, ICEOptions{Options: Options{MaxIter: 200, Tol: 1e-6}})
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != 3 {
		t.Fatalf("got %d weights, want 3", len(w))
	}
}

func TestSCALEConverges(t *testing.T) {
	pixels := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 5},
		{Bin1: 0, Bin2: 1, Count: 3},
		{Bin1: 1, Bin2: 1, Count: 4},
	}
	w, err := SCALE(factory(pixels), 2, Options{MaxIter: 200, Tol: 1e-6})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range w {
		if math.IsNaN(v) {
			t.Fatalf("expected SCALE to converge to finite weights, got %+v", w)
		}
	}
}

func TestVCSqrtIsSquareRootOfVC(t *testing.T) {
	pixels := []pixel.Pixel{
		{Bin1: 0, Bin2: 0, Count: 4},
		{Bin1: 0, Bin2: 1, Count: 2},
		{Bin1: 1, Bin2: 1, Count: 4},
	}
	vc, err := VC(factory(pixels), 2)
	if err != nil {
		t.Fatal(err)
	}
	sq, err := VCSqrt(factory(pixels), 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range vc {
		if math.Abs(math.Sqrt(vc[i])-sq[i]) > 1e-12 {
			t.Fatalf("VCSqrt[%d]=%v, want sqrt(VC[%d])=%v", i, sq[i], i, math.Sqrt(vc[i]))
		}
	}
}
