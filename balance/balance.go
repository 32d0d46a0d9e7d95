// Package balance implements the Balancer (C7): ICE, SCALE, and VC matrix
// balancing, sharing one streaming marginal-sum pass over a pixel.Iterator.
package balance

import (
	"fmt"
	"math"

	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// IteratorFactory opens a fresh pixel.Iterator over the balancing mode's
// pixel set. Balancing needs one full pass per iteration, and
// pixel.Iterator is forward-only and non-restartable, so every pass asks
// the caller to re-open rather than trying to rewind one.
type IteratorFactory func() (pixel.Iterator, error)

// Options configures the shared iterative stopping rule.
type Options struct {
	Tol     float64 // default 1e-5
	MaxIter int     // default 200
}

func (o Options) withDefaults() Options {
	if o.Tol <= 0 {
		o.Tol = 1e-5
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 200
	}
	return o
}

// marginals streams one full pass, accumulating m[i] += c*w[j] (and the
// symmetric contribution off the diagonal), per §4.7's shared pass.
// Pixels touching a masked (NaN-weighted) bin contribute nothing.
func marginals(newIt IteratorFactory, w []float64) ([]float64, error) {
	it, err := newIt()
	if err != nil {
		return nil, err
	}
	m := make([]float64, len(w))
	for it.Next() {
		p := it.Pixel()
		i, j := p.Bin1, p.Bin2
		if int(i) >= len(w) || int(j) >= len(w) {
			it.Close()
			return nil, fmt.Errorf("%w: pixel bin id out of range of bin table", hictkerr.ErrBadRange)
		}
		if math.IsNaN(w[i]) || math.IsNaN(w[j]) {
			continue
		}
		c := p.Count
		if i == j {
			m[i] += c * w[i]
			continue
		}
		m[i] += c * w[j]
		m[j] += c * w[i]
	}
	if err := it.Error(); err != nil {
		it.Close()
		return nil, err
	}
	return m, it.Close()
}

func linfDelta(a, b []float64) float64 {
	var d float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		if v := math.Abs(a[i] - b[i]); v > d {
			d = v
		}
	}
	return d
}

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}
