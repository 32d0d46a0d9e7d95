package balance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ICEOptions adds ICE's marginal-masking percentile to the shared options.
type ICEOptions struct {
	Options
	MaskPercentile float64 // default 0.02
}

// ICE implements iterative correction and eigenvector decomposition
// (Imakaev et al. 2012) per §4.7: initialize w=1, repeatedly recompute
// marginals, mask low-coverage bins to NaN, rescale by the marginal over
// the mean of non-masked marginals, and stop on L∞ convergence.
func ICE(newIt IteratorFactory, n int64, opts ICEOptions) ([]float64, error) {
	opts.Options = opts.Options.withDefaults()
	if opts.MaskPercentile <= 0 {
		opts.MaskPercentile = 0.02
	}

	w := ones(int(n))
	for iter := 0; iter < opts.MaxIter; iter++ {
		m, err := marginals(newIt, w)
		if err != nil {
			return nil, err
		}

		cutoff := marginalCutoff(m, opts.MaskPercentile)
		masked := make([]bool, len(w))
		for i, v := range m {
			if math.IsNaN(w[i]) || v < cutoff {
				masked[i] = true
			}
		}

		var sum float64
		var count int
		for i, v := range m {
			if !masked[i] && v > 0 {
				sum += v
				count++
			}
		}
		if count == 0 {
			break
		}
		mean := sum / float64(count)

		next := make([]float64, len(w))
		for i := range next {
			if masked[i] || m[i] <= 0 {
				next[i] = math.NaN()
				continue
			}
			next[i] = w[i] / (m[i] / mean)
		}

		delta := linfDelta(w, next)
		w = next
		if delta < opts.Tol {
			break
		}
	}
	return w, nil
}

// marginalCutoff returns the value below which a bin's marginal is
// considered too sparse to balance, per ICE's default 2% cutoff.
func marginalCutoff(m []float64, percentile float64) float64 {
	nonzero := make([]float64, 0, len(m))
	for _, v := range m {
		if v > 0 && !math.IsNaN(v) {
			nonzero = append(nonzero, v)
		}
	}
	if len(nonzero) == 0 {
		return 0
	}
	sort.Float64s(nonzero)
	return stat.Quantile(percentile, stat.Empirical, nonzero, nil)
}
