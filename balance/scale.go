package balance

import "math"

// SCALE implements the Knight-Ruiz-style alternating scaling used by the
// .hic reference implementation: damped multiplicative row/column updates
// with a restart-on-divergence fallback, per §4.7. Because the contact
// matrix is symmetric, "row" and "column" scaling collapse into a single
// symmetric update identical in shape to ICE's, but with a damping factor
// applied to each step rather than a percentile mask.
func SCALE(newIt IteratorFactory, n int64, opts Options) ([]float64, error) {
	opts = opts.withDefaults()
	damping := 1.0

	w := ones(int(n))
	for iter := 0; iter < opts.MaxIter; iter++ {
		m, err := marginals(newIt, w)
		if err != nil {
			return nil, err
		}

		var sum float64
		var count int
		for _, v := range m {
			if v > 0 {
				sum += v
				count++
			}
		}
		if count == 0 {
			break
		}
		mean := sum / float64(count)

		next := make([]float64, len(w))
		diverged := false
		for i := range next {
			if m[i] <= 0 {
				next[i] = math.NaN()
				continue
			}
			step := w[i] / (m[i] / mean)
			next[i] = w[i] + damping*(step-w[i])
			if math.IsInf(next[i], 0) || math.IsNaN(next[i]) || next[i] <= 0 {
				diverged = true
				break
			}
		}

		if diverged {
			damping /= 2
			if damping < 1e-6 {
				break
			}
			continue
		}

		delta := linfDelta(w, next)
		w = next
		if delta < opts.Tol {
			break
		}
	}
	return w, nil
}
