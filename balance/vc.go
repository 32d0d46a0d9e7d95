package balance

import "math"

// VC implements vanilla-coverage normalization (one-shot, no iteration):
// w[i] = 1 / row_sum(i), then divided by the square root of the sum of all
// row sums, per §4.7.
func VC(newIt IteratorFactory, n int64) ([]float64, error) {
	m, err := marginals(newIt, ones(int(n)))
	if err != nil {
		return nil, err
	}
	w := make([]float64, len(m))
	var total float64
	for i, v := range m {
		if v <= 0 {
			w[i] = math.NaN()
			continue
		}
		w[i] = 1 / v
		total += v
	}
	norm := math.Sqrt(total)
	if norm > 0 {
		for i := range w {
			if !math.IsNaN(w[i]) {
				w[i] /= norm
			}
		}
	}
	return w, nil
}

// VCSqrt returns the square root of VC's weights, VC_SQRT in cooler's
// naming convention.
func VCSqrt(newIt IteratorFactory, n int64) ([]float64, error) {
	w, err := VC(newIt, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = math.Sqrt(v)
	}
	return out, nil
}
