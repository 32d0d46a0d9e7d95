package ingest

import (
	"os"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/hictkerr"
)

// AddWeight commits a newly computed balancing weight vector into path,
// in place, for the given resolution/cell: a weight column is an
// additional per-bin dataset, so committing one requires the same
// whole-container copy-then-rename rewrite RenameChromosomes uses, not
// an in-place append.
func AddWeight(path string, resolution int64, cell, name string, values []float64, convention string) error {
	src, err := cooler.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	tmpPath := path + ".balance.tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return hictkerr.Wrap("create temp output", err)
	}

	werr := copyWithExtraWeight(src, out, resolution, cell, name, values, convention)
	if werr != nil {
		out.Close()
		os.Remove(tmpPath)
		return werr
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return hictkerr.Wrap("close temp output", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return hictkerr.Wrap("rename temp output over original", err)
	}
	return nil
}

func copyWithExtraWeight(src *cooler.File, out *os.File, targetRes int64, targetCell, name string, values []float64, convention string) error {
	switch src.Kind() {
	case cooler.KindMcool:
		mw, err := cooler.NewMultiWriter(out)
		if err != nil {
			return err
		}
		for _, res := range src.Resolutions() {
			n, v, c := "", []float64(nil), ""
			if res == targetRes {
				n, v, c = name, values, convention
			}
			if err := copyCoolerResolutionIntoWithWeight(src, mw, res, "", n, v, c); err != nil {
				return err
			}
		}
		return mw.Finalize()
	case cooler.KindScool:
		mw, err := cooler.NewMultiWriter(out)
		if err != nil {
			return err
		}
		for _, cellName := range src.Cells() {
			n, v, c := "", []float64(nil), ""
			if cellName == targetCell {
				n, v, c = name, values, convention
			}
			if err := copyCoolerResolutionIntoWithWeight(src, mw, 0, cellName, n, v, c); err != nil {
				return err
			}
		}
		return mw.Finalize()
	default:
		return copyCoolerResolutionWithWeight(src, out, 0, "", name, values, convention)
	}
}

func copyCoolerResolutionWithWeight(src *cooler.File, out *os.File, resolution int64, cell, extraName string, extraValues []float64, extraConvention string) error {
	ref, bins, countDtype, weights, err := coolerResolutionMeta(src, resolution, cell)
	if err != nil {
		return err
	}
	if extraName != "" {
		weights[extraName] = struct {
			Values     []float64
			Convention string
		}{Values: extraValues, Convention: extraConvention}
	}
	w, err := cooler.NewWriter(out, ref, bins, countDtype, cooler.DefaultCompression)
	if err != nil {
		return err
	}
	if err := copyCoolerPixelsAndWeights(src, w, resolution, cell, bins, weights); err != nil {
		return err
	}
	return w.Finalize(weights)
}

func copyCoolerResolutionIntoWithWeight(src *cooler.File, mw *cooler.MultiWriter, resolution int64, cell, extraName string, extraValues []float64, extraConvention string) error {
	ref, bins, countDtype, weights, err := coolerResolutionMeta(src, resolution, cell)
	if err != nil {
		return err
	}
	if extraName != "" {
		weights[extraName] = struct {
			Values     []float64
			Convention string
		}{Values: extraValues, Convention: extraConvention}
	}
	var w *cooler.Writer
	if cell != "" {
		w, err = mw.Cell(cell, ref, bins, countDtype, cooler.DefaultCompression)
	} else {
		w, err = mw.Resolution(resolution, ref, bins, countDtype, cooler.DefaultCompression)
	}
	if err != nil {
		return err
	}
	if err := copyCoolerPixelsAndWeights(src, w, resolution, cell, bins, weights); err != nil {
		return err
	}
	return w.Finalize(weights)
}
