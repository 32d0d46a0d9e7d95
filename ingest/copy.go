package ingest

import (
	"io"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
)

// renameFunc maps a source chromosome name to its output name; nil means
// no renaming.
type renameFunc func(name string) string

func renamedReference(ref *genome.Reference, rename renameFunc) (*genome.Reference, error) {
	if rename == nil {
		return ref, nil
	}
	names := make([]string, ref.Len())
	lengths := make([]int64, ref.Len())
	for i, c := range ref.All() {
		names[i] = rename(c.Name)
		lengths[i] = c.Length
	}
	return genome.NewReference(names, lengths)
}

// copyCoolerResolution copies one resolution/cell of src into a brand new
// single-resolution container written to out, optionally renaming
// chromosomes and/or rebuilding the pixel index from scratch (both
// rename-chromosomes and fix-mcool are this same "copy through" shape,
// per SPEC_FULL.md's note that renaming is a bin-table rewrite with no
// pixel-content change and fix-mcool rebuilds the index from an intact
// pixel stream).
func copyCoolerResolution(src *cooler.File, out io.Writer, resolution int64, cell string, rename renameFunc) error {
	ref, bins, countDtype, weights, err := coolerResolutionMeta(src, resolution, cell)
	if err != nil {
		return err
	}
	outRef, err := renamedReference(ref, rename)
	if err != nil {
		return err
	}
	w, err := cooler.NewWriter(out, outRef, bins, countDtype, cooler.DefaultCompression)
	if err != nil {
		return err
	}
	if err := copyCoolerPixelsAndWeights(src, w, resolution, cell, bins, weights); err != nil {
		return err
	}
	return w.Finalize(weights)
}

// copyCoolerResolutionInto does the same, but into an already-open
// MultiWriter group (used when the output spans several
// resolutions/cells, i.e. an .mcool/.scool).
func copyCoolerResolutionInto(src *cooler.File, mw *cooler.MultiWriter, resolution int64, cell string, rename renameFunc) error {
	ref, bins, countDtype, weights, err := coolerResolutionMeta(src, resolution, cell)
	if err != nil {
		return err
	}
	outRef, err := renamedReference(ref, rename)
	if err != nil {
		return err
	}
	var w *cooler.Writer
	if cell != "" {
		w, err = mw.Cell(cell, outRef, bins, countDtype, cooler.DefaultCompression)
	} else {
		w, err = mw.Resolution(resolution, outRef, bins, countDtype, cooler.DefaultCompression)
	}
	if err != nil {
		return err
	}
	if err := copyCoolerPixelsAndWeights(src, w, resolution, cell, bins, weights); err != nil {
		return err
	}
	return w.Finalize(weights)
}

func coolerResolutionMeta(src *cooler.File, resolution int64, cell string) (*genome.Reference, *genome.BinTable, string, map[string]struct {
	Values     []float64
	Convention string
}, error) {
	ref, err := src.Reference(resolution, cell)
	if err != nil {
		return nil, nil, "", nil, err
	}
	bins, err := src.Bins(resolution, cell)
	if err != nil {
		return nil, nil, "", nil, err
	}
	countDtype, err := src.CountDtype(resolution, cell)
	if err != nil {
		return nil, nil, "", nil, err
	}
	names, err := src.WeightNames(resolution, cell)
	if err != nil {
		return nil, nil, "", nil, err
	}
	weights := make(map[string]struct {
		Values     []float64
		Convention string
	}, len(names))
	for _, name := range names {
		values, convention, err := src.Weights(resolution, cell, name)
		if err != nil {
			return nil, nil, "", nil, err
		}
		weights[name] = struct {
			Values     []float64
			Convention string
		}{Values: values, Convention: convention}
	}
	return ref, bins, countDtype, weights, nil
}

func copyCoolerPixelsAndWeights(src *cooler.File, w *cooler.Writer, resolution int64, cell string, bins *genome.BinTable, weights map[string]struct {
	Values     []float64
	Convention string
}) error {
	reader, err := cooler.NewReader(src, resolution, cell)
	if err != nil {
		return err
	}
	it, err := reader.All()
	if err != nil {
		return err
	}
	return w.WriteFrom(it)
}
