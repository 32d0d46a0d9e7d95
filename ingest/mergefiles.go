package ingest

import (
	"fmt"
	"os"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
)

// Merge combines the pixel streams of several same-reference Cooler
// containers (at the given resolution/cell) into one new container,
// summing counts on any (bin1,bin2) pair more than one input shares. The
// inputs already stream (bin1,bin2)-sorted pixels, so this reuses only
// the N-way merger of §4.9 step 4, not the buffer/spill stages — those
// exist to sort an unsorted text stream, which a container's pixel table
// never is.
func Merge(inPaths []string, outPath string, resolution int64, cell string) error {
	if len(inPaths) == 0 {
		return fmt.Errorf("%w: merge requires at least one input", hictkerr.ErrBadFileFormat)
	}

	files := make([]*cooler.File, 0, len(inPaths))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	var ref *genome.Reference
	var bins *genome.BinTable
	var countDtype string
	sources := make([]mergeSource, 0, len(inPaths))
	for _, p := range inPaths {
		f, err := cooler.Open(p)
		if err != nil {
			return err
		}
		files = append(files, f)

		r, err := f.Reference(resolution, cell)
		if err != nil {
			return err
		}
		b, err := f.Bins(resolution, cell)
		if err != nil {
			return err
		}
		if ref == nil {
			ref, bins = r, b
			countDtype, err = f.CountDtype(resolution, cell)
			if err != nil {
				return err
			}
		} else if !ref.Equal(r) {
			return fmt.Errorf("%w: input %q has a different reference than the first input", hictkerr.ErrBadBinTable, p)
		}

		reader, err := cooler.NewReader(f, resolution, cell)
		if err != nil {
			return err
		}
		it, err := reader.All()
		if err != nil {
			return err
		}
		sources = append(sources, &iteratorSource{it: it})
	}

	m, err := newMerger(sources)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		m.Close()
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	w, err := cooler.NewWriter(out, ref, bins, countDtype, cooler.DefaultCompression)
	if err != nil {
		m.Close()
		return err
	}
	if err := w.WriteFrom(m); err != nil {
		return err
	}
	return w.Finalize(nil)
}
