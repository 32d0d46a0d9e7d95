// Package validate checks a Cooler or .hic container against the
// invariants the rest of hictk assumes: a well-formed bin table, strictly
// sorted pixels, a self-consistent index, and (for .mcool/.scool)
// reference-equal resolutions/cells.
package validate

import (
	"fmt"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hic"
)

// Issue is one validation failure.
type Issue struct {
	Resolution int64  `json:"resolution,omitempty"`
	Cell       string `json:"cell,omitempty"`
	Message    string `json:"message"`
}

// Report is the result of validating one container.
type Report struct {
	Path   string  `json:"path"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Options controls how thoroughly File checks a container.
type Options struct {
	// Exhaustive additionally streams pixels: for Cooler containers every
	// pixel is checked for bin-id bounds, upper-triangular storage and
	// sort order, and the scanned count is compared with the stored pixel
	// count; for .hic only each chromosome's intra-chromosomal pixels are
	// checked for sort order. Without it, only the reference and bin
	// table are checked.
	Exhaustive bool
}

func (r *Report) fail(resolution int64, cell, format string, args ...interface{}) {
	r.Valid = false
	r.Issues = append(r.Issues, Issue{Resolution: resolution, Cell: cell, Message: fmt.Sprintf(format, args...)})
}

// File validates path, dispatching on container kind.
func File(path string, opts Options) (*Report, error) {
	r := &Report{Path: path, Valid: true}
	if hic.Sniff(path) {
		return r, validateHic(r, path, opts)
	}
	return r, validateCooler(r, path, opts)
}

func validateCooler(r *Report, path string, opts Options) error {
	f, err := cooler.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch f.Kind() {
	case cooler.KindMcool:
		var refDigest [32]byte
		haveRef := false
		for _, res := range f.Resolutions() {
			if err := validateResolution(r, f, res, "", opts, &refDigest, &haveRef); err != nil {
				return err
			}
		}
	case cooler.KindScool:
		var refDigest [32]byte
		haveRef := false
		for _, cell := range f.Cells() {
			if err := validateResolution(r, f, 0, cell, opts, &refDigest, &haveRef); err != nil {
				return err
			}
		}
	default:
		var refDigest [32]byte
		haveRef := false
		if err := validateResolution(r, f, 0, "", opts, &refDigest, &haveRef); err != nil {
			return err
		}
	}
	return nil
}

func validateResolution(r *Report, f *cooler.File, resolution int64, cell string, opts Options, refDigest *[32]byte, haveRef *bool) error {
	ref, err := f.Reference(resolution, cell)
	if err != nil {
		r.fail(resolution, cell, "failed to read reference: %v", err)
		return nil
	}
	d := ref.Digest()
	if !*haveRef {
		*refDigest = d
		*haveRef = true
	} else if d != *refDigest {
		r.fail(resolution, cell, "reference does not match the container's other resolutions/cells")
	}

	bins, err := f.Bins(resolution, cell)
	if err != nil {
		r.fail(resolution, cell, "failed to read bin table: %v", err)
		return nil
	}
	if bins.NumBins() == 0 {
		r.fail(resolution, cell, "bin table is empty")
	}

	if !opts.Exhaustive {
		return nil
	}

	reader, err := cooler.NewReader(f, resolution, cell)
	if err != nil {
		r.fail(resolution, cell, "failed to open pixel reader: %v", err)
		return nil
	}
	it, err := reader.All()
	if err != nil {
		r.fail(resolution, cell, "failed to iterate pixels: %v", err)
		return nil
	}
	defer it.Close()

	haveLast := false
	var lastBin1, lastBin2 int64
	var n int64
	for it.Next() {
		p := it.Pixel()
		if p.Bin1 < 0 || p.Bin1 >= bins.NumBins() || p.Bin2 < 0 || p.Bin2 >= bins.NumBins() {
			r.fail(resolution, cell, "pixel (%d,%d) references an out-of-range bin", p.Bin1, p.Bin2)
		}
		if p.Bin2 < p.Bin1 {
			r.fail(resolution, cell, "pixel (%d,%d) is stored below the diagonal", p.Bin1, p.Bin2)
		}
		if haveLast && (p.Bin1 < lastBin1 || (p.Bin1 == lastBin1 && p.Bin2 <= lastBin2)) {
			r.fail(resolution, cell, "pixel (%d,%d) is out of sorted order after (%d,%d)", p.Bin1, p.Bin2, lastBin1, lastBin2)
			break
		}
		lastBin1, lastBin2 = p.Bin1, p.Bin2
		haveLast = true
		n++
	}
	if err := it.Error(); err != nil {
		r.fail(resolution, cell, "pixel iteration failed: %v", err)
	}

	nnz, err := f.PixelCount(resolution, cell)
	if err == nil && nnz != n {
		r.fail(resolution, cell, "pixel count mismatch: index reports %d, scan found %d", nnz, n)
	}
	return nil
}

func validateHicResolution(r *Report, f *hic.File, res int64, bins *genome.BinTable) {
	ref := bins.Reference()
	for rank := 0; rank < ref.Len(); rank++ {
		lo, hi := bins.ChromRange(rank)
		it, err := f.Query(int32(rank), int32(rank), res, lo, hi, lo, hi, bins)
		if err != nil {
			r.fail(res, "", "failed to query chromosome %q: %v", ref.At(rank).Name, err)
			continue
		}
		haveLast := false
		var lastBin1, lastBin2 int64
		for it.Next() {
			p := it.Pixel()
			if haveLast && (p.Bin1 < lastBin1 || (p.Bin1 == lastBin1 && p.Bin2 <= lastBin2)) {
				r.fail(res, "", "pixel (%d,%d) out of sorted order in chromosome %q", p.Bin1, p.Bin2, ref.At(rank).Name)
				break
			}
			lastBin1, lastBin2 = p.Bin1, p.Bin2
			haveLast = true
		}
		if err := it.Error(); err != nil {
			r.fail(res, "", "pixel iteration failed for chromosome %q: %v", ref.At(rank).Name, err)
		}
		it.Close()
	}
}

func validateHic(r *Report, path string, opts Options) error {
	f, err := hic.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := f.Header()
	if h.Reference.Len() == 0 {
		r.fail(0, "", "genome reference is empty")
	}
	for _, res := range h.BPResolutions {
		bins, err := f.Bins(res)
		if err != nil {
			r.fail(res, "", "failed to build bin table: %v", err)
			continue
		}
		if bins.NumBins() == 0 {
			r.fail(res, "", "bin table is empty")
		}
		if opts.Exhaustive {
			validateHicResolution(r, f, res, bins)
		}
	}
	return nil
}
