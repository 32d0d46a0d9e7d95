package cooler

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
)

// Kind identifies which of the three Cooler container flavors a File is.
type Kind int

const (
	KindCool Kind = iota
	KindMcool
	KindScool
)

// File is an open Cooler-family container: .cool (single resolution),
// .mcool (multi-resolution), or .scool (single-cell). It exclusively owns
// its underlying container handle; no Iterator spawned from it survives
// its Close.
type File struct {
	c    *container
	f    *os.File
	kind Kind

	resolutions []int64 // sorted ascending; .mcool only, empty otherwise
	cells       []string
}

// Open opens an existing container read-only and classifies it as .cool,
// .mcool, or .scool by inspecting its top-level groups.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hictkerr.Wrap("open", err)
	}
	c, err := openContainer(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	file := &File{c: c, f: f}
	file.classify()
	return file, nil
}

func (f *File) classify() {
	if res := f.c.NamesWithPrefix("resolutions/"); len(res) > 0 {
		f.kind = KindMcool
		seen := map[int64]bool{}
		for _, n := range res {
			parts := strings.SplitN(strings.TrimPrefix(n, "resolutions/"), "/", 2)
			if r, err := strconv.ParseInt(parts[0], 10, 64); err == nil && !seen[r] {
				seen[r] = true
				f.resolutions = append(f.resolutions, r)
			}
		}
		sortInt64s(f.resolutions)
		return
	}
	if cells := f.c.NamesWithPrefix("cells/"); len(cells) > 0 {
		f.kind = KindScool
		seen := map[string]bool{}
		for _, n := range cells {
			parts := strings.SplitN(strings.TrimPrefix(n, "cells/"), "/", 2)
			if !seen[parts[0]] {
				seen[parts[0]] = true
				f.cells = append(f.cells, parts[0])
			}
		}
		return
	}
	f.kind = KindCool
}

func sortInt64s(s []int64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Kind returns the container flavor.
func (f *File) Kind() Kind { return f.kind }

// Resolutions returns the sorted resolution list for .mcool. It is empty
// for .cool and .scool, whose groups are addressed with resolution 0; a
// .cool's bin size is not reported here.
func (f *File) Resolutions() []int64 { return f.resolutions }

// Cells returns the available cell names (.scool only).
func (f *File) Cells() []string { return f.cells }

// group resolves the dataset-path prefix for the requested resolution
// (required for .mcool, forbidden for .cool) and/or cell (.scool only).
func (f *File) group(resolution int64, cell string) (Group, error) {
	switch f.kind {
	case KindCool:
		if resolution != 0 {
			return "", fmt.Errorf("%w: resolution not applicable to a single-resolution .cool", hictkerr.ErrUnknownResolution)
		}
		return "", nil
	case KindMcool:
		if resolution == 0 {
			return "", fmt.Errorf("%w: resolution is required for .mcool", hictkerr.ErrUnknownResolution)
		}
		for _, r := range f.resolutions {
			if r == resolution {
				return Group(fmt.Sprintf("resolutions/%d", resolution)), nil
			}
		}
		return "", fmt.Errorf("%w: resolution %d not present", hictkerr.ErrUnknownResolution, resolution)
	case KindScool:
		if cell == "" {
			return "", fmt.Errorf("%w: cell name is required for .scool", hictkerr.ErrUnknownResolution)
		}
		for _, c := range f.cells {
			if c == cell {
				return Group("cells/" + cell), nil
			}
		}
		return "", fmt.Errorf("%w: cell %q not present", hictkerr.ErrUnknownResolution, cell)
	}
	return "", fmt.Errorf("%w: unknown container kind", hictkerr.ErrBadFileFormat)
}

// Reference returns the chromosome list for the given resolution/cell.
func (f *File) Reference(resolution int64, cell string) (*genome.Reference, error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return nil, err
	}
	n, ok := f.c.Length(g.dataset(dsChromName))
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", hictkerr.ErrBadFileFormat, g.dataset(dsChromName))
	}
	names, err := f.c.readStringRange(g.dataset(dsChromName), 0, n)
	if err != nil {
		return nil, err
	}
	lengths, err := f.c.readInt64Range(g.dataset(dsChromLength), 0, n)
	if err != nil {
		return nil, err
	}
	return genome.NewReference(names, lengths)
}

// Bins returns the BinTable for the given resolution/cell.
func (f *File) Bins(resolution int64, cell string) (*genome.BinTable, error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return nil, err
	}
	ref, err := f.Reference(resolution, cell)
	if err != nil {
		return nil, err
	}
	if v, ok := f.c.Attr(g.dataset(dsBinChrom), attrBinSize); ok {
		binSize, convErr := strconv.ParseInt(v, 10, 64)
		if convErr != nil {
			return nil, fmt.Errorf("%w: malformed bin-size attribute", hictkerr.ErrBadFileFormat)
		}
		return genome.BuildFixed(ref, binSize)
	}
	n, _ := f.c.Length(g.dataset(dsBinChrom))
	chroms, err := f.c.readInt32Range(g.dataset(dsBinChrom), 0, n)
	if err != nil {
		return nil, err
	}
	starts, err := f.c.readInt64Range(g.dataset(dsBinStart), 0, n)
	if err != nil {
		return nil, err
	}
	ends, err := f.c.readInt64Range(g.dataset(dsBinEnd), 0, n)
	if err != nil {
		return nil, err
	}
	bins := make([]genome.Bin, n)
	for i := range bins {
		bins[i] = genome.Bin{Chrom: int(chroms[i]), Start: starts[i], End: ends[i]}
	}
	return genome.BuildVariable(ref, bins)
}

// WeightNames returns the names of available weight datasets for the
// given resolution/cell ("weight", "VC", "VC_SQRT", "ICE", ...).
func (f *File) WeightNames(resolution int64, cell string) ([]string, error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return nil, err
	}
	prefix := g.dataset("bins/")
	reserved := map[string]bool{
		prefix + "chrom": true, prefix + "start": true, prefix + "end": true,
	}
	var names []string
	for _, n := range f.c.NamesWithPrefix(prefix) {
		if !reserved[n] {
			names = append(names, strings.TrimPrefix(n, prefix))
		}
	}
	return names, nil
}

// CountDtype returns the storage dtype of the pixel count column
// ("int32" or "float64") for the given resolution/cell.
func (f *File) CountDtype(resolution int64, cell string) (string, error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return "", err
	}
	v, ok := f.c.Attr(g.dataset(dsPixelCount), attrCountDtype)
	if !ok {
		return "", fmt.Errorf("%w: missing count-dtype attribute", hictkerr.ErrBadFileFormat)
	}
	return v, nil
}

// PixelCount returns the number of stored (non-zero) pixels for the given
// resolution/cell, i.e. the container's nnz.
func (f *File) PixelCount(resolution int64, cell string) (int64, error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return 0, err
	}
	n, ok := f.c.Length(g.dataset(dsPixelBin1))
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", hictkerr.ErrBadFileFormat, g.dataset(dsPixelBin1))
	}
	return n, nil
}

// Close releases the underlying container handle.
func (f *File) Close() error {
	return hictkerr.Wrap("close", f.f.Close())
}
