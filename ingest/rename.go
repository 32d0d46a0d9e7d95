package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/hictkerr"
)

// RenameOptions selects one chromosome-renaming strategy for
// rename-chromosomes; exactly one field should be set.
type RenameOptions struct {
	AddChrPrefix    bool
	RemoveChrPrefix bool
	NameMappings    map[string]string // old name -> new name
}

func (o RenameOptions) fn() (renameFunc, error) {
	switch {
	case o.AddChrPrefix:
		return func(name string) string {
			if strings.HasPrefix(name, "chr") {
				return name
			}
			return "chr" + name
		}, nil
	case o.RemoveChrPrefix:
		return func(name string) string {
			return strings.TrimPrefix(name, "chr")
		}, nil
	case o.NameMappings != nil:
		return func(name string) string {
			if mapped, ok := o.NameMappings[name]; ok {
				return mapped
			}
			return name
		}, nil
	default:
		return nil, fmt.Errorf("%w: exactly one renaming strategy must be set", hictkerr.ErrBadFileFormat)
	}
}

// RenameChromosomes rewrites every resolution/cell's chromosome names in
// path according to opts. It writes the rewritten container to a
// sibling temp file and renames it over path on success (copy-then-
// rename, so a crash mid-write never corrupts the original), since
// renaming is a bin-table rewrite with no pixel-content change.
func RenameChromosomes(path string, opts RenameOptions) error {
	rename, err := opts.fn()
	if err != nil {
		return err
	}

	src, err := cooler.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	tmpPath := path + ".rename.tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return hictkerr.Wrap("create temp output", err)
	}

	if err := copyWithRename(src, out, rename); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
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

func copyWithRename(src *cooler.File, out *os.File, rename renameFunc) error {
	switch src.Kind() {
	case cooler.KindMcool:
		mw, err := cooler.NewMultiWriter(out)
		if err != nil {
			return err
		}
		for _, res := range src.Resolutions() {
			if err := copyCoolerResolutionInto(src, mw, res, "", rename); err != nil {
				return err
			}
		}
		return mw.Finalize()
	case cooler.KindScool:
		mw, err := cooler.NewMultiWriter(out)
		if err != nil {
			return err
		}
		for _, cell := range src.Cells() {
			if err := copyCoolerResolutionInto(src, mw, 0, cell, rename); err != nil {
				return err
			}
		}
		return mw.Finalize()
	default:
		return copyCoolerResolution(src, out, 0, "", rename)
	}
}
