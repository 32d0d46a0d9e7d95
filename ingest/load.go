package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/formats"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// LoadFormat names one of the supported text record formats, mirroring
// the `load --format` flag.
type LoadFormat string

const (
	FormatPairs      LoadFormat = "pairs"
	FormatBg2        LoadFormat = "bg2"
	FormatCoo        LoadFormat = "coo"
	FormatValidPairs LoadFormat = "validpairs"
)

// LoadOptions configures the `load` sub-command.
type LoadOptions struct {
	Options
	Format                   LoadFormat
	IgnoreUnknownChromosomes bool
}

// Load reads text records from r (already decompressed by the caller, if
// needed) in the given format, bins them against ref/bins, and writes a
// new single-resolution Cooler container to outPath via the same
// buffer/spill/merge pipeline the rest of C9 uses.
func Load(r io.Reader, ref *genome.Reference, bins *genome.BinTable, outPath string, opts LoadOptions) error {
	opts.Options = opts.Options.withDefaults()

	it, err := scannerFor(r, opts.Format, ref, bins, opts.IgnoreUnknownChromosomes)
	if err != nil {
		return err
	}

	acc := New(opts.Options)
	if err := acc.AddFrom(it); err != nil {
		acc.Abort()
		return err
	}
	merged, err := acc.Finish()
	if err != nil {
		acc.Abort()
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		merged.Close()
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	w, err := cooler.NewWriter(out, ref, bins, dtypeFor(opts.CountType), cooler.DefaultCompression)
	if err != nil {
		merged.Close()
		return err
	}
	if err := w.WriteFrom(merged); err != nil {
		return err
	}
	return w.Finalize(nil)
}

func dtypeFor(ct CountType) string {
	if ct == CountFloat {
		return "float64"
	}
	return "int32"
}

func scannerFor(r io.Reader, format LoadFormat, ref *genome.Reference, bins *genome.BinTable, ignoreUnknown bool) (pixel.Iterator, error) {
	toPixels := formats.ToPixels
	if ignoreUnknown {
		toPixels = formats.ToPixelsIgnoringUnknownChromosomes
	}
	switch format {
	case FormatPairs, "":
		return toPixels(formats.NewPairsScanner(r), ref, bins), nil
	case FormatBg2:
		return toPixels(formats.NewBg2Scanner(r), ref, bins), nil
	case FormatValidPairs:
		return toPixels(formats.NewValidPairsScanner(r), ref, bins), nil
	case FormatCoo:
		return formats.ToPixelsDirect(formats.NewCooScanner(r)), nil
	default:
		return nil, fmt.Errorf("%w: unknown load format %q", hictkerr.ErrBadFileFormat, format)
	}
}

// DetectFormat maps a --format flag value (case-insensitively) to a
// LoadFormat, matching the CLI's accepted spelling.
func DetectFormat(s string) LoadFormat {
	return LoadFormat(strings.ToLower(s))
}
