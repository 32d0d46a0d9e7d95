package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/zoomify"
)

// runZoomify implements `zoomify <IN> <OUT> --resolutions R...`: each
// requested target resolution is coarsened independently from <IN>'s
// base resolution (not cascaded through intermediate zoom levels) and
// written as one more resolution group of an .mcool output.
func runZoomify(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	resolutions := fs.String("resolutions", "", "comma-separated list of target resolutions")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		return usage(stderr, prog, "expected <IN> <OUT> arguments")
	}
	if *resolutions == "" {
		return usage(stderr, prog, "--resolutions is required")
	}
	targets, err := parseResolutionList(*resolutions)
	if err != nil {
		return fail(stderr, prog, err)
	}

	src, err := cooler.Open(fs.Arg(0))
	if err != nil {
		return fail(stderr, prog, err)
	}
	defer src.Close()

	baseRes := src.Resolutions()
	if len(baseRes) == 0 {
		return fail(stderr, prog, fmt.Errorf("%w: input has no resolutions to coarsen from", hictkerr.ErrBadFileFormat))
	}
	base := baseRes[0]
	for _, r := range baseRes {
		if r < base {
			base = r
		}
	}

	ref, err := src.Reference(base, "")
	if err != nil {
		return fail(stderr, prog, err)
	}
	countDtype, err := src.CountDtype(base, "")
	if err != nil {
		return fail(stderr, prog, err)
	}

	out, err := os.Create(fs.Arg(1))
	if err != nil {
		return fail(stderr, prog, hictkerr.Wrap("create output", err))
	}
	defer out.Close()

	mw, err := cooler.NewMultiWriter(out)
	if err != nil {
		return fail(stderr, prog, err)
	}

	for _, target := range targets {
		if target%base != 0 || target < base {
			return fail(stderr, prog, fmt.Errorf("%w: target resolution %d is not an integer multiple of the base resolution %d", hictkerr.ErrBadFileFormat, target, base))
		}
		targetBins, err := genome.BuildFixed(ref, target)
		if err != nil {
			return fail(stderr, prog, err)
		}

		reader, err := cooler.NewReader(src, base, "")
		if err != nil {
			return fail(stderr, prog, err)
		}
		baseIt, err := reader.All()
		if err != nil {
			return fail(stderr, prog, err)
		}

		var it = baseIt
		if k := target / base; k > 1 {
			it = zoomify.NewCoarsener(baseIt, k)
		}

		w, err := mw.Resolution(target, ref, targetBins, countDtype, cooler.DefaultCompression)
		if err != nil {
			return fail(stderr, prog, err)
		}
		if err := w.WriteFrom(it); err != nil {
			return fail(stderr, prog, err)
		}
		if err := w.Finalize(nil); err != nil {
			return fail(stderr, prog, err)
		}
	}

	if err := mw.Finalize(); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"in": fs.Arg(0), "out": fs.Arg(1), "resolutions": targets}).Info("zoomify complete")
	return 0
}
