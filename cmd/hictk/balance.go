package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/balance"
	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/ingest"
	"github.com/hictk-go/hictk/pixel"
)

// runBalance implements `balance {ice|scale|vc} <URI> [--mode gw|cis|trans]`.
// Balancing writes its result back as a new weight column on the same
// Cooler container (an .hic input has no genome-wide weight vector to
// commit a result into — its norm vectors are stored per chromosome — so
// balance, like zoomify, is Cooler-only).
func runBalance(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return usage(stderr, prog, "expected a method: ice, scale, or vc")
	}
	method := args[0]
	args = args[1:]

	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", "gw", "balancing scope: gw, cis, or trans")
	resolution := fs.Int64("resolution", 0, "resolution to balance (required for .mcool inputs)")
	cell := fs.String("cell", "", "cell to balance (required for .scool inputs)")
	name := fs.String("name", "", "weight dataset name (defaults to the method name)")
	tol := fs.Float64("tol", 1e-5, "convergence tolerance")
	maxIter := fs.Int("max-iter", 200, "maximum iteration count")
	_ = fs.String("tmpdir", "", "unused: balancing keeps its working state in memory, not on disk")
	_ = fs.Int("threads", 1, "unused: the balancing passes are single-threaded streaming scans")
	_ = fs.Int64("chunk-size", 0, "unused: the balancing passes stream row by row")
	_ = fs.Int("compression-lvl", 0, "unused: balancing rewrites with the container's default compression")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return usage(stderr, prog, "expected a single <URI> argument")
	}
	path := fs.Arg(0)

	weightName := *name
	if weightName == "" {
		weightName = method
	}

	f, err := cooler.Open(path)
	if err != nil {
		return fail(stderr, prog, err)
	}
	bins, err := f.Bins(*resolution, *cell)
	if err != nil {
		f.Close()
		return fail(stderr, prog, err)
	}
	n := bins.NumBins()

	newIt := func() (pixel.Iterator, error) {
		reader, err := cooler.NewReader(f, *resolution, *cell)
		if err != nil {
			return nil, err
		}
		it, err := reader.All()
		if err != nil {
			return nil, err
		}
		switch *mode {
		case "cis":
			return pixel.CisOnly(it, bins), nil
		case "trans":
			return pixel.TransOnly(it, bins), nil
		default:
			return pixel.GenomeWide(it, bins), nil
		}
	}

	var weights []float64
	opts := balance.Options{Tol: *tol, MaxIter: *maxIter}
	switch method {
	case "ice":
		weights, err = balance.ICE(newIt, n, balance.ICEOptions{Options: opts})
	case "scale":
		weights, err = balance.SCALE(newIt, n, opts)
	case "vc":
		weights, err = balance.VC(newIt, n)
	case "vc_sqrt":
		weights, err = balance.VCSqrt(newIt, n)
	default:
		f.Close()
		return fail(stderr, prog, fmt.Errorf("%w: unknown balancing method %q", hictkerr.ErrBadFileFormat, method))
	}
	if err != nil {
		f.Close()
		return fail(stderr, prog, err)
	}
	if err := f.Close(); err != nil {
		return fail(stderr, prog, err)
	}

	if err := ingest.AddWeight(path, *resolution, *cell, weightName, weights, *mode); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"uri": path, "method": method, "weight": weightName}).Info("balance complete")
	return 0
}
