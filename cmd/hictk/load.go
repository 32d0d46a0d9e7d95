package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/ingest"
)

func runLoad(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	chromSizes := fs.String("chrom-sizes", "", "chrom.sizes file (use with --bin-size)")
	binSize := fs.Int64("bin-size", 0, "fixed bin width, in base pairs (use with --chrom-sizes)")
	binTable := fs.String("bin-table", "", "a 3-column chrom/start/end bin table file")
	format := fs.String("format", "pairs", "input record format: pairs, bg2, coo, or validpairs")
	ignoreUnknown := fs.Bool("ignore-unknown-chromosomes", false, "skip records naming a chromosome absent from the reference")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		return usage(stderr, prog, "expected <PAIRS> <OUT> arguments")
	}

	ref, bins, err := resolveBinTable(*chromSizes, *binSize, *binTable)
	if err != nil {
		return fail(stderr, prog, err)
	}

	in, err := openMaybeGzip(fs.Arg(0))
	if err != nil {
		return fail(stderr, prog, err)
	}
	defer in.Close()

	opts := ingest.LoadOptions{
		Format:                   ingest.DetectFormat(*format),
		IgnoreUnknownChromosomes: *ignoreUnknown,
	}
	if err := ingest.Load(in, ref, bins, fs.Arg(1), opts); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"in": fs.Arg(0), "out": fs.Arg(1), "format": *format}).Info("load complete")
	return 0
}

func resolveBinTable(chromSizes string, binSize int64, binTablePath string) (*genome.Reference, *genome.BinTable, error) {
	switch {
	case chromSizes != "" && binSize > 0:
		f, err := os.Open(chromSizes)
		if err != nil {
			return nil, nil, hictkerr.Wrap("open chrom-sizes", err)
		}
		defer f.Close()
		ref, err := genome.ParseChromSizes(f)
		if err != nil {
			return nil, nil, err
		}
		bins, err := genome.BuildFixed(ref, binSize)
		if err != nil {
			return nil, nil, err
		}
		return ref, bins, nil
	case binTablePath != "":
		f, err := os.Open(binTablePath)
		if err != nil {
			return nil, nil, hictkerr.Wrap("open bin-table", err)
		}
		defer f.Close()
		return genome.ParseStandaloneBinTable(f)
	default:
		return nil, nil, fmt.Errorf("%w: load requires either --chrom-sizes + --bin-size or --bin-table", hictkerr.ErrBadFileFormat)
	}
}

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hictkerr.Wrap("open input", err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, hictkerr.Wrap("open gzip input", err)
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}
