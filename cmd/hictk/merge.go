package main

import (
	"flag"
	"io"

	"github.com/hictk-go/hictk/ingest"
)

func runMerge(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputFile := fs.String("output-file", "", "merged output path (required)")
	resolution := fs.Int64("resolution", 0, "resolution to merge (required for .mcool inputs)")
	cell := fs.String("cell", "", "cell to merge (required for .scool inputs)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outputFile == "" {
		return usage(stderr, prog, "--output-file is required")
	}
	if fs.NArg() == 0 {
		return usage(stderr, prog, "expected at least one <IN> argument")
	}

	if err := ingest.Merge(fs.Args(), *outputFile, *resolution, *cell); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"inputs": len(fs.Args()), "out": *outputFile}).Info("merge complete")
	return 0
}
