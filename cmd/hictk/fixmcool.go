package main

import (
	"flag"
	"io"

	"github.com/hictk-go/hictk/ingest"
)

func runFixMcool(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		return usage(stderr, prog, "expected <IN> <OUT> arguments")
	}
	if err := ingest.FixMcool(fs.Arg(0), fs.Arg(1)); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"in": fs.Arg(0), "out": fs.Arg(1)}).Info("fix-mcool complete")
	return 0
}
