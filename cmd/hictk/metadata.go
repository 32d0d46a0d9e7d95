package main

import (
	"flag"
	"io"

	"github.com/hictk-go/hictk/metadata"
)

func runMetadata(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputFormat := fs.String("output-format", "json", "report format: json, toml, or yaml")
	// --recursive is accepted for CLI-surface compatibility: Collect
	// already walks every resolution/cell a single .mcool/.scool holds,
	// so there is nothing extra to recurse into.
	fs.Bool("recursive", false, "included for CLI compatibility; Collect already visits every resolution/cell")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return usage(stderr, prog, "expected exactly one <URI> argument")
	}

	m, err := metadata.Collect(fs.Arg(0))
	if err != nil {
		return fail(stderr, prog, err)
	}
	b, err := metadata.Render(m, parseOutputFormat(*outputFormat))
	if err != nil {
		return fail(stderr, prog, err)
	}
	stdout.Write(b)
	return 0
}
