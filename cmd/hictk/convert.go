package main

import (
	"flag"
	"io"
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/ingest"
)

func runConvert(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	resolutionsFlag := fs.String("resolutions", "", "comma-separated list of resolutions to carry over (default: all available)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		return usage(stderr, prog, "expected <IN> <OUT> arguments")
	}

	resolutions, err := parseResolutionList(*resolutionsFlag)
	if err != nil {
		return fail(stderr, prog, err)
	}

	if err := ingest.Convert(fs.Arg(0), fs.Arg(1), resolutions); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"in": fs.Arg(0), "out": fs.Arg(1)}).Info("convert complete")
	return 0
}

func parseResolutionList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, hictkerr.Wrap("parse --resolutions", err)
		}
		out = append(out, n)
	}
	return out, nil
}
