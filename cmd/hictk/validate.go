package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/hictk-go/hictk/metadata"
	"github.com/hictk-go/hictk/validate"
)

func runValidate(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputFormat := fs.String("output-format", "json", "report format: json, toml, or yaml")
	exhaustive := fs.Bool("exhaustive", false, "decode every pixel payload, not just structural indexes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return usage(stderr, prog, "expected exactly one <URI> argument")
	}

	report, err := validate.File(fs.Arg(0), validate.Options{Exhaustive: *exhaustive})
	if err != nil {
		return fail(stderr, prog, err)
	}

	b, err := renderReport(report, parseOutputFormat(*outputFormat))
	if err != nil {
		return fail(stderr, prog, err)
	}
	stdout.Write(b)
	if !report.Valid {
		return 1
	}
	return 0
}

func renderReport(r *validate.Report, format metadata.Format) ([]byte, error) {
	switch format {
	case metadata.FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case metadata.FormatYAML:
		return yaml.Marshal(r)
	default:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
}
