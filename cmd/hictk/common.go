package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/hictk-go/hictk/metadata"
)

// fail writes err to stderr and returns the conventional runtime-failure
// exit code.
func fail(stderr io.Writer, prog string, err error) int {
	fmt.Fprintf(stderr, "%s: %s\n", prog, err)
	return 1
}

// usage writes a usage line and returns the conventional usage-error exit
// code.
func usage(stderr io.Writer, prog, msg string) int {
	fmt.Fprintf(stderr, "%s: %s\n", prog, msg)
	return 2
}

func parseOutputFormat(s string) metadata.Format {
	switch strings.ToLower(s) {
	case "toml":
		return metadata.FormatTOML
	case "yaml", "yml":
		return metadata.FormatYAML
	default:
		return metadata.FormatJSON
	}
}
