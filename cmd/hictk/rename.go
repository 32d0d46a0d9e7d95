package main

import (
	"bufio"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/hictk-go/hictk/ingest"
)

func runRenameChromosomes(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	addPrefix := fs.Bool("add-chr-prefix", false, "prefix every chromosome name with \"chr\"")
	removePrefix := fs.Bool("remove-chr-prefix", false, "strip a leading \"chr\" from every chromosome name")
	mappingsFile := fs.String("name-mappings", "", "path to a two-column \"old\\tnew\" chromosome name mapping file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return usage(stderr, prog, "expected exactly one <URI> argument")
	}

	opts := ingest.RenameOptions{AddChrPrefix: *addPrefix, RemoveChrPrefix: *removePrefix}
	if *mappingsFile != "" {
		mapping, err := readNameMappings(*mappingsFile)
		if err != nil {
			return fail(stderr, prog, err)
		}
		opts.NameMappings = mapping
	}

	if err := ingest.RenameChromosomes(fs.Arg(0), opts); err != nil {
		return fail(stderr, prog, err)
	}
	log.WithFields(map[string]interface{}{"path": fs.Arg(0)}).Info("rename-chromosomes complete")
	return 0
}

func readNameMappings(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			continue
		}
		out[fields[0]] = fields[1]
	}
	return out, sc.Err()
}
