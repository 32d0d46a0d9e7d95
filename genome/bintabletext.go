package genome

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/hictkerr"
)

// ParseBinTable reads a 3-column BED-like "chrom\tstart\tend" file (one
// row per bin, chromosome-major, contiguous within a chromosome) and
// resolves it against ref into a variable-width BinTable, the same shape
// ParseChromSizes gives a fixed-width one. Used by `load --bin-table`.
func ParseBinTable(r io.Reader, ref *Reference) (*BinTable, error) {
	var bins []Bin
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: bin table line %d: expected 3 fields, got %d", hictkerr.ErrBadFileFormat, line, len(fields))
		}
		rank := ref.RankOf(fields[0])
		if rank < 0 {
			return nil, fmt.Errorf("%w: bin table line %d: unknown chromosome %q", hictkerr.ErrUnknownChromosome, line, fields[0])
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bin table line %d: %v", hictkerr.ErrBadFileFormat, line, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bin table line %d: %v", hictkerr.ErrBadFileFormat, line, err)
		}
		bins = append(bins, Bin{Chrom: rank, Start: start, End: end})
	}
	if err := sc.Err(); err != nil {
		return nil, hictkerr.Wrap("bin table scan", err)
	}
	return BuildVariable(ref, bins)
}

// ParseStandaloneBinTable is ParseBinTable for the `load --bin-table`
// case where no chrom.sizes file is given alongside it: the reference is
// inferred directly from the table, each chromosome's length taken as
// the last row's end coordinate for that chromosome (rows are required
// to be chromosome-major and contiguous, so the last occurrence is the
// furthest extent seen).
func ParseStandaloneBinTable(r io.Reader) (*Reference, *BinTable, error) {
	type row struct {
		chrom      string
		start, end int64
	}
	var rows []row
	var order []string
	seen := map[string]bool{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, nil, fmt.Errorf("%w: bin table line %d: expected 3 fields, got %d", hictkerr.ErrBadFileFormat, line, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: bin table line %d: %v", hictkerr.ErrBadFileFormat, line, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: bin table line %d: %v", hictkerr.ErrBadFileFormat, line, err)
		}
		if !seen[fields[0]] {
			seen[fields[0]] = true
			order = append(order, fields[0])
		}
		rows = append(rows, row{chrom: fields[0], start: start, end: end})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, hictkerr.Wrap("bin table scan", err)
	}

	lengths := make(map[string]int64, len(order))
	for _, rr := range rows {
		if rr.end > lengths[rr.chrom] {
			lengths[rr.chrom] = rr.end
		}
	}
	lens := make([]int64, len(order))
	for i, name := range order {
		lens[i] = lengths[name]
	}
	ref, err := NewReference(order, lens)
	if err != nil {
		return nil, nil, err
	}

	bins := make([]Bin, len(rows))
	for i, rr := range rows {
		bins[i] = Bin{Chrom: ref.RankOf(rr.chrom), Start: rr.start, End: rr.end}
	}
	table, err := BuildVariable(ref, bins)
	if err != nil {
		return nil, nil, err
	}
	return ref, table, nil
}
