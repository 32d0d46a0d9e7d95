// Package gquery parses "chrom[:start[-end]]" genomic interval strings and
// resolves them against a genome.Reference + genome.BinTable into a
// half-open bin id range.
package gquery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
)

// Range is a resolved, half-open bin id interval: [BinBegin, BinEnd).
type Range struct {
	Chrom              int // chromosome rank; -1 if the range spans the genome
	Start, End         int64
	BinBegin, BinEnd   int64
}

// Span reports whether the range covers more than one chromosome (only
// possible for the genome-wide range produced by Genome).
func (q Range) Span() bool { return q.Chrom < 0 }

// Parse resolves a "chrom", "chrom:start", or "chrom:start-end" string
// against ref/bins. start defaults to 0, end defaults to the chromosome's
// length. Thousands-separator commas are stripped from numbers before
// parsing, matching the spec's accepted number format.
func Parse(s string, ref *genome.Reference, bins *genome.BinTable) (Range, error) {
	chromPart, startEnd, hasColon := cutColon(s)
	chrom, ok := ref.ByName(chromPart)
	if !ok {
		return Range{}, fmt.Errorf("%w: unknown chromosome %q", hictkerr.ErrUnknownChromosome, chromPart)
	}

	start := int64(0)
	end := chrom.Length
	if hasColon {
		var err error
		start, end, err = parseStartEnd(startEnd, chrom.Length)
		if err != nil {
			return Range{}, err
		}
	}
	if end <= start {
		return Range{}, fmt.Errorf("%w: range end (%d) must be greater than start (%d)", hictkerr.ErrBadRange, end, start)
	}
	if start < 0 || end > chrom.Length {
		return Range{}, fmt.Errorf("%w: range [%d,%d) out of bounds for %s (length %d)", hictkerr.ErrBadRange, start, end, chromPart, chrom.Length)
	}

	binBegin, err := bins.BinIDOf(chrom.Rank, start)
	if err != nil {
		return Range{}, err
	}
	binEnd, err := bins.BinIDOf(chrom.Rank, end)
	if err != nil {
		return Range{}, err
	}
	return Range{Chrom: chrom.Rank, Start: start, End: end, BinBegin: binBegin, BinEnd: binEnd}, nil
}

// Whole returns the full-chromosome Range for the named chromosome.
func Whole(name string, ref *genome.Reference, bins *genome.BinTable) (Range, error) {
	return Parse(name, ref, bins)
}

// Genome returns the genome-wide Range covering every bin in the table.
func Genome(bins *genome.BinTable) Range {
	return Range{Chrom: -1, BinBegin: 0, BinEnd: bins.NumBins()}
}

func cutColon(s string) (chrom, rest string, hasColon bool) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func parseStartEnd(rest string, chromLen int64) (start, end int64, err error) {
	i := strings.IndexByte(rest, '-')
	if i < 0 {
		start, err = parseNumber(rest)
		if err != nil {
			return 0, 0, err
		}
		return start, chromLen, nil
	}
	start, err = parseNumber(rest[:i])
	if err != nil {
		return 0, 0, err
	}
	end, err = parseNumber(rest[i+1:])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseNumber(s string) (int64, error) {
	stripped := strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(stripped, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q", hictkerr.ErrBadRange, s)
	}
	return n, nil
}
