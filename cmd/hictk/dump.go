package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/gquery"
	"github.com/hictk-go/hictk/hic"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
	"github.com/hictk-go/hictk/query"
	"github.com/hictk-go/hictk/uri"
)

// runDump implements `dump <URI> [--resolution R] [--table T] [--range
// Q1] [--range2 Q2] [--balance NAME] [--join] [--cis-only|--trans-only]`.
func runDump(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	resolution := fs.Int64("resolution", 0, "resolution (required for .mcool/.hic inputs)")
	table := fs.String("table", "pixels", "chroms, bins, pixels, normalizations, resolutions, cells, or weights")
	rangeQ1 := fs.String("range", "", "genomic range restricting bin1 (and bin2, unless --range2 is given)")
	rangeQ2 := fs.String("range2", "", "genomic range restricting bin2")
	balance := fs.String("balance", "", "apply the named normalization weight to counts")
	join := fs.Bool("join", false, "emit BEDPE-style genomic coordinates instead of raw bin ids")
	cisOnly := fs.Bool("cis-only", false, "restrict to intra-chromosomal pixels")
	transOnly := fs.Bool("trans-only", false, "restrict to inter-chromosomal pixels")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return usage(stderr, prog, "expected a single <URI> argument")
	}

	u, err := uri.Parse(fs.Arg(0))
	if err != nil {
		return fail(stderr, prog, err)
	}
	res := *resolution
	if res == 0 {
		res = u.Resolution
	}

	w := bufio.NewWriter(stdout)
	defer w.Flush()

	if hic.Sniff(u.Path) {
		return dumpHic(w, stderr, prog, u, res, *table, *rangeQ1, *rangeQ2, *balance, *join, *cisOnly, *transOnly)
	}
	return dumpCooler(w, stderr, prog, u, res, *table, *rangeQ1, *rangeQ2, *balance, *join, *cisOnly, *transOnly)
}

func dumpCooler(w *bufio.Writer, stderr io.Writer, prog string, u uri.URI, resolution int64, table, rangeQ1, rangeQ2, balanceName string, join, cisOnly, transOnly bool) int {
	f, err := cooler.Open(u.Path)
	if err != nil {
		return fail(stderr, prog, err)
	}
	defer f.Close()

	ref, err := f.Reference(resolution, u.Cell)
	if err != nil {
		return fail(stderr, prog, err)
	}
	bins, err := f.Bins(resolution, u.Cell)
	if err != nil {
		return fail(stderr, prog, err)
	}

	switch table {
	case "chroms":
		for _, c := range ref.All() {
			fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Length)
		}
		return 0
	case "bins":
		dumpBinTable(w, bins, ref)
		return 0
	case "resolutions":
		for _, r := range f.Resolutions() {
			fmt.Fprintf(w, "%d\n", r)
		}
		return 0
	case "cells":
		for _, c := range f.Cells() {
			fmt.Fprintln(w, c)
		}
		return 0
	case "normalizations", "weights":
		names, err := f.WeightNames(resolution, u.Cell)
		if err != nil {
			return fail(stderr, prog, err)
		}
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		return 0
	}

	q1, q2, err := parseRanges(rangeQ1, rangeQ2, ref, bins)
	if err != nil {
		return fail(stderr, prog, err)
	}
	knownNorms, err := f.WeightNames(resolution, u.Cell)
	if err != nil {
		return fail(stderr, prog, err)
	}
	opts := query.Options{
		Resolution: resolution, Cell: u.Cell,
		Q1: q1, Q2: q2, CisOnly: cisOnly, TransOnly: transOnly,
		Normalization: balanceName,
	}
	plan, err := query.Build(query.BackendCooler, ref, bins.NumBins(), opts, f.Resolutions(), knownNorms)
	if err != nil {
		return fail(stderr, prog, err)
	}

	reader, err := cooler.NewReader(f, resolution, u.Cell)
	if err != nil {
		return fail(stderr, prog, err)
	}
	slab := plan.RowSlabs[0]
	base, err := reader.Select(slab.Bin1Lo, slab.Bin1Hi)
	if err != nil {
		return fail(stderr, prog, err)
	}

	sel := wrapSelector(base, bins, opts, slab)
	if balanceName != "" {
		weights, _, err := f.Weights(resolution, u.Cell, balanceName)
		if err != nil {
			return fail(stderr, prog, err)
		}
		sel = sel.WithWeights(weights)
	}

	if err := dumpPixels(w, sel, bins, ref, join); err != nil {
		return fail(stderr, prog, err)
	}
	return 0
}

func dumpHic(w *bufio.Writer, stderr io.Writer, prog string, u uri.URI, resolution int64, table, rangeQ1, rangeQ2, balanceName string, join, cisOnly, transOnly bool) int {
	hf, err := hic.Open(u.Path)
	if err != nil {
		return fail(stderr, prog, err)
	}
	defer hf.Close()

	ref := hf.Header().Reference

	switch table {
	case "chroms":
		for _, c := range ref.All() {
			fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Length)
		}
		return 0
	case "resolutions":
		for _, r := range hf.Header().BPResolutions {
			fmt.Fprintf(w, "%d\n", r)
		}
		return 0
	case "cells":
		return fail(stderr, prog, fmt.Errorf("%w: .hic inputs have no cells", hictkerr.ErrBadFileFormat))
	}

	if resolution == 0 {
		return fail(stderr, prog, fmt.Errorf("%w: --resolution is required for .hic inputs", hictkerr.ErrBadFileFormat))
	}
	bins, err := hf.Bins(resolution)
	if err != nil {
		return fail(stderr, prog, err)
	}

	if table == "bins" {
		dumpBinTable(w, bins, ref)
		return 0
	}
	if table == "normalizations" || table == "weights" {
		return fail(stderr, prog, fmt.Errorf("%w: .hic inputs carry no queryable catalog of normalization names; pass --balance with a known method directly", hictkerr.ErrBadFileFormat))
	}

	q1, q2, err := parseRanges(rangeQ1, rangeQ2, ref, bins)
	if err != nil {
		return fail(stderr, prog, err)
	}
	opts := query.Options{
		Resolution: resolution, Q1: q1, Q2: q2,
		CisOnly: cisOnly, TransOnly: transOnly, Normalization: balanceName,
	}
	var knownNorms []string
	if balanceName != "" {
		knownNorms = []string{balanceName}
	}
	plan, err := query.Build(query.BackendHic, ref, bins.NumBins(), opts, hf.Header().BPResolutions, knownNorms)
	if err != nil {
		return fail(stderr, prog, err)
	}

	var weights []float64
	if balanceName != "" {
		weights = make([]float64, bins.NumBins())
		for i := range weights {
			weights[i] = 1
		}
	}

	var its []pixel.Iterator
	for _, bs := range plan.BlockSets {
		lo1, hi1 := chromBinBounds(bins, bs.Pair.Chrom1, q1)
		lo2, hi2 := chromBinBounds(bins, bs.Pair.Chrom2, q2)
		if q2 == nil {
			lo2, hi2 = chromBinBounds(bins, bs.Pair.Chrom2, q1)
		}
		it, err := hf.Query(int32(bs.Pair.Chrom1), int32(bs.Pair.Chrom2), resolution, lo1, hi1, lo2, hi2, bins)
		if err != nil {
			return fail(stderr, prog, err)
		}
		its = append(its, it)

		if balanceName != "" {
			if err := fillNormVector(hf, bins, weights, bs.Pair.Chrom1, balanceName, resolution); err != nil {
				return fail(stderr, prog, err)
			}
			if err := fillNormVector(hf, bins, weights, bs.Pair.Chrom2, balanceName, resolution); err != nil {
				return fail(stderr, prog, err)
			}
		}
	}

	merged := chainIterators(its)
	sel := pixel.GenomeWide(merged, bins)
	if balanceName != "" {
		sel = sel.WithWeights(weights)
	}

	if err := dumpPixels(w, sel, bins, ref, join); err != nil {
		return fail(stderr, prog, err)
	}
	return 0
}

func fillNormVector(hf *hic.File, bins *genome.BinTable, weights []float64, chromRank int, method string, resolution int64) error {
	lo, hi := bins.ChromRange(chromRank)
	v, err := hf.NormVector(hic.NormVectorKey{Method: method, Chrom: int32(chromRank), Unit: hic.UnitBP, Resolution: resolution})
	if err != nil {
		return err
	}
	for i := lo; i < hi; i++ {
		weights[i] = v[i-lo]
	}
	return nil
}

func chromBinBounds(bins *genome.BinTable, chromRank int, q *gquery.Range) (lo, hi int64) {
	if q != nil && q.Chrom == chromRank {
		return q.BinBegin, q.BinEnd
	}
	return bins.ChromRange(chromRank)
}

func parseRanges(rangeQ1, rangeQ2 string, ref *genome.Reference, bins *genome.BinTable) (*gquery.Range, *gquery.Range, error) {
	var q1, q2 *gquery.Range
	if rangeQ1 != "" {
		r, err := gquery.Parse(rangeQ1, ref, bins)
		if err != nil {
			return nil, nil, err
		}
		q1 = &r
	}
	if rangeQ2 != "" {
		r, err := gquery.Parse(rangeQ2, ref, bins)
		if err != nil {
			return nil, nil, err
		}
		q2 = &r
	}
	return q1, q2, nil
}

func wrapSelector(base pixel.Iterator, bins *genome.BinTable, opts query.Options, slab query.RowSlab) *pixel.Selector {
	switch {
	case opts.Q1 != nil && opts.Q2 != nil:
		return pixel.RangeTwoD(base, bins, slab.Bin1Lo, slab.Bin1Hi, slab.Bin2Lo, slab.Bin2Hi)
	case opts.Q1 != nil:
		return pixel.RangeOneD(base, bins, slab.Bin1Lo, slab.Bin1Hi)
	case opts.CisOnly:
		return pixel.CisOnly(base, bins)
	case opts.TransOnly:
		return pixel.TransOnly(base, bins)
	default:
		return pixel.GenomeWide(base, bins)
	}
}

func dumpBinTable(w *bufio.Writer, bins *genome.BinTable, ref *genome.Reference) {
	n := bins.NumBins()
	for id := int64(0); id < n; id++ {
		b, err := bins.CoordsOf(id)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", ref.At(b.Chrom).Name, b.Start, b.End)
	}
}

func dumpPixels(w *bufio.Writer, it pixel.Iterator, bins *genome.BinTable, ref *genome.Reference, join bool) error {
	for it.Next() {
		p := it.Pixel()
		if join {
			j, err := pixel.Join(p, bins, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d\t%v\n", j.Chrom1, j.Start1, j.End1, j.Chrom2, j.Start2, j.End2, j.Count)
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%v\n", p.Bin1, p.Bin2, p.Count)
	}
	if err := it.Error(); err != nil {
		return err
	}
	return it.Close()
}
