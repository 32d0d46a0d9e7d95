// Package query implements the Query Planner (C6): it turns a set of
// query options into a typed, back-end-specific execution plan without
// touching any back-end I/O itself.
package query

import (
	"fmt"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/gquery"
	"github.com/hictk-go/hictk/hictkerr"
)

// Backend names which back-end a Plan targets.
type Backend int

const (
	BackendCooler Backend = iota
	BackendHic
)

// RowSlab is a half-open rectangle of bin ids, the Cooler back-end's unit
// of work (a coordinate-sorted pixel-table row scan).
type RowSlab struct {
	Bin1Lo, Bin1Hi, Bin2Lo, Bin2Hi int64
}

// ChromPair is an order-independent chromosome rank pair.
type ChromPair struct {
	Chrom1, Chrom2 int
}

// BlockSet is the Hic back-end's unit of work: one chromosome pair at one
// resolution.
type BlockSet struct {
	Resolution int64
	Pair       ChromPair
}

// Plan is the planner's output: a typed, back-end-specific list of work
// items plus the resolved normalization name, per §4.6.
type Plan struct {
	Backend       Backend
	RowSlabs      []RowSlab
	BlockSets     []BlockSet
	Normalization string
}

// Options captures every query input the planner considers.
type Options struct {
	Resolution    int64 // 0 means "not applicable"
	Cell          string
	Q1, Q2        *gquery.Range
	CisOnly       bool
	TransOnly     bool
	Join          bool
	Normalization string
}

// Build validates opts against the container's known resolutions and
// normalizations and produces a Plan. knownResolutions/knownNormalizations
// come from the already-open file handle (cooler.File.Resolutions/
// WeightNames, or hic.File.Header().BPResolutions); Build itself never
// touches I/O.
func Build(backend Backend, ref *genome.Reference, numBins int64, opts Options, knownResolutions []int64, knownNormalizations []string) (*Plan, error) {
	if len(knownResolutions) > 0 {
		found := false
		for _, r := range knownResolutions {
			if r == opts.Resolution {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: resolution %d not available", hictkerr.ErrUnknownResolution, opts.Resolution)
		}
	}

	if opts.Q1 != nil && (opts.CisOnly || opts.TransOnly) {
		return nil, fmt.Errorf("%w: cis_only/trans_only are mutually exclusive with an explicit range", hictkerr.ErrConflictingQueryOptions)
	}
	if opts.CisOnly && opts.TransOnly {
		return nil, fmt.Errorf("%w: cis_only and trans_only are mutually exclusive", hictkerr.ErrConflictingQueryOptions)
	}

	if opts.Normalization != "" {
		known := false
		for _, n := range knownNormalizations {
			if n == opts.Normalization {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: normalization %q not known at this resolution", hictkerr.ErrUnknownNormalization, opts.Normalization)
		}
	}

	p := &Plan{Backend: backend, Normalization: opts.Normalization}
	switch backend {
	case BackendCooler:
		p.RowSlabs = buildRowSlabs(numBins, opts)
	case BackendHic:
		p.BlockSets = buildBlockSets(ref, opts)
	}
	return p, nil
}

func buildRowSlabs(numBins int64, opts Options) []RowSlab {
	slab := RowSlab{Bin1Lo: 0, Bin1Hi: numBins, Bin2Lo: 0, Bin2Hi: numBins}
	if opts.Q1 != nil {
		slab.Bin1Lo, slab.Bin1Hi = opts.Q1.BinBegin, opts.Q1.BinEnd
		if opts.Q2 != nil {
			slab.Bin2Lo, slab.Bin2Hi = opts.Q2.BinBegin, opts.Q2.BinEnd
		} else {
			slab.Bin2Lo, slab.Bin2Hi = opts.Q1.BinBegin, opts.Q1.BinEnd
		}
	}
	return []RowSlab{slab}
}

func buildBlockSets(ref *genome.Reference, opts Options) []BlockSet {
	var pairs []ChromPair
	switch {
	case opts.Q1 != nil && opts.Q1.Chrom >= 0:
		c2 := opts.Q1.Chrom
		if opts.Q2 != nil && opts.Q2.Chrom >= 0 {
			c2 = opts.Q2.Chrom
		}
		pairs = []ChromPair{{Chrom1: opts.Q1.Chrom, Chrom2: c2}}
	case opts.CisOnly:
		for i := 0; i < ref.Len(); i++ {
			pairs = append(pairs, ChromPair{Chrom1: i, Chrom2: i})
		}
	default:
		for i := 0; i < ref.Len(); i++ {
			for j := i; j < ref.Len(); j++ {
				if opts.TransOnly && i == j {
					continue
				}
				pairs = append(pairs, ChromPair{Chrom1: i, Chrom2: j})
			}
		}
	}
	out := make([]BlockSet, len(pairs))
	for i, pr := range pairs {
		out[i] = BlockSet{Resolution: opts.Resolution, Pair: pr}
	}
	return out
}
