// Package genome implements the Reference and BinTable data model shared
// by the Cooler and Hic back-ends: an ordered chromosome list and the
// fixed/variable bin layout addressed by it.
package genome

import (
	"fmt"
	"sort"

	"github.com/gtank/blake2/blake2b"

	"github.com/hictk-go/hictk/hictkerr"
)

// Chromosome is one entry of a Reference: a name, a length in base pairs,
// and its stable zero-based rank (its position in the ordered list).
type Chromosome struct {
	Name   string
	Length int64
	Rank   int
}

// Reference is an ordered, immutable list of chromosomes. Chromosome order
// is part of a file's identity: two References are Equal only if names,
// lengths and order all match.
type Reference struct {
	chroms []Chromosome
	byName map[string]int
}

// NewReference builds a Reference from an ordered list of (name, length)
// pairs. Names must be unique and non-empty; lengths must be positive.
func NewReference(names []string, lengths []int64) (*Reference, error) {
	if len(names) != len(lengths) {
		return nil, fmt.Errorf("%w: names/lengths length mismatch", hictkerr.ErrBadBinTable)
	}
	r := &Reference{
		chroms: make([]Chromosome, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty chromosome name at rank %d", hictkerr.ErrBadBinTable, i)
		}
		if lengths[i] <= 0 {
			return nil, fmt.Errorf("%w: non-positive length for %q", hictkerr.ErrBadBinTable, name)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate chromosome name %q", hictkerr.ErrBadBinTable, name)
		}
		r.chroms[i] = Chromosome{Name: name, Length: lengths[i], Rank: i}
		r.byName[name] = i
	}
	return r, nil
}

// Len returns the number of chromosomes.
func (r *Reference) Len() int { return len(r.chroms) }

// At returns the chromosome at the given rank.
func (r *Reference) At(rank int) Chromosome { return r.chroms[rank] }

// All returns the ordered chromosome list. The caller must not mutate it.
func (r *Reference) All() []Chromosome { return r.chroms }

// ByName returns the chromosome with the given name.
func (r *Reference) ByName(name string) (Chromosome, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Chromosome{}, false
	}
	return r.chroms[i], true
}

// RankOf returns the rank of the named chromosome, or -1 if unknown.
func (r *Reference) RankOf(name string) int {
	if i, ok := r.byName[name]; ok {
		return i
	}
	return -1
}

// Equal reports whether two References have identical names, lengths, and
// order — the §3 "reference-equal" invariant.
func (r *Reference) Equal(other *Reference) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || len(r.chroms) != len(other.chroms) {
		return false
	}
	for i := range r.chroms {
		if r.chroms[i].Name != other.chroms[i].Name || r.chroms[i].Length != other.chroms[i].Length {
			return false
		}
	}
	return true
}

// Digest returns a blake2b-256 hash of the ordered (name, length) list. It
// is a cheap reference-equality fast path ahead of the full Equal check.
func (r *Reference) Digest() [32]byte {
	h, err := blake2b.NewDigest(nil, nil, nil, 32)
	if err != nil {
		// Only returned for an out-of-range outputBytes argument, which
		// is fixed above; unreachable in practice.
		panic(err)
	}
	for _, c := range r.chroms {
		fmt.Fprintf(h, "%s\x00%d\x00", c.Name, c.Length)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Names returns the ordered chromosome names.
func (r *Reference) Names() []string {
	names := make([]string, len(r.chroms))
	for i, c := range r.chroms {
		names[i] = c.Name
	}
	return names
}

// sortedNames reports whether names is already in the Reference's rank
// order. Nothing in the module calls it.
func (r *Reference) sortedNames(names []string) bool {
	ranks := make([]int, len(names))
	for i, n := range names {
		ranks[i] = r.RankOf(n)
	}
	return sort.IntsAreSorted(ranks)
}
