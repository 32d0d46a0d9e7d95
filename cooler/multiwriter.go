package cooler

import (
	"fmt"
	"io"

	"github.com/hictk-go/hictk/genome"
)

// MultiWriter assembles an .mcool (several resolutions) or .scool (several
// cells) container: each resolution/cell gets its own Writer scoped under
// a "resolutions/<R>" or "cells/<name>" group, but all of them share one
// underlying builder and are flushed to one table of contents by a single
// Finalize call, matching the real format's "one file, many groups"
// layout (§4.3).
type MultiWriter struct {
	bw        *builder
	finalized bool
}

// NewMultiWriter begins a new multi-group container.
func NewMultiWriter(w io.Writer) (*MultiWriter, error) {
	bw, err := newBuilder(w)
	if err != nil {
		return nil, err
	}
	return &MultiWriter{bw: bw}, nil
}

// Resolution begins a new "resolutions/<R>" group, for building an .mcool.
func (m *MultiWriter) Resolution(resolution int64, ref *genome.Reference, bins *genome.BinTable, countDtype string, comp Compression) (*Writer, error) {
	return newGroupWriter(m.bw, Group(fmt.Sprintf("resolutions/%d", resolution)), ref, bins, countDtype, comp)
}

// Cell begins a new "cells/<name>" group, for building an .scool.
func (m *MultiWriter) Cell(name string, ref *genome.Reference, bins *genome.BinTable, countDtype string, comp Compression) (*Writer, error) {
	return newGroupWriter(m.bw, Group("cells/"+name), ref, bins, countDtype, comp)
}

// Finalize writes the shared table of contents. Every Writer opened via
// Resolution/Cell must already have had its own Finalize called.
func (m *MultiWriter) Finalize() error {
	if m.finalized {
		return nil
	}
	m.finalized = true
	return m.bw.finalize()
}
