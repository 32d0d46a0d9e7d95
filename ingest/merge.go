package ingest

import (
	"container/heap"
	"sort"

	"github.com/hictk-go/hictk/pixel"
)

// sortAndCoalesce sorts pixels by (bin1,bin2) in place and sums the
// counts of duplicate keys, per §4.9 step 2.
func sortAndCoalesce(pixels []pixel.Pixel) []pixel.Pixel {
	sort.Slice(pixels, func(i, j int) bool {
		if pixels[i].Bin1 != pixels[j].Bin1 {
			return pixels[i].Bin1 < pixels[j].Bin1
		}
		return pixels[i].Bin2 < pixels[j].Bin2
	})
	if len(pixels) == 0 {
		return pixels
	}
	out := pixels[:1]
	for _, p := range pixels[1:] {
		last := &out[len(out)-1]
		if last.Bin1 == p.Bin1 && last.Bin2 == p.Bin2 {
			last.Count += p.Count
			continue
		}
		out = append(out, p)
	}
	return out
}

// mergeSource is one input to the N-way merge: either a spill file or the
// final in-memory chunk.
type mergeSource interface {
	next() (pixel.Pixel, bool, error)
	close() error
}

type sliceSource struct {
	pixels []pixel.Pixel
	pos    int
}

func (s *sliceSource) next() (pixel.Pixel, bool, error) {
	if s.pos >= len(s.pixels) {
		return pixel.Pixel{}, false, nil
	}
	p := s.pixels[s.pos]
	s.pos++
	return p, true, nil
}

func (s *sliceSource) close() error { return nil }

// mergeHeapItem is one source's current head pixel, ordered by
// (bin1,bin2) for the min-heap merge.
type mergeHeapItem struct {
	p      pixel.Pixel
	source mergeSource
}

type mergeHeap []mergeHeapItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].p.Bin1 != h[j].p.Bin1 {
		return h[i].p.Bin1 < h[j].p.Bin1
	}
	return h[i].p.Bin2 < h[j].p.Bin2
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(mergeHeapItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// merger is a container/heap-based N-way streaming merge of already
// sorted sources, coalescing equal (bin1,bin2) keys across sources, per
// §4.9 step 4. Grounded on bam.Merger's pull-one-record-at-a-time shape,
// generalized from a sort-order comparator to a fixed (bin1,bin2) key.
type merger struct {
	h       mergeHeap
	sources []mergeSource
	cur     pixel.Pixel
	err     error
	started bool
}

func newMerger(sources []mergeSource) (*merger, error) {
	m := &merger{sources: sources}
	for _, s := range sources {
		p, ok, err := s.next()
		if err != nil {
			return nil, err
		}
		if ok {
			m.h = append(m.h, mergeHeapItem{p: p, source: s})
		}
	}
	heap.Init(&m.h)
	return m, nil
}

func (m *merger) Next() bool {
	if m.err != nil || len(m.h) == 0 {
		return false
	}
	item := heap.Pop(&m.h).(mergeHeapItem)
	m.cur = item.p
	m.advance(item.source)

	for len(m.h) > 0 && m.h[0].p.Bin1 == m.cur.Bin1 && m.h[0].p.Bin2 == m.cur.Bin2 {
		dup := heap.Pop(&m.h).(mergeHeapItem)
		m.cur.Count += dup.p.Count
		m.advance(dup.source)
	}
	return true
}

func (m *merger) advance(s mergeSource) {
	p, ok, err := s.next()
	if err != nil {
		m.err = err
		return
	}
	if ok {
		heap.Push(&m.h, mergeHeapItem{p: p, source: s})
	}
}

func (m *merger) Pixel() pixel.Pixel { return m.cur }

func (m *merger) Error() error { return m.err }

func (m *merger) Close() error {
	var first error
	for _, s := range m.sources {
		if err := s.close(); err != nil && first == nil {
			first = err
		}
	}
	if m.err != nil {
		return m.err
	}
	return first
}
