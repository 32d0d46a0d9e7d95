package cooler

import (
	"fmt"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// rowScanBatch is the number of pixel-table rows fetched per underlying
// chunk read while streaming a row scan.
const rowScanBatch = 1 << 16

// Reader is a row-scan cursor over one resolution/cell's pixel table,
// built on its bin1_offset index (§4.3's row-scan contract: the pixel
// table is coordinate-sorted by (bin1_id, bin2_id), and bin1_offset[i]
// gives the first pixel-table row whose bin1_id is >= i).
type Reader struct {
	f          *File
	g          Group
	bins       *genome.BinTable
	bin1Offset []int64
}

// NewReader opens a row-scan cursor for the given resolution/cell.
func NewReader(f *File, resolution int64, cell string) (*Reader, error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return nil, err
	}
	bins, err := f.Bins(resolution, cell)
	if err != nil {
		return nil, err
	}
	n, ok := f.c.Length(g.dataset(dsIndexBin1Offset))
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", hictkerr.ErrBadFileFormat, g.dataset(dsIndexBin1Offset))
	}
	offs, err := f.c.readInt64Range(g.dataset(dsIndexBin1Offset), 0, n)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, g: g, bins: bins, bin1Offset: offs}, nil
}

// Bins returns the BinTable this Reader's pixel table is addressed with.
func (r *Reader) Bins() *genome.BinTable { return r.bins }

// Select returns a streaming Iterator over every pixel whose bin1_id lies
// in [bin1Lo, bin1Hi). Callers narrow further (cis/trans/2-D range) by
// wrapping the result in a pixel.Selector.
func (r *Reader) Select(bin1Lo, bin1Hi int64) (pixel.Iterator, error) {
	if bin1Lo < 0 || bin1Hi > int64(len(r.bin1Offset)-1) || bin1Lo > bin1Hi {
		return nil, fmt.Errorf("%w: bin range [%d,%d) out of bounds", hictkerr.ErrBadRange, bin1Lo, bin1Hi)
	}
	pixLo, pixHi := r.bin1Offset[bin1Lo], r.bin1Offset[bin1Hi]
	return newStreamIterator(r.f, r.g, pixLo, pixHi), nil
}

// All returns a streaming Iterator over the entire pixel table.
func (r *Reader) All() (pixel.Iterator, error) {
	return r.Select(0, int64(len(r.bin1Offset)-1))
}

// streamIterator reads the pixel table in fixed-size batches, never
// materializing more than one batch at a time, so a genome-wide scan does
// not require loading the whole pixel table into memory.
type streamIterator struct {
	f   *File
	g   Group
	lo  int64 // next unread absolute pixel-table row
	hi  int64 // exclusive end of the requested range

	countIsFloat bool

	batch    []pixel.Pixel
	batchPos int
	cur      pixel.Pixel
	err      error
}

func newStreamIterator(f *File, g Group, lo, hi int64) pixel.Iterator {
	floatCount := false
	if dt, ok := f.c.DtypeOf(g.dataset(dsPixelCount)); ok {
		floatCount = dt == dtypeFloat64
	}
	return &streamIterator{f: f, g: g, lo: lo, hi: hi, countIsFloat: floatCount}
}

func (s *streamIterator) Next() bool {
	if s.err != nil {
		return false
	}
	for s.batchPos >= len(s.batch) {
		if s.lo >= s.hi {
			return false
		}
		end := s.lo + rowScanBatch
		if end > s.hi {
			end = s.hi
		}
		if err := s.loadBatch(s.lo, end); err != nil {
			s.err = err
			return false
		}
		s.lo = end
		s.batchPos = 0
	}
	s.cur = s.batch[s.batchPos]
	s.batchPos++
	return true
}

func (s *streamIterator) loadBatch(lo, hi int64) error {
	bin1, err := s.f.c.readInt64Range(s.g.dataset(dsPixelBin1), lo, hi)
	if err != nil {
		return err
	}
	bin2, err := s.f.c.readInt64Range(s.g.dataset(dsPixelBin2), lo, hi)
	if err != nil {
		return err
	}
	var counts []float64
	if s.countIsFloat {
		counts, err = s.f.c.readFloat64Range(s.g.dataset(dsPixelCount), lo, hi)
	} else {
		var ints []int32
		ints, err = s.f.c.readInt32Range(s.g.dataset(dsPixelCount), lo, hi)
		if err == nil {
			counts = make([]float64, len(ints))
			for i, v := range ints {
				counts[i] = float64(v)
			}
		}
	}
	if err != nil {
		return err
	}
	s.batch = make([]pixel.Pixel, len(bin1))
	for i := range s.batch {
		s.batch[i] = pixel.Pixel{Bin1: bin1[i], Bin2: bin2[i], Count: counts[i]}
	}
	return nil
}

func (s *streamIterator) Pixel() pixel.Pixel { return s.cur }

func (s *streamIterator) Error() error { return s.err }

func (s *streamIterator) Close() error { return s.err }
