package cooler

import (
	"fmt"
	"io"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// pixelChunkLen is the number of pixel rows per on-disk chunk.
const pixelChunkLen = 1 << 16

// Writer builds a new single-resolution Cooler container: it appends
// chroms/, bins/, and pixels/ datasets chunk-by-chunk as pixels arrive in
// sorted order, and streams the bin1_offset index alongside the pixel
// table rather than building it in a second pass, matching §4.3's
// "pixels are appended in sorted order... with a streamed offset index"
// writer contract.
type Writer struct {
	bw          *builder
	bins        *genome.BinTable
	group       Group
	ownsBuilder bool

	countIsFloat bool
	pixBin1      *datasetEntry
	pixBin2      *datasetEntry
	pixCount     *datasetEntry

	pendingBin1  []int64
	pendingBin2  []int64
	pendingCount []float64

	bin1Offset []int64
	curBin1    int64
	nWritten   int64
	lastBin1   int64
	lastBin2   int64
	started    bool
	finalized  bool
}

// NewWriter begins a new container, writing its chromosome and bin tables
// immediately. countDtype is "int32" (raw contact counts) or "float64"
// (balanced or coarsened counts).
func NewWriter(w io.Writer, ref *genome.Reference, bins *genome.BinTable, countDtype string, comp Compression) (*Writer, error) {
	bw, err := newBuilder(w)
	if err != nil {
		return nil, err
	}
	wr, err := newGroupWriter(bw, "", ref, bins, countDtype, comp)
	if err != nil {
		return nil, err
	}
	wr.ownsBuilder = true
	return wr, nil
}

// newGroupWriter begins a resolution/cell's datasets under group within an
// already-open builder, without taking ownership of the builder's
// finalize step — used by MultiWriter to assemble an .mcool/.scool
// container with several resolutions/cells sharing one table of contents.
func newGroupWriter(bw *builder, group Group, ref *genome.Reference, bins *genome.BinTable, countDtype string, comp Compression) (*Writer, error) {
	if !bins.Reference().Equal(ref) {
		return nil, fmt.Errorf("%w: bin table does not match reference", hictkerr.ErrBadBinTable)
	}

	lengths := make([]int64, ref.Len())
	for i, c := range ref.All() {
		lengths[i] = c.Length
	}
	if err := bw.appendStringColumn(group.dataset(dsChromName), ref.Names(), comp); err != nil {
		return nil, err
	}
	e := bw.newDataset(group.dataset(dsChromLength), dtypeInt64, int64(len(lengths)), comp)
	if err := bw.appendChunk(e, encodeInt64s(lengths), int64(len(lengths))); err != nil {
		return nil, err
	}

	if err := writeBinTable(bw, group, bins, comp); err != nil {
		return nil, err
	}

	var countDt dtype
	switch countDtype {
	case countDtypeInt32, "":
		countDt = dtypeInt32
		countDtype = countDtypeInt32
	case countDtypeFloat64:
		countDt = dtypeFloat64
	default:
		return nil, fmt.Errorf("%w: unknown count dtype %q", hictkerr.ErrBadFileFormat, countDtype)
	}

	pixBin1 := bw.newDataset(group.dataset(dsPixelBin1), dtypeInt64, pixelChunkLen, comp)
	pixBin2 := bw.newDataset(group.dataset(dsPixelBin2), dtypeInt64, pixelChunkLen, comp)
	pixCount := bw.newDataset(group.dataset(dsPixelCount), countDt, pixelChunkLen, comp)
	pixCount.Attrs[attrCountDtype] = countDtype

	offs := make([]int64, bins.NumBins()+1)

	return &Writer{
		bw:           bw,
		bins:         bins,
		group:        group,
		countIsFloat: countDt == dtypeFloat64,
		pixBin1:      pixBin1,
		pixBin2:      pixBin2,
		pixCount:     pixCount,
		bin1Offset:   offs,
	}, nil
}

func writeBinTable(bw *builder, group Group, bins *genome.BinTable, comp Compression) error {
	n := bins.NumBins()
	chroms := make([]int32, n)
	starts := make([]int64, n)
	ends := make([]int64, n)
	for i := int64(0); i < n; i++ {
		b, err := bins.CoordsOf(i)
		if err != nil {
			return err
		}
		chroms[i] = int32(b.Chrom)
		starts[i] = b.Start
		ends[i] = b.End
	}
	ec := bw.newDataset(group.dataset(dsBinChrom), dtypeInt32, n, comp)
	if bins.BinSize() > 0 {
		ec.Attrs[attrBinSize] = fmt.Sprintf("%d", bins.BinSize())
	}
	if err := bw.appendChunk(ec, encodeInt32s(chroms), n); err != nil {
		return err
	}
	es := bw.newDataset(group.dataset(dsBinStart), dtypeInt64, n, comp)
	if err := bw.appendChunk(es, encodeInt64s(starts), n); err != nil {
		return err
	}
	ee := bw.newDataset(group.dataset(dsBinEnd), dtypeInt64, n, comp)
	return bw.appendChunk(ee, encodeInt64s(ends), n)
}

// WritePixel appends one pixel. Pixels must arrive in strictly increasing
// (bin1, bin2) order; violating this returns ErrBadRange, matching the
// back-end's sorted-append invariant.
func (w *Writer) WritePixel(p pixel.Pixel) error {
	if w.finalized {
		return fmt.Errorf("%w: write after finalize", hictkerr.ErrBadRange)
	}
	if w.started && (p.Bin1 < w.lastBin1 || (p.Bin1 == w.lastBin1 && p.Bin2 <= w.lastBin2)) {
		return fmt.Errorf("%w: pixel (%d,%d) out of order after (%d,%d)", hictkerr.ErrBadRange, p.Bin1, p.Bin2, w.lastBin1, w.lastBin2)
	}
	for w.curBin1 < p.Bin1 {
		w.curBin1++
		w.bin1Offset[w.curBin1] = w.nWritten
	}
	w.pendingBin1 = append(w.pendingBin1, p.Bin1)
	w.pendingBin2 = append(w.pendingBin2, p.Bin2)
	w.pendingCount = append(w.pendingCount, p.Count)
	w.lastBin1, w.lastBin2 = p.Bin1, p.Bin2
	w.started = true
	w.nWritten++

	if int64(len(w.pendingBin1)) >= pixelChunkLen {
		return w.flush()
	}
	return nil
}

// WriteFrom drains it, writing every pixel it produces.
func (w *Writer) WriteFrom(it pixel.Iterator) error {
	for it.Next() {
		if err := w.WritePixel(it.Pixel()); err != nil {
			it.Close()
			return err
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	return it.Close()
}

func (w *Writer) flush() error {
	n := int64(len(w.pendingBin1))
	if n == 0 {
		return nil
	}
	if err := w.bw.appendChunk(w.pixBin1, encodeInt64s(w.pendingBin1), n); err != nil {
		return err
	}
	if err := w.bw.appendChunk(w.pixBin2, encodeInt64s(w.pendingBin2), n); err != nil {
		return err
	}
	var err error
	if w.countIsFloat {
		err = w.bw.appendChunk(w.pixCount, encodeFloat64s(w.pendingCount), n)
	} else {
		ints := make([]int32, n)
		for i, c := range w.pendingCount {
			ints[i] = int32(c)
		}
		err = w.bw.appendChunk(w.pixCount, encodeInt32s(ints), n)
	}
	if err != nil {
		return err
	}
	w.pendingBin1 = w.pendingBin1[:0]
	w.pendingBin2 = w.pendingBin2[:0]
	w.pendingCount = w.pendingCount[:0]
	return nil
}

// Finalize flushes any buffered pixels, completes the bin1_offset and
// chrom_offset indexes, writes the weight columns, and writes the table
// of contents. The Writer must not be used afterward.
func (w *Writer) Finalize(weights map[string]struct {
	Values     []float64
	Convention string
}) error {
	if w.finalized {
		return nil
	}
	if err := w.flush(); err != nil {
		return err
	}
	for w.curBin1 < int64(len(w.bin1Offset))-1 {
		w.curBin1++
		w.bin1Offset[w.curBin1] = w.nWritten
	}
	eIdx := w.bw.newDataset(w.group.dataset(dsIndexBin1Offset), dtypeInt64, int64(len(w.bin1Offset)), DefaultCompression)
	if err := w.bw.appendChunk(eIdx, encodeInt64s(w.bin1Offset), int64(len(w.bin1Offset))); err != nil {
		return err
	}

	chromOffsets := make([]int64, w.bins.Reference().Len()+1)
	for i := 0; i < w.bins.Reference().Len(); i++ {
		lo, _ := w.bins.ChromRange(i)
		chromOffsets[i] = lo
	}
	chromOffsets[len(chromOffsets)-1] = w.bins.NumBins()
	eChrom := w.bw.newDataset(w.group.dataset(dsIndexChromOffset), dtypeInt64, int64(len(chromOffsets)), DefaultCompression)
	if err := w.bw.appendChunk(eChrom, encodeInt64s(chromOffsets), int64(len(chromOffsets))); err != nil {
		return err
	}

	for name, wt := range weights {
		if err := w.bw.writeWeights(w.group.dataset(weightDataset(name)), wt.Values, wt.Convention, DefaultCompression); err != nil {
			return err
		}
	}

	w.finalized = true
	if !w.ownsBuilder {
		return nil
	}
	return w.bw.finalize()
}
