package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hic"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// iteratorSource adapts a pixel.Iterator to the mergeSource interface, so
// several chromosome-pair queries (as the Hic back-end naturally
// produces) can be interleaved into one globally bin1/bin2-sorted stream
// by the same N-way merger the ingest pipeline uses for spill files.
type iteratorSource struct {
	it pixel.Iterator
}

func (s *iteratorSource) next() (pixel.Pixel, bool, error) {
	if !s.it.Next() {
		return pixel.Pixel{}, false, s.it.Error()
	}
	return s.it.Pixel(), true, nil
}

func (s *iteratorSource) close() error { return s.it.Close() }

// Convert reads every requested resolution (all available resolutions if
// resolutions is empty) from inPath and writes an equivalent container to
// outPath, translating between the Cooler family and .hic as needed. It
// never interprets pixel values — only the storage layout changes.
func Convert(inPath, outPath string, resolutions []int64) error {
	if hic.Sniff(inPath) {
		if isHicPath(outPath) {
			return convertHicToHic(inPath, outPath, resolutions)
		}
		return convertHicToCooler(inPath, outPath, resolutions)
	}
	if isHicPath(outPath) {
		return convertCoolerToHic(inPath, outPath, resolutions)
	}
	return convertCoolerToCooler(inPath, outPath, resolutions)
}

func isHicPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hic")
}

func convertCoolerToHic(inPath, outPath string, resolutions []int64) error {
	src, err := cooler.Open(inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	resolutions = chooseResolutions(resolutions, src.Resolutions())
	if len(resolutions) == 0 {
		return fmt.Errorf("%w: source container has no resolution", hictkerr.ErrUnknownResolution)
	}
	ref, err := src.Reference(resolutions[0], "")
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	w, err := hic.NewWriter(out, ref, resolutions, 9, "", hic.CodecLZ4)
	if err != nil {
		return err
	}
	for _, res := range resolutions {
		bins, err := src.Bins(res, "")
		if err != nil {
			return err
		}
		for rank := 0; rank < ref.Len(); rank++ {
			for rank2 := rank; rank2 < ref.Len(); rank2++ {
				it, err := chromPairIterator(src, res, bins, rank, rank2)
				if err != nil {
					return err
				}
				if err := w.WriteMatrix(int32(rank), int32(rank2), res, bins, it, hic.DefaultBlockBinCount); err != nil {
					return err
				}
			}
		}
	}
	return w.Finalize()
}

// chromPairIterator selects the (bin1,bin2) sub-rectangle for one
// chromosome pair out of a Cooler container's globally sorted pixel
// table via its row-scan Reader.
func chromPairIterator(src *cooler.File, resolution int64, bins *genome.BinTable, rank1, rank2 int) (pixel.Iterator, error) {
	lo1, hi1 := bins.ChromRange(rank1)
	lo2, hi2 := bins.ChromRange(rank2)
	reader, err := cooler.NewReader(src, resolution, "")
	if err != nil {
		return nil, err
	}
	it, err := reader.Select(lo1, hi1)
	if err != nil {
		return nil, err
	}
	return &rangeFilterIterator{it: it, lo2: lo2, hi2: hi2}, nil
}

// rangeFilterIterator narrows an already bin1-ranged iterator to a bin2
// sub-range, skipping pixels outside [lo2,hi2).
type rangeFilterIterator struct {
	it       pixel.Iterator
	lo2, hi2 int64
	cur      pixel.Pixel
}

func (r *rangeFilterIterator) Next() bool {
	for r.it.Next() {
		p := r.it.Pixel()
		if p.Bin2 >= r.lo2 && p.Bin2 < r.hi2 {
			r.cur = p
			return true
		}
	}
	return false
}
func (r *rangeFilterIterator) Pixel() pixel.Pixel { return r.cur }
func (r *rangeFilterIterator) Error() error       { return r.it.Error() }
func (r *rangeFilterIterator) Close() error       { return r.it.Close() }

func convertHicToCooler(inPath, outPath string, resolutions []int64) error {
	src, err := hic.Open(inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	h := src.Header()
	resolutions = chooseResolutions(resolutions, h.BPResolutions)
	if len(resolutions) == 0 {
		return fmt.Errorf("%w: source container has no BP resolution", hictkerr.ErrUnknownResolution)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	if len(resolutions) == 1 {
		bins, err := src.Bins(resolutions[0])
		if err != nil {
			return err
		}
		w, err := cooler.NewWriter(out, h.Reference, bins, "float64", cooler.DefaultCompression)
		if err != nil {
			return err
		}
		it, err := hicGenomeWideIterator(src, resolutions[0], bins)
		if err != nil {
			return err
		}
		if err := w.WriteFrom(it); err != nil {
			return err
		}
		return w.Finalize(nil)
	}

	mw, err := cooler.NewMultiWriter(out)
	if err != nil {
		return err
	}
	for _, res := range resolutions {
		bins, err := src.Bins(res)
		if err != nil {
			return err
		}
		w, err := mw.Resolution(res, h.Reference, bins, "float64", cooler.DefaultCompression)
		if err != nil {
			return err
		}
		it, err := hicGenomeWideIterator(src, res, bins)
		if err != nil {
			return err
		}
		if err := w.WriteFrom(it); err != nil {
			return err
		}
		if err := w.Finalize(nil); err != nil {
			return err
		}
	}
	return mw.Finalize()
}

// hicGenomeWideIterator merges every chromosome pair's block-indexed
// query into one globally (bin1,bin2)-sorted stream, since .hic stores
// each chromosome pair as an independent matrix record rather than one
// global sorted pixel table.
func hicGenomeWideIterator(src *hic.File, resolution int64, bins *genome.BinTable) (pixel.Iterator, error) {
	ref := bins.Reference()
	var sources []mergeSource
	for rank1 := 0; rank1 < ref.Len(); rank1++ {
		lo1, hi1 := bins.ChromRange(rank1)
		for rank2 := rank1; rank2 < ref.Len(); rank2++ {
			lo2, hi2 := bins.ChromRange(rank2)
			it, err := src.Query(int32(rank1), int32(rank2), resolution, lo1, hi1, lo2, hi2, bins)
			if err != nil {
				return nil, err
			}
			sources = append(sources, &iteratorSource{it: it})
		}
	}
	return newMerger(sources)
}

func convertHicToHic(inPath, outPath string, resolutions []int64) error {
	src, err := hic.Open(inPath)
	if err != nil {
		return err
	}
	defer src.Close()
	h := src.Header()
	resolutions = chooseResolutions(resolutions, h.BPResolutions)

	out, err := os.Create(outPath)
	if err != nil {
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	codec := hic.CodecLZ4
	if h.Version == 8 {
		codec = hic.CodecDeflate
	}
	w, err := hic.NewWriter(out, h.Reference, resolutions, h.Version, h.GenomeID, codec)
	if err != nil {
		return err
	}
	for _, res := range resolutions {
		bins, err := src.Bins(res)
		if err != nil {
			return err
		}
		ref := bins.Reference()
		for rank1 := 0; rank1 < ref.Len(); rank1++ {
			lo1, hi1 := bins.ChromRange(rank1)
			for rank2 := rank1; rank2 < ref.Len(); rank2++ {
				lo2, hi2 := bins.ChromRange(rank2)
				it, err := src.Query(int32(rank1), int32(rank2), res, lo1, hi1, lo2, hi2, bins)
				if err != nil {
					return err
				}
				if err := w.WriteMatrix(int32(rank1), int32(rank2), res, bins, it, hic.DefaultBlockBinCount); err != nil {
					return err
				}
			}
		}
	}
	return w.Finalize()
}

func convertCoolerToCooler(inPath, outPath string, resolutions []int64) error {
	src, err := cooler.Open(inPath)
	if err != nil {
		return err
	}
	defer src.Close()
	resolutions = chooseResolutions(resolutions, src.Resolutions())
	if len(resolutions) == 0 {
		resolutions = []int64{0}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	if len(resolutions) == 1 {
		return copyCoolerResolution(src, out, resolutions[0], "", nil)
	}
	mw, err := cooler.NewMultiWriter(out)
	if err != nil {
		return err
	}
	for _, res := range resolutions {
		if err := copyCoolerResolutionInto(src, mw, res, "", nil); err != nil {
			return err
		}
	}
	return mw.Finalize()
}

func chooseResolutions(requested, available []int64) []int64 {
	if len(requested) == 0 {
		return available
	}
	want := map[int64]bool{}
	for _, r := range requested {
		want[r] = true
	}
	var out []int64
	for _, r := range available {
		if want[r] {
			out = append(out, r)
		}
	}
	return out
}
