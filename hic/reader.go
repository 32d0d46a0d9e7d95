package hic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// File is an open, read-only .hic container.
type File struct {
	f      *os.File
	header *Header
	index  map[string]MasterIndexEntry
	bins   map[int64]*genome.BinTable // memoized per resolution
}

// Sniff reports whether path looks like a .hic file by checking its
// magic bytes, without attempting a full Open. Used to tell a .hic
// container apart from a Cooler-family one before picking a back-end.
func Sniff(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var m [4]byte
	if _, err := io.ReadFull(f, m[:]); err != nil {
		return false
	}
	return m == magic
}

// Open opens an existing .hic file and reads its header and master index.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hictkerr.Wrap("open", err)
	}
	br := bufio.NewReader(f)
	h, err := readHeader(br)
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(h.MasterIndexPos, io.SeekStart); err != nil {
		f.Close()
		return nil, hictkerr.Wrap("seek master index", err)
	}
	mi, err := readMasterIndex(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	idx := make(map[string]MasterIndexEntry, len(mi))
	for _, e := range mi {
		idx[e.Key] = e
	}
	return &File{f: f, header: h, index: idx, bins: map[int64]*genome.BinTable{}}, nil
}

// Header returns the file's parsed preamble.
func (hf *File) Header() *Header { return hf.header }

// Close releases the underlying file handle.
func (hf *File) Close() error {
	return hictkerr.Wrap("close", hf.f.Close())
}

func matrixKey(c1, c2 int32) string {
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	return fmt.Sprintf("matrix/%d/%d", c1, c2)
}

// MatrixRecord returns the resolution/block index for the given chromosome
// pair (order-independent).
func (hf *File) MatrixRecord(chrom1, chrom2 int32) (*MatrixRecord, error) {
	e, ok := hf.index[matrixKey(chrom1, chrom2)]
	if !ok {
		return nil, fmt.Errorf("%w: no matrix record for chromosomes %d,%d", hictkerr.ErrUnknownChromosome, chrom1, chrom2)
	}
	sec := io.NewSectionReader(hf.f, e.Offset, int64(e.Size))
	return readMatrixRecord(bufio.NewReader(sec))
}

// Bins returns the BinTable for a base-pair resolution.
func (hf *File) Bins(resolution int64) (*genome.BinTable, error) {
	if t, ok := hf.bins[resolution]; ok {
		return t, nil
	}
	t, err := genome.BuildFixed(hf.header.Reference, resolution)
	if err != nil {
		return nil, err
	}
	hf.bins[resolution] = t
	return t, nil
}

// resolutionEntry finds the BP resolution entry within a matrix record.
func resolutionEntry(m *MatrixRecord, resolution int64) (*ResolutionEntry, error) {
	for i := range m.Resolutions {
		if m.Resolutions[i].Unit == UnitBP && m.Resolutions[i].Resolution == resolution {
			return &m.Resolutions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: resolution %d not present for this chromosome pair", hictkerr.ErrUnknownResolution, resolution)
}

// Query returns every pixel in the half-open rectangle of global bin ids
// [bin1Lo,bin1Hi) x [bin2Lo,bin2Hi) for the given chromosome pair and
// resolution, with stored chromosome-local bin ids translated to global
// ids via bins, per §4.4's
// block-lookup algorithm: compute block row/col from the bin range,
// enumerate the rectangle (plus the diagonal mirror for intra-chromosomal
// matrices), seek-read-decompress-decode each present block.
func (hf *File) Query(chrom1, chrom2 int32, resolution, bin1Lo, bin1Hi, bin2Lo, bin2Hi int64, bins *genome.BinTable) (pixel.Iterator, error) {
	swap := chrom1 > chrom2
	if swap {
		chrom1, chrom2 = chrom2, chrom1
		bin1Lo, bin2Lo = bin2Lo, bin1Lo
		bin1Hi, bin2Hi = bin2Hi, bin1Hi
	}
	m, err := hf.MatrixRecord(chrom1, chrom2)
	if err != nil {
		return nil, err
	}
	re, err := resolutionEntry(m, resolution)
	if err != nil {
		return nil, err
	}
	intra := chrom1 == chrom2

	// Block ids are laid out over chromosome-local bin ids (see
	// Writer.WriteMatrix), so shift the global range before picking blocks.
	lo1, _ := bins.ChromRange(int(chrom1))
	lo2, _ := bins.ChromRange(int(chrom2))
	rowLo := (bin1Lo - lo1) / int64(re.BlockBinCount)
	rowHi := (bin1Hi - 1 - lo1) / int64(re.BlockBinCount)
	colLo := (bin2Lo - lo2) / int64(re.BlockBinCount)
	colHi := (bin2Hi - 1 - lo2) / int64(re.BlockBinCount)

	wanted := map[int32]bool{}
	for row := rowLo; row <= rowHi; row++ {
		for col := colLo; col <= colHi; col++ {
			wanted[int32(row*int64(re.BlockColumnCount)+col)] = true
			if intra {
				wanted[int32(col*int64(re.BlockColumnCount)+row)] = true
			}
		}
	}

	byID := make(map[int32]BlockEntry, len(re.Blocks))
	for _, b := range re.Blocks {
		byID[b.ID] = b
	}

	var out []pixel.Pixel
	seen := map[[2]int64]bool{}
	for id := range wanted {
		be, ok := byID[id]
		if !ok {
			continue
		}
		raw := make([]byte, be.Size)
		if _, err := hf.f.ReadAt(raw, be.Offset); err != nil {
			return nil, hictkerr.Wrap("read block", err)
		}
		body, err := decompressBlockBody(raw)
		if err != nil {
			return nil, err
		}
		records, err := decodeBlockPayload(body)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			b1 := lo1 + int64(rec.Bin1)
			b2 := lo2 + int64(rec.Bin2)
			if swap {
				b1, b2 = b2, b1
			}
			if b1 > b2 {
				b1, b2 = b2, b1
			}
			if b1 < bin1Lo || b1 >= bin1Hi || b2 < bin2Lo || b2 >= bin2Hi {
				// Intra-chromosomal mirrored blocks may contribute
				// records outside the requested rectangle; skip them.
				if !(intra && b2 >= bin1Lo && b2 < bin1Hi && b1 >= bin2Lo && b1 < bin2Hi) {
					continue
				}
				b1, b2 = b2, b1
			}
			key := [2]int64{b1, b2}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, pixel.Pixel{Bin1: b1, Bin2: b2, Count: float64(rec.Count)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bin1 != out[j].Bin1 {
			return out[i].Bin1 < out[j].Bin1
		}
		return out[i].Bin2 < out[j].Bin2
	})
	return pixel.FromSlice(out), nil
}

// NormVector reads a normalization vector by key.
func (hf *File) NormVector(key NormVectorKey) ([]float64, error) {
	e, ok := hf.index[key.masterKey()]
	if !ok {
		return nil, fmt.Errorf("%w: normalization vector %q not present", hictkerr.ErrUnknownNormalization, key.masterKey())
	}
	return readNormVector(hf.f, e.Offset, e.Size)
}
