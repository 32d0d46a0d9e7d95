package hic

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// DefaultBlockBinCount is the number of bins per block axis used when the
// caller does not request a specific block granularity.
const DefaultBlockBinCount = 1000

// Writer builds a new .hic file: it accumulates one chromosome pair's
// blocks at a time (bounded by that pair's pixel count, same as the
// reference implementation's per-pair block buffering), then finalizes
// the matrix record, master index, and normalization vectors, per §4.4's
// on-disk structure and §4.9's "finalize: build block trees + master
// index" writer contract.
type Writer struct {
	w      io.WriteSeeker
	header *Header
	codec  blockCodec

	offset int64

	matrixBlobs []matrixBlob
	normBlobs   []normBlob
}

type matrixBlob struct {
	chrom1, chrom2 int32
	raw            []byte
}

type normBlob struct {
	key  NormVectorKey
	blob []byte
}

// NewWriter writes the file header (with a placeholder master index
// position, patched in Finalize) and returns a Writer ready to accept
// matrices.
func NewWriter(w io.WriteSeeker, ref *genome.Reference, bpResolutions []int64, version int32, genomeID string, codec blockCodec) (*Writer, error) {
	if version != 8 && version != 9 {
		return nil, fmt.Errorf("%w: unsupported .hic version %d", hictkerr.ErrBadFileFormat, version)
	}
	h := &Header{
		Version:       version,
		GenomeID:      genomeID,
		Attributes:    map[string]string{},
		Reference:     ref,
		BPResolutions: bpResolutions,
	}
	if err := writeHeader(w, h); err != nil {
		return nil, err
	}
	off, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, hictkerr.Wrap("tell after header", err)
	}
	return &Writer{w: w, header: h, codec: codec, offset: off}, nil
}

// WriteMatrix writes every pixel from it (chromosome-local bin ids, sorted
// (bin1,bin2)) as one chromosome pair's matrix record at the given
// resolution. blockBinCount controls block granularity; the block column
// count is derived from the chromosome-pair's bin extents.
func (w *Writer) WriteMatrix(chrom1, chrom2 int32, resolution int64, bins *genome.BinTable, it pixel.Iterator, blockBinCount int32) error {
	if blockBinCount <= 0 {
		blockBinCount = DefaultBlockBinCount
	}
	lo1, hi1 := bins.ChromRange(int(chrom1))
	lo2, hi2 := bins.ChromRange(int(chrom2))
	nBinsCol := (hi2 - lo2 + int64(blockBinCount) - 1) / int64(blockBinCount)
	blockColumnCount := int32(nBinsCol)
	if blockColumnCount == 0 {
		blockColumnCount = 1
	}

	byBlock := map[int32][]blockRecord{}
	for it.Next() {
		p := it.Pixel()
		local1 := int32(p.Bin1 - lo1)
		local2 := int32(p.Bin2 - lo2)
		if p.Bin1 < lo1 || p.Bin1 >= hi1 || p.Bin2 < lo2 || p.Bin2 >= hi2 {
			return fmt.Errorf("%w: pixel (%d,%d) outside chromosome pair (%d,%d)", hictkerr.ErrBadRange, p.Bin1, p.Bin2, chrom1, chrom2)
		}
		row := local1 / blockBinCount
		col := local2 / blockBinCount
		id := row*blockColumnCount + col
		byBlock[id] = append(byBlock[id], blockRecord{Bin1: local1, Bin2: local2, Count: float32(p.Count)})
	}
	if err := it.Error(); err != nil {
		return err
	}
	if err := it.Close(); err != nil {
		return err
	}

	ids := make([]int32, 0, len(byBlock))
	for id := range byBlock {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]BlockEntry, 0, len(ids))
	for _, id := range ids {
		records := byBlock[id]
		sort.Slice(records, func(i, j int) bool {
			if records[i].Bin1 != records[j].Bin1 {
				return records[i].Bin1 < records[j].Bin1
			}
			return records[i].Bin2 < records[j].Bin2
		})
		payload := encodeListEncoding(records)
		blob, err := compressBlockBody(w.codec, payload)
		if err != nil {
			return err
		}
		if _, err := w.w.Write(blob); err != nil {
			return hictkerr.Wrap("write block", err)
		}
		entries = append(entries, BlockEntry{ID: id, Offset: w.offset, Size: int32(len(blob))})
		w.offset += int64(len(blob))
	}

	m := &MatrixRecord{
		Chrom1: chrom1, Chrom2: chrom2,
		Resolutions: []ResolutionEntry{{
			Unit: UnitBP, Resolution: resolution,
			BlockBinCount: blockBinCount, BlockColumnCount: blockColumnCount,
			Blocks: entries,
		}},
	}
	var buf bytes.Buffer
	if err := writeMatrixRecord(&buf, m); err != nil {
		return err
	}
	w.matrixBlobs = append(w.matrixBlobs, matrixBlob{chrom1: chrom1, chrom2: chrom2, raw: buf.Bytes()})
	return nil
}

// WriteNormVector stores a normalization or expected-value vector.
func (w *Writer) WriteNormVector(key NormVectorKey, values []float64) error {
	blob := encodeNormVector(values)
	w.normBlobs = append(w.normBlobs, normBlob{key: key, blob: blob})
	return nil
}

// Finalize writes every matrix record and normalization vector, writes the
// master index, and patches the header's master index offset.
func (w *Writer) Finalize() error {
	var entries []MasterIndexEntry
	for _, mb := range w.matrixBlobs {
		if _, err := w.w.Write(mb.raw); err != nil {
			return hictkerr.Wrap("write matrix record", err)
		}
		entries = append(entries, MasterIndexEntry{
			Key: matrixKey(mb.chrom1, mb.chrom2), Offset: w.offset, Size: int32(len(mb.raw)),
		})
		w.offset += int64(len(mb.raw))
	}
	for _, nb := range w.normBlobs {
		if _, err := w.w.Write(nb.blob); err != nil {
			return hictkerr.Wrap("write norm vector", err)
		}
		entries = append(entries, MasterIndexEntry{
			Key: nb.key.masterKey(), Offset: w.offset, Size: int32(len(nb.blob)),
		})
		w.offset += int64(len(nb.blob))
	}

	masterIndexPos := w.offset
	var buf bytes.Buffer
	if err := writeMasterIndex(&buf, entries); err != nil {
		return err
	}
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return hictkerr.Wrap("write master index", err)
	}

	if _, err := w.w.Seek(8, io.SeekStart); err != nil {
		return hictkerr.Wrap("seek master index pos field", err)
	}
	w.header.MasterIndexPos = masterIndexPos
	if err := binary.Write(w.w, binary.LittleEndian, masterIndexPos); err != nil {
		return hictkerr.Wrap("patch master index pos", err)
	}
	_, err := w.w.Seek(0, io.SeekEnd)
	return hictkerr.Wrap("seek to end", err)
}
