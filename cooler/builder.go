package cooler

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/hictk-go/hictk/hictkerr"
)

// builder assembles a new container: datasets are appended chunk-by-chunk
// as data arrives (never fully materialized), matching §4.3's "pixels are
// appended in sorted order... with chunked layout" writer contract.
type builder struct {
	w       io.Writer
	offset  int64
	entries []*datasetEntry
	byName  map[string]*datasetEntry
}

func newBuilder(w io.Writer) (*builder, error) {
	if _, err := w.Write(containerMagic[:]); err != nil {
		return nil, hictkerr.Wrap("write magic", err)
	}
	return &builder{w: w, offset: int64(len(containerMagic)), byName: map[string]*datasetEntry{}}, nil
}

// newDataset declares a dataset that will be filled by successive
// appendChunk calls. chunkLen is the number of logical elements per chunk.
func (b *builder) newDataset(name string, dt dtype, chunkLen int64, comp Compression) *datasetEntry {
	e := &datasetEntry{Name: name, Dtype: dt, ChunkLen: chunkLen, Compression: comp, Attrs: map[string]string{}}
	b.entries = append(b.entries, e)
	b.byName[name] = e
	return e
}

// appendChunk compresses and writes one chunk of raw little-endian element
// bytes (already length chunkLen*elemSize, except possibly the final
// chunk) and records it in the dataset's chunk table.
func (b *builder) appendChunk(e *datasetEntry, raw []byte, nElems int64) error {
	blob, err := compressBlock(e.Compression.Algo, e.Compression.Level, raw)
	if err != nil {
		return hictkerr.Wrap("compress chunk", err)
	}
	if _, err := b.w.Write(blob); err != nil {
		return hictkerr.Wrap("write chunk", err)
	}
	e.ChunkOffset = append(e.ChunkOffset, b.offset)
	e.ChunkSize = append(e.ChunkSize, int64(len(blob)))
	e.Length += nElems
	b.offset += int64(len(blob))
	return nil
}

// appendStringColumn writes an entire string dataset (chromosome names) as
// a single chunk of length-prefixed strings, mirroring how readStringRange
// decodes it back.
func (b *builder) appendStringColumn(name string, values []string, comp Compression) error {
	e := b.newDataset(name, dtypeString, int64(len(values)), comp)
	raw := encodeStrings(values)
	return b.appendChunk(e, raw, int64(len(values)))
}

func encodeStrings(v []string) []byte {
	size := 0
	for _, s := range v {
		size += 4 + len(s)
	}
	buf := make([]byte, size)
	off := 0
	for _, s := range v {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(s)))
		off += 4
		off += copy(buf[off:], s)
	}
	return buf
}

func encodeInt32s(v []int32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(x))
	}
	return buf
}

func encodeInt64s(v []int64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(x))
	}
	return buf
}

func encodeFloat64s(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// finalize writes the table of contents and the trailing TOC-offset
// pointer, completing the §4.9 "finalize" step for this container.
func (b *builder) finalize() error {
	tocOffset := b.offset
	if err := binary.Write(b.w, binary.LittleEndian, int32(len(b.entries))); err != nil {
		return hictkerr.Wrap("write toc count", err)
	}
	for _, e := range b.entries {
		if err := writeDatasetEntry(b.w, e); err != nil {
			return hictkerr.Wrap("write toc entry", err)
		}
	}
	if err := binary.Write(b.w, binary.LittleEndian, tocOffset); err != nil {
		return hictkerr.Wrap("write toc pointer", err)
	}
	return nil
}
