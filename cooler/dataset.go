package cooler

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hictk-go/hictk/hictkerr"
)

// coalesceThreshold is the default byte threshold below which adjacent
// chunk reads are coalesced into a single I/O, per §4.3's "batched I/O"
// contract.
const coalesceThreshold = 256 * 1024

// readInt32Range reads dataset[lo:hi] of an int32 dataset.
func (c *container) readInt32Range(name string, lo, hi int64) ([]int32, error) {
	raw, err := c.readRange(name, lo, hi, 4)
	if err != nil {
		return nil, err
	}
	out := make([]int32, hi-lo)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// readInt64Range reads dataset[lo:hi] of an int64 dataset.
func (c *container) readInt64Range(name string, lo, hi int64) ([]int64, error) {
	raw, err := c.readRange(name, lo, hi, 8)
	if err != nil {
		return nil, err
	}
	out := make([]int64, hi-lo)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}

// readFloat64Range reads dataset[lo:hi] of a float64 dataset.
func (c *container) readFloat64Range(name string, lo, hi int64) ([]float64, error) {
	raw, err := c.readRange(name, lo, hi, 8)
	if err != nil {
		return nil, err
	}
	out := make([]float64, hi-lo)
	for i := range out {
		out[i] = float64FromBits(raw[i*8:])
	}
	return out, nil
}

func float64FromBits(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// readRange returns the raw decompressed bytes for elements [lo,hi) of a
// fixed-width dataset, reading whole chunks and coalescing adjacent chunk
// reads under coalesceThreshold into a single underlying I/O the way
// §4.3 requires for row-slab scans.
func (c *container) readRange(name string, lo, hi int64, elemSize int) ([]byte, error) {
	e, ok := c.toc[name]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %q not present", hictkerr.ErrBadFileFormat, name)
	}
	if lo < 0 || hi > e.Length || lo > hi {
		return nil, fmt.Errorf("%w: range [%d,%d) out of bounds for dataset %q (length %d)", hictkerr.ErrBadRange, lo, hi, name, e.Length)
	}
	if lo == hi {
		return nil, nil
	}
	firstChunk := lo / e.ChunkLen
	lastChunk := (hi - 1) / e.ChunkLen

	out := make([]byte, 0, (hi-lo)*int64(elemSize))
	i := firstChunk
	for i <= lastChunk {
		// Gather a coalesced run of physically-adjacent chunks under
		// the byte threshold before issuing the read.
		j := i
		runBytes := e.ChunkSize[j]
		for j+1 <= lastChunk &&
			e.ChunkOffset[j+1] == e.ChunkOffset[j]+e.ChunkSize[j] &&
			runBytes+e.ChunkSize[j+1] <= coalesceThreshold {
			j++
			runBytes += e.ChunkSize[j]
		}
		blob, err := c.readAt(e.ChunkOffset[i], runBytes)
		if err != nil {
			return nil, err
		}
		off := int64(0)
		for k := i; k <= j; k++ {
			chunk, err := decompressBlock(e.Compression.Algo, blob[off:off+e.ChunkSize[k]])
			if err != nil {
				return nil, hictkerr.Wrap("decompress chunk", err)
			}
			off += e.ChunkSize[k]

			chunkStart := k * e.ChunkLen
			chunkEnd := chunkStart + e.ChunkLen
			if chunkEnd > e.Length {
				chunkEnd = e.Length
			}
			wantLo, wantHi := chunkStart, chunkEnd
			if wantLo < lo {
				wantLo = lo
			}
			if wantHi > hi {
				wantHi = hi
			}
			byteLo := (wantLo - chunkStart) * int64(elemSize)
			byteHi := (wantHi - chunkStart) * int64(elemSize)
			out = append(out, chunk[byteLo:byteHi]...)
		}
		i = j + 1
	}
	return out, nil
}

func (c *container) readAt(offset, size int64) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := c.rw.Seek(offset, io.SeekStart); err != nil {
		return nil, hictkerr.Wrap("seek chunk", err)
	}
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		return nil, hictkerr.Wrap("read chunk", err)
	}
	return buf, nil
}

// readStringRange reads dataset[lo:hi] of a string dataset. String
// datasets (chromosome names) are small and variable-width, so unlike the
// fixed-width datasets above they are stored as a single chunk of
// length-prefixed strings rather than sliced by element count.
func (c *container) readStringRange(name string, lo, hi int64) ([]string, error) {
	e, ok := c.toc[name]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %q not present", hictkerr.ErrBadFileFormat, name)
	}
	if len(e.ChunkOffset) == 0 {
		if lo == hi {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: dataset %q is empty", hictkerr.ErrBadRange, name)
	}
	blob, err := c.readAt(e.ChunkOffset[0], e.ChunkSize[0])
	if err != nil {
		return nil, err
	}
	raw, err := decompressBlock(e.Compression.Algo, blob)
	if err != nil {
		return nil, hictkerr.Wrap("decompress string chunk", err)
	}
	all := make([]string, 0, e.Length)
	for off := 0; off < len(raw); {
		n := int(binary.LittleEndian.Uint32(raw[off:]))
		off += 4
		all = append(all, string(raw[off:off+n]))
		off += n
	}
	if lo < 0 || hi > int64(len(all)) || lo > hi {
		return nil, fmt.Errorf("%w: range [%d,%d) out of bounds for dataset %q", hictkerr.ErrBadRange, lo, hi, name)
	}
	return all[lo:hi], nil
}

// Length returns the number of elements in the named dataset.
func (c *container) Length(name string) (int64, bool) {
	e, ok := c.toc[name]
	if !ok {
		return 0, false
	}
	return e.Length, true
}

// Attr returns a named attribute on a dataset.
func (c *container) Attr(dataset, key string) (string, bool) {
	e, ok := c.toc[dataset]
	if !ok {
		return "", false
	}
	v, ok := e.Attrs[key]
	return v, ok
}

// DtypeOf returns the storage dtype of the named dataset, used by the
// pixel reader to tell an int32-count container from a float64-count one
// apart without a redundant attribute.
func (c *container) DtypeOf(name string) (dtype, bool) {
	e, ok := c.toc[name]
	if !ok {
		return 0, false
	}
	return e.Dtype, true
}

// Has reports whether the named dataset exists.
func (c *container) Has(name string) bool {
	_, ok := c.toc[name]
	return ok
}

// NamesWithPrefix returns every dataset path sharing the given group prefix, e.g.
// "resolutions/" to enumerate available resolutions or "bins/" to
// enumerate bound weight columns.
func (c *container) NamesWithPrefix(prefix string) []string {
	var out []string
	for _, n := range c.tocOrder {
		if len(n) >= len(prefix) && n[:len(prefix)] == prefix {
			out = append(out, n)
		}
	}
	return out
}
