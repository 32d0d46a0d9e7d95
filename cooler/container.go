// Package cooler implements the Cooler back-end (C3): the on-disk dataset
// layout shared by single-resolution .cool, multi-resolution .mcool, and
// single-cell .scool containers, row-scan pixel reading, and a chunked
// writer with a streamed bin1_offset index.
//
// The real Cooler format stores its datasets inside an HDF5 file; per the
// spec, HDF5 itself is an external collaborator consumed only as an opaque
// block-I/O primitive (§1 Out of scope). hictk implements the schema (the
// named datasets, their group nesting, and the offset-index contract of
// §4.3) over its own chunked, compressed container format rather than
// binding a cgo HDF5 library, matching the spec's "opaque I/O primitive"
// framing of HDF5.
package cooler

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/hictk-go/hictk/hictkerr"
)

// Compression names a block codec for dataset storage, matching the
// spec's "configurable (zstd/gzip, level 0-9)" requirement.
type Compression struct {
	Algo  string // "zstd" or "gzip"
	Level int
}

var DefaultCompression = Compression{Algo: "zstd", Level: 3}

// containerMagic identifies hictk's Cooler-equivalent container. It is
// distinct from real HDF5's signature because this is not an HDF5 file;
// see the package doc comment.
var containerMagic = [8]byte{'H', 'I', 'C', 'T', 'K', 'C', 'L', 1}

// Group is a named node in the container's hierarchy ("", "resolutions/100000",
// "cells/cell001", ...). Datasets are addressed as "<group>/<name>".
type Group string

func (g Group) dataset(name string) string {
	if g == "" {
		return name
	}
	return string(g) + "/" + name
}

// datasetEntry is one table-of-contents record: a named 1-D array stored
// as a sequence of independently compressed chunks.
type datasetEntry struct {
	Name        string
	Dtype       dtype
	Length      int64
	ChunkLen    int64 // elements per chunk (last chunk may be short)
	Compression Compression
	ChunkOffset []int64 // byte offset of each compressed chunk in the file
	ChunkSize   []int64 // compressed byte length of each chunk
	Attrs       map[string]string
}

type dtype byte

const (
	dtypeInt32   dtype = 1
	dtypeFloat64 dtype = 2
	dtypeString  dtype = 3
	dtypeInt64   dtype = 4
)

func (d dtype) elemSize() int {
	switch d {
	case dtypeInt32:
		return 4
	case dtypeFloat64:
		return 8
	case dtypeInt64:
		return 8
	default:
		return 0 // strings are length-prefixed, not fixed-width
	}
}

// container is the open-file handle for reading or writing the dataset
// table of contents and chunk bodies.
type container struct {
	rw      io.ReadWriteSeeker
	toc     map[string]*datasetEntry
	tocOrder []string
}

func newContainer() *container {
	return &container{toc: make(map[string]*datasetEntry)}
}

// openContainer reads the table of contents from the tail of rw.
func openContainer(rw io.ReadWriteSeeker) (*container, error) {
	c := &container{toc: make(map[string]*datasetEntry)}
	c.rw = rw

	var magic [8]byte
	if _, err := rw.Seek(0, io.SeekStart); err != nil {
		return nil, hictkerr.Wrap("seek start", err)
	}
	if _, err := io.ReadFull(rw, magic[:]); err != nil {
		return nil, hictkerr.Wrap("read magic", err)
	}
	if magic != containerMagic {
		return nil, fmt.Errorf("%w: bad container magic", hictkerr.ErrBadFileFormat)
	}

	// The table of contents offset is stored in the last 8 bytes.
	end, err := rw.Seek(-8, io.SeekEnd)
	if err != nil {
		return nil, hictkerr.Wrap("seek toc pointer", err)
	}
	var tocOffset int64
	if err := binary.Read(rw, binary.LittleEndian, &tocOffset); err != nil {
		return nil, hictkerr.Wrap("read toc pointer", err)
	}
	if _, err := rw.Seek(tocOffset, io.SeekStart); err != nil {
		return nil, hictkerr.Wrap("seek toc", err)
	}
	br := bufio.NewReader(io.LimitReader(rw, end-tocOffset))

	var n int32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, hictkerr.Wrap("read toc count", err)
	}
	for i := int32(0); i < n; i++ {
		e, err := readDatasetEntry(br)
		if err != nil {
			return nil, hictkerr.Wrap("read toc entry", err)
		}
		c.toc[e.Name] = e
		c.tocOrder = append(c.tocOrder, e.Name)
	}
	return c, nil
}

func readDatasetEntry(r io.Reader) (*datasetEntry, error) {
	e := &datasetEntry{Attrs: map[string]string{}}
	var nameLen, algoLen, nChunks, nAttrs int32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, err
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, err
	}
	e.Name = string(nameBuf)

	var dt byte
	if err := binary.Read(r, binary.LittleEndian, &dt); err != nil {
		return nil, err
	}
	e.Dtype = dtype(dt)
	if err := binary.Read(r, binary.LittleEndian, &e.Length); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &e.ChunkLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &algoLen); err != nil {
		return nil, err
	}
	algoBuf := make([]byte, algoLen)
	if _, err := io.ReadFull(r, algoBuf); err != nil {
		return nil, err
	}
	e.Compression.Algo = string(algoBuf)
	var level int32
	if err := binary.Read(r, binary.LittleEndian, &level); err != nil {
		return nil, err
	}
	e.Compression.Level = int(level)

	if err := binary.Read(r, binary.LittleEndian, &nChunks); err != nil {
		return nil, err
	}
	e.ChunkOffset = make([]int64, nChunks)
	e.ChunkSize = make([]int64, nChunks)
	for i := range e.ChunkOffset {
		if err := binary.Read(r, binary.LittleEndian, &e.ChunkOffset[i]); err != nil {
			return nil, err
		}
	}
	for i := range e.ChunkSize {
		if err := binary.Read(r, binary.LittleEndian, &e.ChunkSize[i]); err != nil {
			return nil, err
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &nAttrs); err != nil {
		return nil, err
	}
	for i := int32(0); i < nAttrs; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		e.Attrs[k] = v
	}
	return e, nil
}

func writeDatasetEntry(w io.Writer, e *datasetEntry) error {
	if err := writeString(w, e.Name); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byte(e.Dtype)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.Length); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, e.ChunkLen); err != nil {
		return err
	}
	if err := writeString(w, e.Compression.Algo); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(e.Compression.Level)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(e.ChunkOffset))); err != nil {
		return err
	}
	for _, o := range e.ChunkOffset {
		if err := binary.Write(w, binary.LittleEndian, o); err != nil {
			return err
		}
	}
	for _, s := range e.ChunkSize {
		if err := binary.Write(w, binary.LittleEndian, s); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := binary.Write(w, binary.LittleEndian, int32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeString(w, k); err != nil {
			return err
		}
		if err := writeString(w, e.Attrs[k]); err != nil {
			return err
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func compressBlock(algo string, level int, data []byte) ([]byte, error) {
	switch algo {
	case "zstd":
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel(level)))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case "gzip":
		return gzipCompress(data, level)
	default:
		return nil, fmt.Errorf("%w: unknown compression algorithm %q", hictkerr.ErrBadFileFormat, algo)
	}
}

func decompressBlock(algo string, data []byte) ([]byte, error) {
	switch algo {
	case "zstd":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case "gzip":
		return gzipDecompress(data)
	default:
		return nil, fmt.Errorf("%w: unknown compression algorithm %q", hictkerr.ErrBadFileFormat, algo)
	}
}

func zstdLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 4:
		return zstd.SpeedDefault
	case level <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
