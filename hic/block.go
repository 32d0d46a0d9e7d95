package hic

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hictk-go/hictk/hictkerr"
)

// blockRecord is one decoded (bin1_local, bin2_local, count) triple from a
// block payload, with bin ids local to the chromosome (per §4.4 item 3);
// File.Query adds the chromosome's global bin offset.
type blockRecord struct {
	Bin1, Bin2 int32
	Count      float32
}

// Block payload discriminator bytes. hictk always writes listEncoding;
// denseEncoding is also decoded on read, while rleEncoding is not decoded
// and yields ErrBadFileFormat.
const (
	listEncoding  byte = 1 // run of (bin1 delta, bin2, count) triples
	denseEncoding byte = 2 // dense row-major short array over a bounding box
	rleEncoding   byte = 3 // run-length compressed row encoding
)

// decodeBlockPayload decodes a decompressed block body (the discriminator
// byte plus the encoded triples) into sorted blockRecords.
func decodeBlockPayload(raw []byte) ([]blockRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case listEncoding:
		return decodeListEncoding(raw[1:])
	case denseEncoding:
		return decodeDenseEncoding(raw[1:])
	default:
		return nil, fmt.Errorf("%w: unsupported block encoding %d", hictkerr.ErrBadFileFormat, raw[0])
	}
}

func decodeListEncoding(b []byte) ([]blockRecord, error) {
	cnt, pos, ok := itf8Decode(b)
	if !ok {
		return nil, fmt.Errorf("%w: truncated block record count", hictkerr.ErrBadFileFormat)
	}
	out := make([]blockRecord, 0, cnt)
	var bin1 int32
	for i := int32(0); i < cnt; i++ {
		d1, n1, ok := itf8Decode(b[pos:])
		if !ok {
			return nil, fmt.Errorf("%w: truncated block bin1 delta", hictkerr.ErrBadFileFormat)
		}
		pos += n1
		bin1 += d1
		bin2, n2, ok := itf8Decode(b[pos:])
		if !ok {
			return nil, fmt.Errorf("%w: truncated block bin2", hictkerr.ErrBadFileFormat)
		}
		pos += n2
		if pos+4 > len(b) {
			return nil, fmt.Errorf("%w: truncated block count", hictkerr.ErrBadFileFormat)
		}
		count := math.Float32frombits(binary.LittleEndian.Uint32(b[pos:]))
		pos += 4
		out = append(out, blockRecord{Bin1: bin1, Bin2: bin2, Count: count})
	}
	return out, nil
}

// decodeDenseEncoding decodes a bounding-box-relative dense matrix:
// row0, col0, width, height, then width*height float32 cells (NaN = gap).
func decodeDenseEncoding(b []byte) ([]blockRecord, error) {
	if len(b) < 16 {
		return nil, fmt.Errorf("%w: truncated dense block header", hictkerr.ErrBadFileFormat)
	}
	row0 := int32(binary.LittleEndian.Uint32(b[0:]))
	col0 := int32(binary.LittleEndian.Uint32(b[4:]))
	width := int32(binary.LittleEndian.Uint32(b[8:]))
	height := int32(binary.LittleEndian.Uint32(b[12:]))
	pos := 16
	var out []blockRecord
	for r := int32(0); r < height; r++ {
		for c := int32(0); c < width; c++ {
			if pos+4 > len(b) {
				return nil, fmt.Errorf("%w: truncated dense block body", hictkerr.ErrBadFileFormat)
			}
			v := math.Float32frombits(binary.LittleEndian.Uint32(b[pos:]))
			pos += 4
			if !math.IsNaN(float64(v)) {
				out = append(out, blockRecord{Bin1: row0 + r, Bin2: col0 + c, Count: v})
			}
		}
	}
	return out, nil
}

// encodeListEncoding encodes sorted-by-bin1 blockRecords as the list
// encoding hictk always writes.
func encodeListEncoding(records []blockRecord) []byte {
	buf := make([]byte, 0, 1+5+len(records)*9)
	buf = append(buf, listEncoding)
	var countBuf [5]byte
	n := itf8Encode(countBuf[:], int32(len(records)))
	buf = append(buf, countBuf[:n]...)

	var bin1 int32
	var tmp [9]byte
	for _, rec := range records {
		d := rec.Bin1 - bin1
		bin1 = rec.Bin1
		n := itf8Encode(tmp[:], d)
		buf = append(buf, tmp[:n]...)
		n = itf8Encode(tmp[:], rec.Bin2)
		buf = append(buf, tmp[:n]...)
		var cbuf [4]byte
		binary.LittleEndian.PutUint32(cbuf[:], math.Float32bits(rec.Count))
		buf = append(buf, cbuf[:]...)
	}
	return buf
}
