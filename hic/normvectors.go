package hic

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hictk-go/hictk/hictkerr"
)

// NormVectorKey identifies one normalization vector, matching the key
// naming used in the master index (§4.4 items 4-5).
type NormVectorKey struct {
	Method     string
	Chrom      int32
	Unit       Unit
	Resolution int64
}

func (k NormVectorKey) masterKey() string {
	return fmt.Sprintf("norm/%s/%d/%s/%d", k.Method, k.Chrom, k.Unit, k.Resolution)
}

func readNormVector(r io.ReaderAt, offset int64, size int32) ([]float64, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, offset); err != nil {
		return nil, hictkerr.Wrap("read norm vector", err)
	}
	n := int32(binary.LittleEndian.Uint32(buf))
	if int64(4+8*int64(n)) > int64(len(buf)) {
		return nil, fmt.Errorf("%w: truncated normalization vector", hictkerr.ErrBadFileFormat)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[4+8*i:]))
	}
	return out, nil
}

func encodeNormVector(values []float64) []byte {
	buf := make([]byte, 4+8*len(values))
	binary.LittleEndian.PutUint32(buf, uint32(len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(v))
	}
	return buf
}
