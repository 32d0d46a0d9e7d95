package hic

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/hictk-go/hictk/hictkerr"
)

// blockCodec is a leading byte on every compressed block body naming the
// codec used, independent of file version: §9's Open Question resolution
// is to detect by this discriminator rather than by file version, so a v9
// file that still writes DEFLATE blocks (as the reference writer does for
// small blocks) decodes correctly.
type blockCodec byte

const (
	codecDeflate blockCodec = 0
	codecLZ4     blockCodec = 1
)

// BlockCodec is the exported name of blockCodec, for callers (e.g.
// ingest/convert.go) that construct a Writer from outside the package.
type BlockCodec = blockCodec

// Exported aliases of the block codec discriminators.
const (
	CodecDeflate BlockCodec = codecDeflate
	CodecLZ4     BlockCodec = codecLZ4
)

// compressBlockBody compresses raw with the requested codec and prefixes
// it with the codec discriminator.
func compressBlockBody(codec blockCodec, raw []byte) ([]byte, error) {
	var body bytes.Buffer
	switch codec {
	case codecDeflate:
		fw, err := flate.NewWriter(&body, flate.DefaultCompression)
		if err != nil {
			return nil, hictkerr.Wrap("new deflate writer", err)
		}
		if _, err := fw.Write(raw); err != nil {
			return nil, hictkerr.Wrap("deflate block", err)
		}
		if err := fw.Close(); err != nil {
			return nil, hictkerr.Wrap("close deflate writer", err)
		}
	case codecLZ4:
		zw := lz4.NewWriter(&body)
		if _, err := zw.Write(raw); err != nil {
			return nil, hictkerr.Wrap("lz4 block", err)
		}
		if err := zw.Close(); err != nil {
			return nil, hictkerr.Wrap("close lz4 writer", err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown block codec %d", hictkerr.ErrBadFileFormat, codec)
	}
	out := make([]byte, 1+body.Len())
	out[0] = byte(codec)
	copy(out[1:], body.Bytes())
	return out, nil
}

// decompressBlockBody strips the codec discriminator and inflates the body.
func decompressBlockBody(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty block body", hictkerr.ErrBadFileFormat)
	}
	switch blockCodec(blob[0]) {
	case codecDeflate:
		fr := flate.NewReader(bytes.NewReader(blob[1:]))
		defer fr.Close()
		return io.ReadAll(fr)
	case codecLZ4:
		zr := lz4.NewReader(bytes.NewReader(blob[1:]))
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("%w: unknown block codec %d", hictkerr.ErrBadFileFormat, blob[0])
	}
}
