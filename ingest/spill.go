package ingest

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// spillWriter appends sorted, coalesced pixels to a temp file as a
// compressed stream of fixed-width (bin1, bin2, count) records.
type spillWriter struct {
	f    *os.File
	bw   *bufio.Writer
	wc   io.WriteCloser
	algo string
}

func newSpillWriter(dir string, comp Compression) (*spillWriter, error) {
	f, err := os.CreateTemp(dir, "hictk-spill-*.bin")
	if err != nil {
		return nil, hictkerr.Wrap("create spill file", err)
	}
	var wc io.WriteCloser
	switch comp.Algo {
	case "gzip", "":
		wc, err = pgzip.NewWriterLevel(f, gzipLevel(comp.Level))
	case "xz":
		wc, err = xz.NewWriter(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: unknown spill compression %q", hictkerr.ErrBadFileFormat, comp.Algo)
	}
	if err != nil {
		f.Close()
		return nil, hictkerr.Wrap("open spill compressor", err)
	}
	return &spillWriter{f: f, bw: bufio.NewWriter(wc), wc: wc, algo: comp.Algo}, nil
}

func gzipLevel(level int) int {
	if level <= 0 {
		return pgzip.DefaultCompression
	}
	return level
}

func (s *spillWriter) writeAll(pixels []pixel.Pixel) error {
	var rec [24]byte
	for _, p := range pixels {
		binary.LittleEndian.PutUint64(rec[0:], uint64(p.Bin1))
		binary.LittleEndian.PutUint64(rec[8:], uint64(p.Bin2))
		binary.LittleEndian.PutUint64(rec[16:], math.Float64bits(p.Count))
		if _, err := s.bw.Write(rec[:]); err != nil {
			return hictkerr.Wrap("write spill record", err)
		}
	}
	return nil
}

func (s *spillWriter) close() (string, error) {
	if err := s.bw.Flush(); err != nil {
		return "", hictkerr.Wrap("flush spill", err)
	}
	if err := s.wc.Close(); err != nil {
		return "", hictkerr.Wrap("close spill compressor", err)
	}
	path := s.f.Name()
	return path, hictkerr.Wrap("close spill file", s.f.Close())
}

// spillReader streams pixels back out of a spill file in order.
type spillReader struct {
	f    *os.File
	rc   io.ReadCloser
	br   *bufio.Reader
	done bool
}

func openSpillReader(path, algo string) (*spillReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hictkerr.Wrap("open spill file", err)
	}
	var rc io.ReadCloser
	switch algo {
	case "gzip", "":
		rc, err = pgzip.NewReader(f)
	case "xz":
		var xr *xz.Reader
		xr, err = xz.NewReader(f)
		if err == nil {
			rc = io.NopCloser(xr)
		}
	default:
		f.Close()
		return nil, fmt.Errorf("%w: unknown spill compression %q", hictkerr.ErrBadFileFormat, algo)
	}
	if err != nil {
		f.Close()
		return nil, hictkerr.Wrap("open spill decompressor", err)
	}
	return &spillReader{f: f, rc: rc, br: bufio.NewReader(rc)}, nil
}

func (s *spillReader) next() (pixel.Pixel, bool, error) {
	if s.done {
		return pixel.Pixel{}, false, nil
	}
	var rec [24]byte
	if _, err := io.ReadFull(s.br, rec[:]); err != nil {
		if err == io.EOF {
			s.done = true
			return pixel.Pixel{}, false, nil
		}
		return pixel.Pixel{}, false, hictkerr.Wrap("read spill record", err)
	}
	p := pixel.Pixel{
		Bin1:  int64(binary.LittleEndian.Uint64(rec[0:])),
		Bin2:  int64(binary.LittleEndian.Uint64(rec[8:])),
		Count: math.Float64frombits(binary.LittleEndian.Uint64(rec[16:])),
	}
	return p, true, nil
}

func (s *spillReader) close() error {
	if err := s.rc.Close(); err != nil {
		s.f.Close()
		return hictkerr.Wrap("close spill decompressor", err)
	}
	return hictkerr.Wrap("close spill file", s.f.Close())
}
