package cooler

import (
	"bytes"
	"compress/gzip"
	"io"
)

// gzipCompress/gzipDecompress back the "gzip" Compression.Algo option.
// Plain stdlib compress/gzip is used here (rather than klauspost/pgzip,
// which hictk reserves for C9's parallel spill compression, see
// ingest/spill.go) because dataset chunks are compressed one at a time as
// the writer flushes them, not in parallel.
func gzipCompress(data []byte, level int) ([]byte, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
