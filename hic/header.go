package hic

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hictkerr"
)

var magic = [4]byte{'H', 'I', 'C', 0}

// Unit names a .hic resolution axis, matching the reference format's two
// binning conventions.
type Unit string

const (
	UnitBP   Unit = "BP"
	UnitFRAG Unit = "FRAG"
)

// Header is the .hic file preamble: everything before the first matrix
// record, per §4.4 item 1.
type Header struct {
	Version        int32 // 8 or 9
	MasterIndexPos int64
	GenomeID       string
	Attributes     map[string]string
	Reference      *genome.Reference
	BPResolutions  []int64
	FragResolutions []int64
}

func readHeader(r *bufio.Reader) (*Header, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, hictkerr.Wrap("read magic", err)
	}
	if m != magic {
		return nil, fmt.Errorf("%w: bad .hic magic", hictkerr.ErrBadFileFormat)
	}
	h := &Header{Attributes: map[string]string{}}
	if err := binary.Read(r, binary.LittleEndian, &h.Version); err != nil {
		return nil, hictkerr.Wrap("read version", err)
	}
	if h.Version != 8 && h.Version != 9 {
		return nil, fmt.Errorf("%w: unsupported .hic version %d", hictkerr.ErrBadFileFormat, h.Version)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.MasterIndexPos); err != nil {
		return nil, hictkerr.Wrap("read master index pos", err)
	}
	genomeID, err := readCString(r)
	if err != nil {
		return nil, hictkerr.Wrap("read genome id", err)
	}
	h.GenomeID = genomeID

	var nAttrs int32
	if err := binary.Read(r, binary.LittleEndian, &nAttrs); err != nil {
		return nil, hictkerr.Wrap("read attribute count", err)
	}
	for i := int32(0); i < nAttrs; i++ {
		k, err := readCString(r)
		if err != nil {
			return nil, err
		}
		v, err := readCString(r)
		if err != nil {
			return nil, err
		}
		h.Attributes[k] = v
	}

	var nChroms int32
	if err := binary.Read(r, binary.LittleEndian, &nChroms); err != nil {
		return nil, hictkerr.Wrap("read chrom count", err)
	}
	names := make([]string, nChroms)
	lengths := make([]int64, nChroms)
	for i := range names {
		n, err := readCString(r)
		if err != nil {
			return nil, err
		}
		var l int32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, hictkerr.Wrap("read chrom length", err)
		}
		names[i], lengths[i] = n, int64(l)
	}
	h.Reference, err = genome.NewReference(names, lengths)
	if err != nil {
		return nil, err
	}

	h.BPResolutions, err = readResolutionList(r)
	if err != nil {
		return nil, err
	}
	h.FragResolutions, err = readResolutionList(r)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func readResolutionList(r io.Reader) ([]int64, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, hictkerr.Wrap("read resolution count", err)
	}
	out := make([]int64, n)
	for i := range out {
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, hictkerr.Wrap("read resolution", err)
		}
		out[i] = int64(v)
	}
	return out, nil
}

func writeHeader(w io.Writer, h *Header) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.Version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.MasterIndexPos); err != nil {
		return err
	}
	if err := writeCString(w, h.GenomeID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(h.Attributes))); err != nil {
		return err
	}
	for k, v := range h.Attributes {
		if err := writeCString(w, k); err != nil {
			return err
		}
		if err := writeCString(w, v); err != nil {
			return err
		}
	}
	chroms := h.Reference.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(chroms))); err != nil {
		return err
	}
	for _, c := range chroms {
		if err := writeCString(w, c.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(c.Length)); err != nil {
			return err
		}
	}
	if err := writeResolutionList(w, h.BPResolutions); err != nil {
		return err
	}
	return writeResolutionList(w, h.FragResolutions)
}

func writeResolutionList(w io.Writer, res []int64) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(res))); err != nil {
		return err
	}
	for _, r := range res {
		if err := binary.Write(w, binary.LittleEndian, int32(r)); err != nil {
			return err
		}
	}
	return nil
}

func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}
