package hic

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/hictk-go/hictk/hictkerr"
)

// BlockEntry locates one compressed block in the file.
type BlockEntry struct {
	ID     int32
	Offset int64
	Size   int32
}

// ResolutionEntry is one of a matrix record's per-(unit,resolution)
// entries, per §4.4 item 2.
type ResolutionEntry struct {
	Unit            Unit
	Resolution      int64
	BlockBinCount   int32 // bins per block along an axis
	BlockColumnCount int32
	Blocks          []BlockEntry
}

// MatrixRecord is the full set of resolution entries for one chromosome
// pair, including the diagonal (chrom1 == chrom2).
type MatrixRecord struct {
	Chrom1, Chrom2 int32 // chromosome ranks
	Resolutions    []ResolutionEntry
}

func readMatrixRecord(r *bufio.Reader) (*MatrixRecord, error) {
	m := &MatrixRecord{}
	if err := binary.Read(r, binary.LittleEndian, &m.Chrom1); err != nil {
		return nil, hictkerr.Wrap("read chrom1", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.Chrom2); err != nil {
		return nil, hictkerr.Wrap("read chrom2", err)
	}
	var nRes int32
	if err := binary.Read(r, binary.LittleEndian, &nRes); err != nil {
		return nil, hictkerr.Wrap("read resolution entry count", err)
	}
	m.Resolutions = make([]ResolutionEntry, nRes)
	for i := range m.Resolutions {
		e := &m.Resolutions[i]
		unit, err := readCString(r)
		if err != nil {
			return nil, err
		}
		e.Unit = Unit(unit)
		var res, blockBin, blockCol, nBlocks int32
		if err := binary.Read(r, binary.LittleEndian, &res); err != nil {
			return nil, err
		}
		e.Resolution = int64(res)
		if err := binary.Read(r, binary.LittleEndian, &blockBin); err != nil {
			return nil, err
		}
		e.BlockBinCount = blockBin
		if err := binary.Read(r, binary.LittleEndian, &blockCol); err != nil {
			return nil, err
		}
		e.BlockColumnCount = blockCol
		if err := binary.Read(r, binary.LittleEndian, &nBlocks); err != nil {
			return nil, err
		}
		e.Blocks = make([]BlockEntry, nBlocks)
		for j := range e.Blocks {
			b := &e.Blocks[j]
			if err := binary.Read(r, binary.LittleEndian, &b.ID); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &b.Offset); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &b.Size); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func writeMatrixRecord(w io.Writer, m *MatrixRecord) error {
	if err := binary.Write(w, binary.LittleEndian, m.Chrom1); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.Chrom2); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(m.Resolutions))); err != nil {
		return err
	}
	for _, e := range m.Resolutions {
		if err := writeCString(w, string(e.Unit)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(e.Resolution)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.BlockBinCount); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.BlockColumnCount); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(len(e.Blocks))); err != nil {
			return err
		}
		for _, b := range e.Blocks {
			if err := binary.Write(w, binary.LittleEndian, b.ID); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, b.Offset); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, b.Size); err != nil {
				return err
			}
		}
	}
	return nil
}

// MasterIndexEntry names a normalization or expected-value vector stored
// after the matrix records, per §4.4 item 4.
type MasterIndexEntry struct {
	Key    string
	Offset int64
	Size   int32
}

func readMasterIndex(r *bufio.Reader) ([]MasterIndexEntry, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, hictkerr.Wrap("read master index count", err)
	}
	out := make([]MasterIndexEntry, n)
	for i := range out {
		k, err := readCString(r)
		if err != nil {
			return nil, err
		}
		out[i].Key = k
		if err := binary.Read(r, binary.LittleEndian, &out[i].Offset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &out[i].Size); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeMasterIndex(w io.Writer, entries []MasterIndexEntry) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeCString(w, e.Key); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.Offset); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.Size); err != nil {
			return err
		}
	}
	return nil
}
