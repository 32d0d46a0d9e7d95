package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/hictkerr"
)

// ValidPairsScanner reads Hi-C-Pro's validPairs format: readID chrom1
// pos1 strand1 chrom2 pos2 strand2 [... fragment/mapping-quality
// columns], tab-separated.
type ValidPairsScanner struct {
	sc  *bufio.Scanner
	rec Record
	err error
}

func NewValidPairsScanner(r io.Reader) *ValidPairsScanner {
	return &ValidPairsScanner{sc: newLineScanner(r)}
}

func (v *ValidPairsScanner) Scan() bool {
	for v.sc.Scan() {
		fields, ok := splitFields(v.sc.Text())
		if !ok {
			continue
		}
		if len(fields) < 6 {
			v.err = fmt.Errorf("%w: validPairs line has fewer than 6 columns", hictkerr.ErrBadFileFormat)
			return false
		}
		pos1, err := parseInt(fields[2])
		if err != nil {
			v.err = hictkerr.Wrap("parse validPairs pos1", err)
			return false
		}
		pos2, err := parseInt(fields[5])
		if err != nil {
			v.err = hictkerr.Wrap("parse validPairs pos2", err)
			return false
		}
		v.rec = Record{Chrom1: fields[1], Pos1: pos1, Chrom2: fields[4], Pos2: pos2, Count: 1}
		return true
	}
	v.err = v.sc.Err()
	return false
}

func (v *ValidPairsScanner) Record() Record { return v.rec }
func (v *ValidPairsScanner) Err() error     { return v.err }
