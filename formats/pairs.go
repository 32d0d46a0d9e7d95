package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/hictkerr"
)

// PairsScanner reads the 4DN pairs format: whitespace-separated
// columns readID chrom1 pos1 chrom2 pos2 [strand1 strand2 ...], with
// "#"-prefixed header lines ignored, per the 4DN pairs specification.
type PairsScanner struct {
	sc  *bufio.Scanner
	rec Record
	err error
}

func NewPairsScanner(r io.Reader) *PairsScanner {
	return &PairsScanner{sc: newLineScanner(r)}
}

func (p *PairsScanner) Scan() bool {
	for p.sc.Scan() {
		fields, ok := splitFields(p.sc.Text())
		if !ok {
			continue
		}
		if len(fields) < 5 {
			p.err = fmt.Errorf("%w: pairs line has fewer than 5 columns", hictkerr.ErrBadFileFormat)
			return false
		}
		pos1, err := parseInt(fields[2])
		if err != nil {
			p.err = hictkerr.Wrap("parse pairs pos1", err)
			return false
		}
		pos2, err := parseInt(fields[4])
		if err != nil {
			p.err = hictkerr.Wrap("parse pairs pos2", err)
			return false
		}
		p.rec = Record{Chrom1: fields[1], Pos1: pos1, Chrom2: fields[3], Pos2: pos2, Count: 1}
		return true
	}
	p.err = p.sc.Err()
	return false
}

func (p *PairsScanner) Record() Record { return p.rec }
func (p *PairsScanner) Err() error     { return p.err }
