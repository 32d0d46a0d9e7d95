package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/hictkerr"
)

// Bg2Scanner reads the bedGraph2 format: chrom1 start1 end1 chrom2 start2
// end2 count, tab- or space-separated, with "#"-prefixed comments
// ignored. The bin midpoint of [start,end) anchors each position.
type Bg2Scanner struct {
	sc  *bufio.Scanner
	rec Record
	err error
}

func NewBg2Scanner(r io.Reader) *Bg2Scanner {
	return &Bg2Scanner{sc: newLineScanner(r)}
}

func (b *Bg2Scanner) Scan() bool {
	for b.sc.Scan() {
		fields, ok := splitFields(b.sc.Text())
		if !ok {
			continue
		}
		if len(fields) < 7 {
			b.err = fmt.Errorf("%w: bedGraph2 line has fewer than 7 columns", hictkerr.ErrBadFileFormat)
			return false
		}
		start1, err := parseInt(fields[1])
		if err != nil {
			b.err = hictkerr.Wrap("parse bg2 start1", err)
			return false
		}
		end1, err := parseInt(fields[2])
		if err != nil {
			b.err = hictkerr.Wrap("parse bg2 end1", err)
			return false
		}
		start2, err := parseInt(fields[4])
		if err != nil {
			b.err = hictkerr.Wrap("parse bg2 start2", err)
			return false
		}
		end2, err := parseInt(fields[5])
		if err != nil {
			b.err = hictkerr.Wrap("parse bg2 end2", err)
			return false
		}
		count, err := parseFloat(fields[6])
		if err != nil {
			b.err = hictkerr.Wrap("parse bg2 count", err)
			return false
		}
		b.rec = Record{
			Chrom1: fields[0], Pos1: (start1 + end1) / 2,
			Chrom2: fields[3], Pos2: (start2 + end2) / 2,
			Count: count,
		}
		return true
	}
	b.err = b.sc.Err()
	return false
}

func (b *Bg2Scanner) Record() Record { return b.rec }
func (b *Bg2Scanner) Err() error     { return b.err }
