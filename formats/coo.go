package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hictk-go/hictk/hictkerr"
	"github.com/hictk-go/hictk/pixel"
)

// CooScanner reads the sparse COO triple format: bin1_id bin2_id count,
// already resolved to a specific BinTable's bin ids (unlike pairs/
// bedGraph2/validPairs, which name genomic positions).
type CooScanner struct {
	sc  *bufio.Scanner
	cur pixel.Pixel
	err error
}

func NewCooScanner(r io.Reader) *CooScanner {
	return &CooScanner{sc: newLineScanner(r)}
}

func (c *CooScanner) Scan() bool {
	for c.sc.Scan() {
		fields, ok := splitFields(c.sc.Text())
		if !ok {
			continue
		}
		if len(fields) < 3 {
			c.err = fmt.Errorf("%w: COO line has fewer than 3 columns", hictkerr.ErrBadFileFormat)
			return false
		}
		bin1, err := parseInt(fields[0])
		if err != nil {
			c.err = hictkerr.Wrap("parse COO bin1", err)
			return false
		}
		bin2, err := parseInt(fields[1])
		if err != nil {
			c.err = hictkerr.Wrap("parse COO bin2", err)
			return false
		}
		count, err := parseFloat(fields[2])
		if err != nil {
			c.err = hictkerr.Wrap("parse COO count", err)
			return false
		}
		if bin1 > bin2 {
			bin1, bin2 = bin2, bin1
		}
		c.cur = pixel.Pixel{Bin1: bin1, Bin2: bin2, Count: count}
		return true
	}
	c.err = c.sc.Err()
	return false
}

func (c *CooScanner) Pixel() pixel.Pixel { return c.cur }
func (c *CooScanner) Err() error         { return c.err }
