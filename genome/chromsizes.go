package genome

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hictk-go/hictk/hictkerr"
)

// ParseChromSizes reads a two-column "name\tlength" chrom.sizes file, the
// way fai.ReadFrom reads the five-column FAI format: a bare tab-delimited
// scan rather than a full encoding/csv parse, since chrom.sizes files carry
// no quoting. Blank lines and lines starting with '#' are skipped.
func ParseChromSizes(r io.Reader) (*Reference, error) {
	var names []string
	var lengths []int64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: chrom.sizes line %d: expected 2 fields, got %d", hictkerr.ErrBadFileFormat, line, len(fields))
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: chrom.sizes line %d: %v", hictkerr.ErrBadFileFormat, line, err)
		}
		names = append(names, fields[0])
		lengths = append(lengths, n)
	}
	if err := sc.Err(); err != nil {
		return nil, hictkerr.Wrap("chrom.sizes scan", err)
	}
	return NewReference(names, lengths)
}

// WriteChromSizes writes r in chrom.sizes order of ascending rank.
func WriteChromSizes(w io.Writer, r *Reference) error {
	bw := bufio.NewWriter(w)
	for _, c := range r.All() {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", c.Name, c.Length); err != nil {
			return hictkerr.Wrap("chrom.sizes write", err)
		}
	}
	return hictkerr.Wrap("chrom.sizes flush", bw.Flush())
}
