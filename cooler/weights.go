package cooler

import (
	"fmt"

	"github.com/hictk-go/hictk/hictkerr"
)

// Weights reads a named bin-level weight vector ("weight", "VC", "VC_SQRT",
// "ICE", ...) along with its convention attribute ("divisive" or
// "multiplicative", per §4.7's normalization contract).
func (f *File) Weights(resolution int64, cell, name string) (values []float64, convention string, err error) {
	g, err := f.group(resolution, cell)
	if err != nil {
		return nil, "", err
	}
	ds := g.dataset(weightDataset(name))
	n, ok := f.c.Length(ds)
	if !ok {
		return nil, "", fmt.Errorf("%w: weight column %q not present", hictkerr.ErrUnknownNormalization, name)
	}
	values, err = f.c.readFloat64Range(ds, 0, n)
	if err != nil {
		return nil, "", err
	}
	convention, _ = f.c.Attr(ds, attrWeightConv)
	if convention == "" {
		convention = "divisive"
	}
	return values, convention, nil
}

// writeWeights appends a bin-level weight column to an in-progress
// container at the given fully-qualified dataset path, tagging it with
// its normalization convention.
func (b *builder) writeWeights(ds string, values []float64, convention string, comp Compression) error {
	e := b.newDataset(ds, dtypeFloat64, int64(len(values)), comp)
	e.Attrs[attrWeightConv] = convention
	return b.appendChunk(e, encodeFloat64s(values), int64(len(values)))
}
