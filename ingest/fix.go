package ingest

import (
	"os"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/hictkerr"
)

// FixMcool rebuilds inPath's bin1_offset/chrom_offset indexes from its
// (otherwise intact) pixel stream, writing the repaired container to
// outPath. It reuses the same copy-through pipeline as
// RenameChromosomes — every Writer.Finalize call already rebuilds these
// indexes from scratch as it streams the source's pixels back out, so a
// corrupted index never survives the copy (S6 in §8 is its acceptance
// scenario).
func FixMcool(inPath, outPath string) error {
	src, err := cooler.Open(inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return hictkerr.Wrap("create output", err)
	}
	defer out.Close()

	return copyWithRename(src, out, nil)
}
