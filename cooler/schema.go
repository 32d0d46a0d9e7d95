package cooler

// Dataset path constants, following §4.3's table exactly. All paths are
// relative to the resolved Group (root for .cool, "resolutions/<R>" for
// .mcool, "cells/<name>" for .scool).
const (
	dsChromName   = "chroms/name"
	dsChromLength = "chroms/length"

	dsBinChrom = "bins/chrom"
	dsBinStart = "bins/start"
	dsBinEnd   = "bins/end"

	dsPixelBin1  = "pixels/bin1_id"
	dsPixelBin2  = "pixels/bin2_id"
	dsPixelCount = "pixels/count"

	dsIndexBin1Offset  = "indexes/bin1_offset"
	dsIndexChromOffset = "indexes/chrom_offset"

	attrBinSize        = "bin-size"
	attrCountDtype     = "count-dtype"
	attrWeightConv     = "convention" // "divisive" | "multiplicative"
	countDtypeInt32    = "int32"
	countDtypeFloat64  = "float64"
)

func weightDataset(name string) string { return "bins/" + name }
