// Package metadata collects a summary of a Cooler or .hic container's
// structure — its chromosomes, resolutions, cells, normalizations, and
// per-resolution pixel counts — and renders it in the CLI's supported
// output formats.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/hictk-go/hictk/cooler"
	"github.com/hictk-go/hictk/genome"
	"github.com/hictk-go/hictk/hic"
	"github.com/hictk-go/hictk/hictkerr"
)

// Format names an output serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Resolution summarizes one resolution (or .scool cell) of a container.
type Resolution struct {
	Resolution     int64    `json:"resolution,omitempty" toml:"resolution,omitempty" yaml:"resolution,omitempty"`
	Cell           string   `json:"cell,omitempty" toml:"cell,omitempty" yaml:"cell,omitempty"`
	NumBins        int64    `json:"num_bins" toml:"num_bins" yaml:"num_bins"`
	NNZ            int64    `json:"nnz" toml:"nnz" yaml:"nnz"`
	Normalizations []string `json:"normalizations,omitempty" toml:"normalizations,omitempty" yaml:"normalizations,omitempty"`
}

// Chromosome mirrors genome.Chromosome for serialization.
type Chromosome struct {
	Name   string `json:"name" toml:"name" yaml:"name"`
	Length int64  `json:"length" toml:"length" yaml:"length"`
}

// Metadata is the full report returned for a container, per the `metadata`
// sub-command's §6 surface.
type Metadata struct {
	Path        string       `json:"path" toml:"path" yaml:"path"`
	Format      string       `json:"format" toml:"format" yaml:"format"`
	GenomeID    string       `json:"genome_id,omitempty" toml:"genome_id,omitempty" yaml:"genome_id,omitempty"`
	Chromosomes []Chromosome `json:"chromosomes" toml:"chromosomes" yaml:"chromosomes"`
	Resolutions []Resolution `json:"resolutions" toml:"resolutions" yaml:"resolutions"`
	Attributes  map[string]string `json:"attributes,omitempty" toml:"attributes,omitempty" yaml:"attributes,omitempty"`
}

func chromsOf(ref *genome.Reference) []Chromosome {
	out := make([]Chromosome, ref.Len())
	for i, c := range ref.All() {
		out[i] = Chromosome{Name: c.Name, Length: c.Length}
	}
	return out
}

// Collect opens path (a .cool/.mcool/.scool or .hic container) and builds
// its Metadata report without materializing any pixel data.
func Collect(path string) (*Metadata, error) {
	if hic.Sniff(path) {
		return collectHic(path)
	}
	return collectCooler(path)
}

func collectCooler(path string) (*Metadata, error) {
	f, err := cooler.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &Metadata{Path: path}
	switch f.Kind() {
	case cooler.KindCool:
		m.Format = "cool"
	case cooler.KindMcool:
		m.Format = "mcool"
	case cooler.KindScool:
		m.Format = "scool"
	}

	if f.Kind() == cooler.KindScool {
		for _, cell := range f.Cells() {
			r, err := resolutionSummary(f, 0, cell)
			if err != nil {
				return nil, err
			}
			m.Resolutions = append(m.Resolutions, r)
		}
		ref, err := f.Reference(0, f.Cells()[0])
		if err == nil {
			m.Chromosomes = chromsOf(ref)
		}
		return m, nil
	}

	resolutions := f.Resolutions()
	if len(resolutions) == 0 {
		resolutions = []int64{0}
	}
	for _, res := range resolutions {
		r, err := resolutionSummary(f, res, "")
		if err != nil {
			return nil, err
		}
		m.Resolutions = append(m.Resolutions, r)
	}
	ref, err := f.Reference(resolutions[0], "")
	if err != nil {
		return nil, err
	}
	m.Chromosomes = chromsOf(ref)
	return m, nil
}

func resolutionSummary(f *cooler.File, resolution int64, cell string) (Resolution, error) {
	bins, err := f.Bins(resolution, cell)
	if err != nil {
		return Resolution{}, err
	}
	nnz, err := f.PixelCount(resolution, cell)
	if err != nil {
		return Resolution{}, err
	}
	weights, err := f.WeightNames(resolution, cell)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		Resolution: resolution, Cell: cell,
		NumBins: bins.NumBins(), NNZ: nnz, Normalizations: weights,
	}, nil
}

func collectHic(path string) (*Metadata, error) {
	f, err := hic.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := f.Header()
	m := &Metadata{
		Path: path, Format: fmt.Sprintf("hic%d", h.Version),
		GenomeID: h.GenomeID, Attributes: h.Attributes,
		Chromosomes: chromsOf(h.Reference),
	}
	for _, res := range h.BPResolutions {
		bins, err := f.Bins(res)
		if err != nil {
			return nil, err
		}
		m.Resolutions = append(m.Resolutions, Resolution{Resolution: res, NumBins: bins.NumBins()})
	}
	return m, nil
}

// Render serializes m in the requested format.
func Render(m *Metadata, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		out, err := json.MarshalIndent(m, "", "  ")
		return out, hictkerr.Wrap("marshal json metadata", err)
	case FormatYAML:
		out, err := yaml.Marshal(m)
		return out, hictkerr.Wrap("marshal yaml metadata", err)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, hictkerr.Wrap("marshal toml metadata", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", hictkerr.ErrBadFileFormat, format)
	}
}
