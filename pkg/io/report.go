package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/lake"
)

// Report summarises a finished fill.
type Report struct {
	Field    string       `json:"field"`
	Slope    float64      `json:"slope"`
	Nodes    int          `json:"nodes"`
	Filled   int          `json:"filled"`
	MaxDepth float64      `json:"max_depth"`
	Volume   float64      `json:"volume"`
	Lakes    []LakeReport `json:"lakes,omitempty"`
}

// LakeReport describes one mapped depression.
type LakeReport struct {
	Code   int     `json:"code"`
	Outlet int     `json:"outlet"`
	Spill  float64 `json:"spill"`
	Nodes  int     `json:"nodes"`
	Volume float64 `json:"volume"`
}

// LakeReports describes lakes mapped on the surface z. A lake's volume is
// the water it holds at its spill elevation.
func LakeReports(g *grid.Raster, z []float64, lakes []lake.Lake) []LakeReport {
	out := make([]LakeReport, 0, len(lakes))
	for _, lk := range lakes {
		r := LakeReport{Code: lk.Code, Outlet: lk.Outlet, Spill: lk.Spill, Nodes: lk.Nodes.Len()}
		for _, node := range lk.Nodes {
			if d := lk.Spill - z[node]; d > 0 {
				r.Volume += d * g.CellArea(node)
			}
		}
		out = append(out, r)
	}
	return out
}

// NewReport builds a report from the fill depths in depth. Volume sums
// depth times cell area, so perimeter nodes do not count.
func NewReport(g *grid.Raster, field string, slope float64, depth []float64, lakes []LakeReport) Report {
	r := Report{Field: field, Slope: slope, Nodes: len(depth)}
	if len(depth) > 0 {
		r.MaxDepth = floats.Max(depth)
	}
	area := make([]float64, len(depth))
	for node, d := range depth {
		if d > 0 {
			r.Filled++
		}
		area[node] = g.CellArea(node)
	}
	r.Volume = floats.Dot(depth, area)
	r.Lakes = lakes
	return r
}

// WriteJSON encodes a report as indented JSON and writes it to w.
func WriteJSON(r Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a report to a JSON file at path.
func ExportJSON(r Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(r, f)
}

// ReadJSON decodes a report from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return rep, fmt.Errorf("decode: %w", err)
	}
	return rep, nil
}

// ImportJSON reads the report at path.
func ImportJSON(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
