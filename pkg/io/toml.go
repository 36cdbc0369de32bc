package io

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	errs "github.com/hurstaa/landlab/pkg/errors"
	"github.com/hurstaa/landlab/pkg/flow"
	"github.com/hurstaa/landlab/pkg/grid"
)

// GridSpec is a hand-written grid description.
type GridSpec struct {
	Rows      int         `toml:"rows"`
	Cols      int         `toml:"cols"`
	Spacing   float64     `toml:"spacing"`
	Origin    [2]float64  `toml:"origin"`
	Field     string      `toml:"field"`
	Closed    []int       `toml:"closed"`
	Elevation [][]float64 `toml:"elevation"`
}

// Build creates the grid the spec describes.
func (s GridSpec) Build() (*grid.Raster, error) {
	if err := errs.ValidateGridShape(s.Rows, s.Cols, s.Spacing); err != nil {
		return nil, err
	}
	field := s.Field
	if field == "" {
		field = flow.FieldElevation
	}
	if err := errs.ValidateFieldName(field); err != nil {
		return nil, err
	}
	if len(s.Elevation) != s.Rows {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "elevation has %d rows, want %d", len(s.Elevation), s.Rows)
	}

	g, err := grid.NewRaster(s.Rows, s.Cols, s.Spacing, grid.WithOrigin(s.Origin[0], s.Origin[1]))
	if err != nil {
		return nil, err
	}
	z := make([]float64, 0, s.Rows*s.Cols)
	for i := s.Rows - 1; i >= 0; i-- {
		if len(s.Elevation[i]) != s.Cols {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "elevation row %d has %d values, want %d", i, len(s.Elevation[i]), s.Cols)
		}
		z = append(z, s.Elevation[i]...)
	}
	if err := g.AddFloats(field, z); err != nil {
		return nil, err
	}
	for _, node := range s.Closed {
		if err := g.SetStatus(node, grid.Closed); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "closed node %d", node)
		}
	}
	return g, nil
}

// DecodeGridSpec decodes a [GridSpec] from r without building it.
func DecodeGridSpec(r io.Reader) (GridSpec, error) {
	var spec GridSpec
	if _, err := toml.NewDecoder(r).Decode(&spec); err != nil {
		return spec, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode grid description")
	}
	return spec, nil
}

// ReadTOML decodes a [GridSpec] from r and builds its grid. ReadTOML does
// not close r.
func ReadTOML(r io.Reader) (*grid.Raster, GridSpec, error) {
	spec, err := DecodeGridSpec(r)
	if err != nil {
		return nil, spec, err
	}
	g, err := spec.Build()
	return g, spec, err
}

// ImportGridSpec decodes the grid description at path.
func ImportGridSpec(path string) (GridSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GridSpec{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return GridSpec{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeGridSpec(f)
}

// ImportTOML reads and builds the grid description at path. See [ReadTOML].
func ImportTOML(path string) (*grid.Raster, GridSpec, error) {
	spec, err := ImportGridSpec(path)
	if err != nil {
		return nil, spec, err
	}
	g, err := spec.Build()
	return g, spec, err
}
