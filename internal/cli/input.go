package cli

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hurstaa/landlab/pkg/cache"
	errs "github.com/hurstaa/landlab/pkg/errors"
	"github.com/hurstaa/landlab/pkg/flow"
	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/io"
	"github.com/hurstaa/landlab/pkg/lake"
)

// input is a loaded elevation grid.
type input struct {
	grid  *grid.Raster
	field string
	hash  string
}

// loadInput reads an ESRI ASCII (.asc) or TOML (.toml) grid, storing the
// elevations in field. A TOML file that names its own field keeps it.
func loadInput(path, field string) (*input, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	if field == "" {
		field = flow.FieldElevation
	}

	var (
		g   *grid.Raster
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".asc", ".txt":
		g, _, err = io.ImportASCII(path, field)
	case ".toml":
		var spec io.GridSpec
		if spec, err = io.ImportGridSpec(path); err != nil {
			return nil, err
		}
		if spec.Field == "" {
			spec.Field = field
		}
		field = spec.Field
		g, err = spec.Build()
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported grid format %q (want .asc or .toml)", ext)
	}
	if err != nil {
		return nil, err
	}

	z, err := g.Floats(field)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFieldNotFound, err, "read %s", path)
	}
	rows, cols := g.Shape()
	status := make([]int, g.NodeCount())
	for node := range status {
		status[node] = int(g.Status(node))
	}
	return &input{
		grid:  g,
		field: field,
		hash:  cache.HashSurface(rows, cols, g.Spacing(), status, z),
	}, nil
}

// mapDepressions maps the depressions of the input surface. Elevations are
// left untouched; the finder's output fields are written to the grid.
func mapDepressions(in *input, logger *log.Logger) ([]int, []io.LakeReport, error) {
	z, err := in.grid.Floats(in.field)
	if err != nil {
		return nil, nil, err
	}
	f := lake.New(in.grid, lake.WithElevationField(in.field), lake.WithLogger(logger))
	if err := f.MapDepressions(nil, false); err != nil {
		return nil, nil, err
	}
	return f.Pits(), io.LakeReports(in.grid, z, f.Lakes()), nil
}
