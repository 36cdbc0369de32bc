package sinkfill

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"

	errs "github.com/hurstaa/landlab/pkg/errors"
	"github.com/hurstaa/landlab/pkg/flow"
	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/lake"
	"github.com/hurstaa/landlab/pkg/observability"
)

const (
	// FieldFillDepth holds final minus original elevation after a fill.
	FieldFillDepth = "sediment_fill__depth"

	// ParamElevationField names the elevation field to use when the grid
	// has no flow.FieldElevation.
	ParamElevationField = "ELEVATION_FIELD_NAME"
)

// Mesh is the grid capability set a Filler needs. [*grid.Raster]
// implements it.
type Mesh interface {
	lake.Grid
	grid.FieldStore
	XY(node int) (x, y float64)
	DistancesToPoint(x, y float64, nodes []int) []float64
	NeighborList(nodes []int) []int
	DiagonalList(nodes []int) []int
	Ints(name string) ([]int, error)
}

// Params is a key-value parameter source. *viper.Viper satisfies it.
type Params interface {
	IsSet(key string) bool
	GetString(key string) string
}

// Filler fills depressions on a mesh.
type Filler struct {
	mesh      Mesh
	elevField string
	params    Params
	router    *flow.Router
	finder    *lake.Finder
	logger    *log.Logger
	hooks     observability.FillHooks
}

// Option configures a Filler.
type Option func(*Filler)

// WithParams sets the parameter source consulted for ParamElevationField.
func WithParams(p Params) Option {
	return func(f *Filler) { f.params = p }
}

// WithLogger sets the logger used by the filler and its collaborators.
func WithLogger(l *log.Logger) Option {
	return func(f *Filler) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithHooks overrides the globally registered fill hooks.
func WithHooks(h observability.FillHooks) Option {
	return func(f *Filler) {
		if h != nil {
			f.hooks = h
		}
	}
}

// New creates a filler over m. The elevation field is resolved once:
// flow.FieldElevation when present, otherwise the field named by
// ParamElevationField. If neither resolves, New fails without touching m.
// On success FieldFillDepth is created if absent.
func New(m Mesh, opts ...Option) (*Filler, error) {
	f := &Filler{
		mesh:   m,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		hooks:  observability.Fill(),
	}
	for _, opt := range opts {
		opt(f)
	}

	name, err := f.resolveElevation()
	if err != nil {
		return nil, err
	}
	f.elevField = name
	f.router = flow.New(m, flow.WithElevationField(name), flow.WithLogger(f.logger))
	f.finder = lake.New(m,
		lake.WithElevationField(name),
		lake.WithRouter(f.router),
		lake.WithLogger(f.logger))

	if _, err := m.EnsureFloats(FieldFillDepth); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Filler) resolveElevation() (string, error) {
	if f.mesh.HasField(flow.FieldElevation) {
		return flow.FieldElevation, nil
	}
	if f.params == nil || !f.params.IsSet(ParamElevationField) {
		return "", errs.New(errs.ErrCodeInvalidConfig,
			"grid has no %q field and %s is not set", flow.FieldElevation, ParamElevationField)
	}
	name := f.params.GetString(ParamElevationField)
	if err := errs.ValidateFieldName(name); err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid %s", ParamElevationField)
	}
	if !f.mesh.HasField(name) {
		return "", errs.New(errs.ErrCodeFieldNotFound, "grid has no elevation field %q", name)
	}
	return name, nil
}

// ElevationField returns the name of the field being filled.
func (f *Filler) ElevationField() string { return f.elevField }

// Finder returns the depression finder, holding the lakes of the last
// mapping.
func (f *Filler) Finder() *lake.Finder { return f.finder }

// scratchFields lists every field a fill may write besides FieldFillDepth.
func (f *Filler) scratchFields() []string {
	names := slices.Concat(f.router.OutputFields(), f.finder.OutputFields())
	return append(names, f.elevField)
}

// FillPits fills every depression and, for a positive slope, tilts the
// filled lakes toward their outlets. FieldFillDepth receives final minus
// original elevation. On error the elevation field is unchanged.
func (f *Filler) FillPits(slope Slope) (err error) {
	s := float64(slope)
	if err := errs.ValidateSlope(s); err != nil {
		return err
	}
	if !f.mesh.HasField(f.elevField) {
		return errs.New(errs.ErrCodeFieldNotFound, "grid has no elevation field %q", f.elevField)
	}
	z, err := f.mesh.Floats(f.elevField)
	if err != nil {
		return err
	}

	start := time.Now()
	filled := 0
	f.hooks.OnFillStart(len(z), s)
	defer func() { f.hooks.OnFillComplete(filled, time.Since(start), err) }()

	ws, err := grid.Acquire(f.mesh, f.scratchFields()...)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := ws.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("release scratch fields: %w", rerr)
		}
	}()

	original := slices.Clone(z)
	if err := f.flatFill(z); err != nil {
		return err
	}
	if s > 0 {
		if err := f.applySlope(z, original, s); err != nil {
			return err
		}
	}

	depth, err := f.mesh.EnsureFloats(FieldFillDepth)
	if err != nil {
		return err
	}
	floats.SubTo(depth, z, original)
	for i, d := range depth {
		switch {
		case d < 0:
			depth[i] = 0
		case d > 0:
			filled++
		}
	}
	ws.Commit(f.elevField)
	f.logger.Debug("filled depressions", "field", f.elevField, "nodes", filled, "slope", s)
	return nil
}

// flatFill routes flow, maps the depressions behind its sinks and raises
// them to their spill elevation.
func (f *Filler) flatFill(z []float64) error {
	if err := f.router.RouteFlow(); err != nil {
		return err
	}
	flags, err := f.mesh.Ints(flow.FieldSinkFlag)
	if err != nil {
		return err
	}
	sinks := flow.Sinks(flags)
	if sinks == nil {
		sinks = []int{}
	}
	if err := f.finder.MapDepressions(sinks, false); err != nil {
		return err
	}
	lakes := drainingLakes(f.finder.Lakes())
	raise(z, lakes)

	f.hooks.OnLakesMapped(0, len(lakes))
	f.logger.Debug("mapped sinks", "sinks", len(sinks), "lakes", len(lakes))
	return nil
}

// raise lifts every member of lakes to its lake's spill elevation.
func raise(z []float64, lakes []lake.Lake) {
	for _, lk := range lakes {
		for _, node := range lk.Nodes {
			z[node] = max(z[node], lk.Spill)
		}
	}
}

// drainingLakes drops lakes without an outlet.
func drainingLakes(lakes []lake.Lake) []lake.Lake {
	return slices.DeleteFunc(lakes, func(lk lake.Lake) bool { return lk.Outlet == grid.BadIndex })
}
