package sinkfill

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	errs "github.com/hurstaa/landlab/pkg/errors"
	"github.com/hurstaa/landlab/pkg/flow"
	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/lake"
	"github.com/hurstaa/landlab/pkg/nodeset"
	"github.com/hurstaa/landlab/pkg/observability"
)

// surface builds a raster at elevation base with the given overrides.
func surface(t *testing.T, rows, cols int, spacing, base float64, z map[int]float64) *grid.Raster {
	t.Helper()
	g, err := grid.NewRaster(rows, cols, spacing)
	if err != nil {
		t.Fatal(err)
	}
	elev, _ := g.AddZeros(flow.FieldElevation)
	for i := range elev {
		elev[i] = base
	}
	for node, v := range z {
		elev[node] = v
	}
	return g
}

// centralPit is the 5x5 surface at 10 with the center node at 9.
func centralPit(t *testing.T, spacing float64) *grid.Raster {
	return surface(t, 5, 5, spacing, 10, map[int]float64{12: 9})
}

// ridgeBasins is a 5x9 surface with two basins at 40 and 45 around pits at
// 10 (node 20) and 20 (node 24). They meet at a ridge node (22) at 50. The
// second basin spills through boundary node 6, also at 50.
func ridgeBasins(t *testing.T) *grid.Raster {
	z := map[int]float64{13: 100, 22: 50, 31: 100, 6: 50}
	for _, n := range []int{10, 11, 12, 19, 21, 28, 29, 30} {
		z[n] = 40
	}
	for _, n := range []int{14, 15, 16, 23, 25, 32, 33, 34} {
		z[n] = 45
	}
	z[20], z[24] = 10, 20
	return surface(t, 5, 9, 1, 100, z)
}

// fromRows builds a raster from rows of elevations, row 0 first.
func fromRows(t *testing.T, rows [][]float64) *grid.Raster {
	t.Helper()
	g, err := grid.NewRaster(len(rows), len(rows[0]), 1)
	if err != nil {
		t.Fatal(err)
	}
	elev, _ := g.AddZeros(flow.FieldElevation)
	for r, row := range rows {
		copy(elev[r*len(row):], row)
	}
	return g
}

// scattered is a rows x cols surface with a zero boundary and interior
// elevations in half-unit steps between 0.5 and 4.5, mixed from seed.
func scattered(t *testing.T, rows, cols int, seed uint32) *grid.Raster {
	t.Helper()
	g, err := grid.NewRaster(rows, cols, 1)
	if err != nil {
		t.Fatal(err)
	}
	elev, _ := g.AddZeros(flow.FieldElevation)
	for _, node := range g.CoreNodes() {
		h := uint32(node)*2654435761 + seed*40503
		elev[node] = 0.5 * float64(1+(h>>16)%9)
	}
	return g
}

// assertDrains checks that a filled surface has no sinks, no negative fill
// and unchanged drainage around every filled node.
func assertDrains(t *testing.T, g *grid.Raster, original []float64) {
	t.Helper()
	z, _ := g.Floats(flow.FieldElevation)
	depth, _ := g.Floats(FieldFillDepth)

	var filled []int
	for node := range z {
		if z[node] < original[node] {
			t.Errorf("z[%d] = %g below original %g", node, z[node], original[node])
		}
		if depth[node] < 0 {
			t.Errorf("depth[%d] = %g, want >= 0", node, depth[node])
		}
		if z[node] > original[node] {
			filled = append(filled, node)
		}
	}
	margin, _ := Margins(g, nodeset.Of(filled...))
	if DrainageChanges(g, margin, original, z) {
		t.Error("drainage changed around the filled nodes")
	}

	if err := flow.New(g).RouteFlow(); err != nil {
		t.Fatal(err)
	}
	flags, _ := g.Ints(flow.FieldSinkFlag)
	if sinks := flow.Sinks(flags); len(sinks) != 0 {
		t.Errorf("sinks left after fill: %v", sinks)
	}
}

type perturbation struct {
	code     int
	nested   bool
	attempts int
}

type recorder struct {
	mapped        [][2]int
	perturbed     []perturbation
	rejects       int
	instabilities int
	unstable      []float64
	completed     int
}

func (r *recorder) OnFillStart(int, float64)      {}
func (r *recorder) OnLakesMapped(pass, lakes int) { r.mapped = append(r.mapped, [2]int{pass, lakes}) }
func (r *recorder) OnLocalReject(int, int)        { r.rejects++ }

func (r *recorder) OnInstability(_ int, slope float64) {
	r.instabilities++
	r.unstable = append(r.unstable, slope)
}

func (r *recorder) OnFillComplete(int, time.Duration, error) { r.completed++ }

func (r *recorder) OnLakePerturbed(code int, nested bool, attempts int, _ float64) {
	r.perturbed = append(r.perturbed, perturbation{code, nested, attempts})
}

var _ observability.FillHooks = (*recorder)(nil)

type mapParams map[string]string

func (p mapParams) IsSet(key string) bool       { _, ok := p[key]; return ok }
func (p mapParams) GetString(key string) string { return p[key] }

func mustFiller(t *testing.T, g *grid.Raster, opts ...Option) *Filler {
	t.Helper()
	f, err := New(g, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestFlatFillCentralPit(t *testing.T) {
	g := centralPit(t, 1)
	if err := mustFiller(t, g).FillPits(Flat); err != nil {
		t.Fatal(err)
	}
	z, _ := g.Floats(flow.FieldElevation)
	depth, _ := g.Floats(FieldFillDepth)
	for node := range z {
		if z[node] != 10 {
			t.Errorf("z[%d] = %g, want 10", node, z[node])
		}
		want := 0.0
		if node == 12 {
			want = 1
		}
		if depth[node] != want {
			t.Errorf("depth[%d] = %g, want %g", node, depth[node], want)
		}
	}
}

func TestSlopeIsDistanceToOutlet(t *testing.T) {
	g := centralPit(t, 1)
	original, _ := g.CloneField(flow.FieldElevation)
	if err := mustFiller(t, g).FillPits(DefaultGradient); err != nil {
		t.Fatal(err)
	}
	depth, _ := g.Floats(FieldFillDepth)

	// The lake {6, 12} spills through corner node 0.
	want := map[int]float64{
		6:  DefaultSlope * math.Sqrt2,
		12: 1 + DefaultSlope*2*math.Sqrt2,
	}
	for node, d := range depth {
		if math.Abs(d-want[node]) > 1e-12 {
			t.Errorf("depth[%d] = %g, want %g", node, d, want[node])
		}
	}

	z, _ := g.Floats(flow.FieldElevation)
	margin, _ := Margins(g, nodeset.Of(6, 12))
	if DrainageChanges(g, margin, original.Floats, z) {
		t.Error("drainage changed at the lake margin")
	}
}

func TestRidgeCreatesNestedLake(t *testing.T) {
	g := ridgeBasins(t)
	original, _ := g.CloneField(flow.FieldElevation)
	rec := &recorder{}
	if err := mustFiller(t, g, WithHooks(rec)).FillPits(DefaultGradient); err != nil {
		t.Fatal(err)
	}

	if len(rec.mapped) == 0 || rec.mapped[0] != [2]int{0, 2} {
		t.Fatalf("first mapping = %v, want two lakes", rec.mapped)
	}
	nested := 0
	for _, p := range rec.perturbed {
		if p.attempts != 1 {
			t.Errorf("lake %d needed %d attempts", p.code, p.attempts)
		}
		if p.nested {
			nested++
		}
	}
	if nested == 0 {
		t.Errorf("perturbations = %+v, want a nested lake", rec.perturbed)
	}
	if rec.rejects != 0 || rec.instabilities != 0 {
		t.Errorf("rejects = %d, instabilities = %d, want 0", rec.rejects, rec.instabilities)
	}

	depth, _ := g.Floats(FieldFillDepth)
	if depth[22] <= 0 {
		t.Errorf("ridge depth = %g, want > 0", depth[22])
	}
	assertDrains(t, g, original.Floats)
}

func TestSlopedFillDrainsEverywhere(t *testing.T) {
	for seed := uint32(1); seed <= 12; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			g := scattered(t, 7, 9, seed)
			original, _ := g.CloneField(flow.FieldElevation)
			rec := &recorder{}
			if err := mustFiller(t, g, WithHooks(rec)).FillPits(DefaultGradient); err != nil {
				t.Fatal(err)
			}
			if rec.instabilities != 0 {
				t.Errorf("instabilities = %d, want 0", rec.instabilities)
			}
			assertDrains(t, g, original.Floats)
		})
	}
}

func TestRefilledLakeIsTiltedAgain(t *testing.T) {
	// The lake {20, 22, 30, 32, 39, 41} drains through node 11. Its tilt
	// leaves node 22 no higher than node 30, so 22 is refilled as a nested
	// lake although it was tilted already.
	g := scattered(t, 7, 9, 9)
	rec := &recorder{}
	if err := mustFiller(t, g, WithHooks(rec)).FillPits(DefaultGradient); err != nil {
		t.Fatal(err)
	}
	refilled := slices.ContainsFunc(rec.perturbed, func(p perturbation) bool { return p.code == 22 && p.nested })
	if !refilled {
		t.Errorf("perturbations = %+v, want nested lake 22", rec.perturbed)
	}
	z, _ := g.Floats(flow.FieldElevation)
	if z[22] <= z[30] {
		t.Errorf("z[22] = %v, want above z[30] = %v", z[22], z[30])
	}
	f := lake.New(g)
	if err := f.MapDepressions(nil, false); err != nil {
		t.Fatal(err)
	}
	if codes := f.Codes(); len(codes) != 0 {
		t.Errorf("lakes left after fill: %v", codes)
	}
}

// restartSurface has a basin at node 23 whose tilt strands node 31 level
// with node 37. Node 31 is refilled and tilted as a nested lake, which skips
// the check at its own margin. At the default gradient that tilt lifts 31
// beyond tolerance above 37, and only the check over all flooded nodes
// against the original surface catches it.
var restartSurface = [][]float64{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 4.5, 3, 1, 3, 1, 0},
	{0, 4, 1, 4, 2, 4, 0},
	{0, 2, 0.5, 2, 4.5, 3, 0},
	{0, 4.5, 3, 1, 3, 1, 0},
	{0, 4, 1, 4, 2, 4, 0},
	{0, 0, 0, 0, 0, 0, 0},
}

func TestGlobalCheckRestartsFromOriginal(t *testing.T) {
	g := fromRows(t, restartSurface)
	original, _ := g.CloneField(flow.FieldElevation)
	rec := &recorder{}
	if err := mustFiller(t, g, WithHooks(rec)).FillPits(DefaultGradient); err != nil {
		t.Fatalf("FillPits: %v", err)
	}
	if !slices.Equal(rec.unstable, []float64{DefaultSlope}) {
		t.Fatalf("unstable slopes = %v, want [%g]", rec.unstable, DefaultSlope)
	}
	nested := slices.ContainsFunc(rec.perturbed, func(p perturbation) bool { return p.code == 31 && p.nested })
	if !nested {
		t.Errorf("perturbations = %+v, want nested lake 31", rec.perturbed)
	}
	assertDrains(t, g, original.Floats)

	// The second attempt starts over from the original surface, so it
	// matches a fresh fill at the reduced gradient.
	want := fromRows(t, restartSurface)
	base := DefaultSlope
	if err := mustFiller(t, want).FillPits(Gradient(base * BackoffFactor)); err != nil {
		t.Fatal(err)
	}
	got, _ := g.Floats(flow.FieldElevation)
	wantZ, _ := want.Floats(flow.FieldElevation)
	if !slices.Equal(got, wantZ) {
		t.Errorf("elevation = %v, want %v", got, wantZ)
	}
}

func TestRidgeLakesDetected(t *testing.T) {
	g := ridgeBasins(t)
	f := lake.New(g)
	if err := f.MapDepressions(nil, false); err != nil {
		t.Fatal(err)
	}
	if got := f.Codes(); !slices.Equal(got, []int{20, 24}) {
		t.Errorf("Codes = %v, want [20 24]", got)
	}
	if got := f.Outlets(); !slices.Equal(got, []int{22, 6}) {
		t.Errorf("Outlets = %v, want [22 6]", got)
	}
}

func TestMissingElevation(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		code   errs.Code
	}{
		{"no params", nil, errs.ErrCodeInvalidConfig},
		{"key not set", mapParams{}, errs.ErrCodeInvalidConfig},
		{"named field missing", mapParams{ParamElevationField: "Elevation"}, errs.ErrCodeFieldNotFound},
		{"bad field name", mapParams{ParamElevationField: ""}, errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := grid.NewRaster(3, 3, 1)
			_, err := New(g, WithParams(tt.params))
			if !errs.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if names := g.FieldNames(); len(names) != 0 {
				t.Errorf("fields = %v, want none", names)
			}
		})
	}
}

func TestAlternateElevationField(t *testing.T) {
	g, _ := grid.NewRaster(5, 5, 1)
	z, _ := g.AddZeros("Elevation")
	for i := range z {
		z[i] = 10
	}
	z[12] = 9

	f := mustFiller(t, g, WithParams(mapParams{ParamElevationField: "Elevation"}))
	if f.ElevationField() != "Elevation" {
		t.Fatalf("ElevationField = %q", f.ElevationField())
	}
	if err := f.FillPits(Flat); err != nil {
		t.Fatal(err)
	}
	if z[12] != 10 {
		t.Errorf("z[12] = %g, want 10", z[12])
	}
	if g.HasField(flow.FieldElevation) {
		t.Error("canonical elevation field should not be created")
	}
}

func TestConvergenceFailure(t *testing.T) {
	// Distances are so large that no tried gradient stays within tolerance.
	g := centralPit(t, 1e30)
	rec := &recorder{}
	err := mustFiller(t, g, WithHooks(rec)).FillPits(DefaultGradient)

	var ce *ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConvergenceError", err)
	}
	if ce.Attempts != MaxRestarts {
		t.Errorf("Attempts = %d, want %d", ce.Attempts, MaxRestarts)
	}
	if !errs.Is(err, errs.ErrCodeConvergence) {
		t.Errorf("code = %q, want %q", errs.GetCode(err), errs.ErrCodeConvergence)
	}
	if rec.instabilities != MaxRestarts {
		t.Errorf("instabilities = %d, want %d", rec.instabilities, MaxRestarts)
	}
	if rec.completed != 1 {
		t.Errorf("completed = %d, want 1", rec.completed)
	}

	z, _ := g.Floats(flow.FieldElevation)
	if z[12] != 9 || z[6] != 10 {
		t.Errorf("elevation not restored: z[12] = %g, z[6] = %g", z[12], z[6])
	}
	depth, _ := g.Floats(FieldFillDepth)
	if slices.ContainsFunc(depth, func(d float64) bool { return d != 0 }) {
		t.Errorf("fill depth written on failure: %v", depth)
	}
	for _, name := range []string{lake.FieldDepth, flow.FieldReceiver} {
		if g.HasField(name) {
			t.Errorf("scratch field %q left behind", name)
		}
	}
}

func TestIdempotentFlatFill(t *testing.T) {
	g := ridgeBasins(t)
	f := mustFiller(t, g)
	if err := f.FillPits(Flat); err != nil {
		t.Fatal(err)
	}
	if err := f.FillPits(Flat); err != nil {
		t.Fatal(err)
	}
	depth, _ := g.Floats(FieldFillDepth)
	for node, d := range depth {
		if d != 0 {
			t.Errorf("second fill depth[%d] = %g, want 0", node, d)
		}
	}
}

func TestFlatLakesAreLevel(t *testing.T) {
	g := ridgeBasins(t)
	if err := mustFiller(t, g).FillPits(Flat); err != nil {
		t.Fatal(err)
	}
	z, _ := g.Floats(flow.FieldElevation)
	for _, n := range []int{10, 11, 12, 19, 20, 21, 28, 29, 30, 14, 15, 16, 23, 24, 25, 32, 33, 34} {
		if z[n] != 50 {
			t.Errorf("z[%d] = %g, want spill elevation 50", n, z[n])
		}
	}
}

func TestFillRestoresCollaboratorFields(t *testing.T) {
	g := centralPit(t, 1)
	recv := make([]int, g.NodeCount())
	for i := range recv {
		recv[i] = 7
	}
	if err := g.AddInts(flow.FieldReceiver, recv); err != nil {
		t.Fatal(err)
	}

	if err := mustFiller(t, g).FillPits(DefaultGradient); err != nil {
		t.Fatal(err)
	}
	got, _ := g.Ints(flow.FieldReceiver)
	if slices.ContainsFunc(got, func(r int) bool { return r != 7 }) {
		t.Errorf("receiver field = %v, want restored", got)
	}
	for _, name := range []string{flow.FieldSinkFlag, lake.FieldDepth, lake.FieldLakeMap, lake.FieldFloodStatus} {
		if g.HasField(name) {
			t.Errorf("scratch field %q left behind", name)
		}
	}
}

func TestNegativeSlope(t *testing.T) {
	g := centralPit(t, 1)
	err := mustFiller(t, g).FillPits(Gradient(-1e-5))
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
	z, _ := g.Floats(flow.FieldElevation)
	if z[12] != 9 {
		t.Errorf("z[12] = %g, want unchanged 9", z[12])
	}
}

func TestZeroGradientIsFlat(t *testing.T) {
	g := centralPit(t, 1)
	rec := &recorder{}
	if err := mustFiller(t, g, WithHooks(rec)).FillPits(Gradient(0)); err != nil {
		t.Fatal(err)
	}
	if len(rec.perturbed) != 0 {
		t.Errorf("perturbations = %+v, want none", rec.perturbed)
	}
}

func TestParseSlope(t *testing.T) {
	tests := []struct {
		in      string
		want    Slope
		wantErr bool
	}{
		{"", Flat, false},
		{"false", Flat, false},
		{"TRUE", DefaultGradient, false},
		{"2e-6", Gradient(2e-6), false},
		{"0", Flat, false},
		{"-1", Flat, true},
		{"steep", Flat, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlope(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSlope(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSlope(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMargins(t *testing.T) {
	g := centralPit(t, 1)
	ext, internal := Margins(g, nodeset.Of(12))
	if want := nodeset.Of(6, 7, 8, 11, 13, 16, 17, 18); !slices.Equal(ext, want) {
		t.Errorf("external = %v, want %v", ext, want)
	}
	if !slices.Equal(internal, nodeset.Of(12)) {
		t.Errorf("internal = %v, want [12]", internal)
	}
}

func TestGeq(t *testing.T) {
	if !geq(10, 10.00001) {
		t.Error("values within tolerance should compare equal")
	}
	if geq(10, 10.01) {
		t.Error("10 >= 10.01")
	}
	if !geq(10.01, 10) {
		t.Error("10.01 < 10")
	}
	if !geq(0, 5e-9) {
		t.Error("values within the absolute tolerance should compare equal")
	}
}
