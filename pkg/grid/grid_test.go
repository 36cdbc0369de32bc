package grid

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func mustRaster(t *testing.T, rows, cols int, spacing float64) *Raster {
	t.Helper()
	r, err := NewRaster(rows, cols, spacing)
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	return r
}

func TestNewRasterInvalidShape(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		spacing    float64
	}{
		{"too few rows", 2, 5, 1},
		{"too few cols", 5, 1, 1},
		{"zero spacing", 4, 4, 0},
		{"negative spacing", 4, 4, -1},
		{"nan spacing", 4, 4, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRaster(tt.rows, tt.cols, tt.spacing)
			if !errors.Is(err, ErrInvalidShape) {
				t.Errorf("err = %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestBoundaryStatus(t *testing.T) {
	r := mustRaster(t, 3, 4, 1)
	if got := r.CoreNodes(); !slices.Equal(got, []int{5, 6}) {
		t.Errorf("CoreNodes = %v, want [5 6]", got)
	}
	if r.Status(0) != FixedValue || r.Status(5) != Core {
		t.Errorf("unexpected status: node0=%v node5=%v", r.Status(0), r.Status(5))
	}

	r.CloseBoundaries()
	if r.Status(0) != Closed || r.Status(5) != Core {
		t.Errorf("after CloseBoundaries: node0=%v node5=%v", r.Status(0), r.Status(5))
	}
	if err := r.SetStatus(99, Core); !errors.Is(err, ErrNodeOutOfRange) {
		t.Errorf("SetStatus(99) err = %v", err)
	}
}

func TestAdjacency(t *testing.T) {
	r := mustRaster(t, 3, 4, 1)

	if got := r.Neighbors(5); got != [4]int{6, 9, 4, 1} {
		t.Errorf("Neighbors(5) = %v", got)
	}
	if got := r.Diagonals(5); got != [4]int{10, 8, 0, 2} {
		t.Errorf("Diagonals(5) = %v", got)
	}
	if got := r.Neighbors(0); got != [4]int{1, 4, BadIndex, BadIndex} {
		t.Errorf("Neighbors(0) = %v", got)
	}
	if got := r.Diagonals(11); got != [4]int{BadIndex, BadIndex, 6, BadIndex} {
		t.Errorf("Diagonals(11) = %v", got)
	}
	if got := r.NeighborList([]int{0, 5}); len(got) != 8 || got[4] != 6 {
		t.Errorf("NeighborList = %v", got)
	}
}

func TestDistances(t *testing.T) {
	r, err := NewRaster(3, 3, 2, WithOrigin(10, 20))
	if err != nil {
		t.Fatal(err)
	}
	if x, y := r.XY(4); x != 12 || y != 22 {
		t.Errorf("XY(4) = (%g, %g)", x, y)
	}
	if d := r.Distance(0, 8); math.Abs(d-math.Sqrt(32)) > 1e-12 {
		t.Errorf("Distance(0, 8) = %g", d)
	}
	d := r.DistancesToPoint(10, 20, []int{0, 1, 4})
	want := []float64{0, 2, math.Sqrt(8)}
	for i := range want {
		if math.Abs(d[i]-want[i]) > 1e-12 {
			t.Errorf("DistancesToPoint[%d] = %g, want %g", i, d[i], want[i])
		}
	}
}

func TestFields(t *testing.T) {
	r := mustRaster(t, 3, 3, 1)

	if r.HasField("z") {
		t.Fatal("unexpected field z")
	}
	if _, err := r.Floats("z"); !errors.Is(err, ErrNoField) {
		t.Errorf("Floats(z) err = %v", err)
	}

	z, err := r.AddZeros("z")
	if err != nil {
		t.Fatalf("AddZeros: %v", err)
	}
	z[4] = 3
	got, _ := r.Floats("z")
	if got[4] != 3 {
		t.Error("Floats should alias stored field")
	}
	if _, err := r.AddZeros("z"); !errors.Is(err, ErrFieldExists) {
		t.Errorf("duplicate AddZeros err = %v", err)
	}
	if err := r.AddFloats("short", []float64{1}); !errors.Is(err, ErrFieldSize) {
		t.Errorf("AddFloats short err = %v", err)
	}

	ids, err := r.EnsureInts("ids", BadIndex)
	if err != nil || ids[0] != BadIndex {
		t.Fatalf("EnsureInts = %v, %v", ids, err)
	}
	if names := r.FieldNames(); !slices.Equal(names, []string{"ids", "z"}) {
		t.Errorf("FieldNames = %v", names)
	}

	if err := r.DeleteField("z"); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteField("z"); !errors.Is(err, ErrNoField) {
		t.Errorf("second DeleteField err = %v", err)
	}
}

func TestWorkspaceRestoresAndDeletes(t *testing.T) {
	r := mustRaster(t, 3, 3, 1)
	keep, _ := r.AddZeros("keep")
	keep[0] = 7

	w, err := Acquire(r, "keep", "scratch", "keep")
	if err != nil {
		t.Fatal(err)
	}
	if !w.Preexisting("keep") || w.Preexisting("scratch") {
		t.Error("Preexisting reported wrong state")
	}
	if got := w.Scratch(); !slices.Equal(got, []string{"scratch"}) {
		t.Errorf("Scratch = %v", got)
	}

	keep[0] = -1
	if _, err := r.AddZeros("scratch"); err != nil {
		t.Fatal(err)
	}

	if err := w.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if keep[0] != 7 {
		t.Errorf("keep[0] = %g, want restored 7", keep[0])
	}
	if r.HasField("scratch") {
		t.Error("scratch field survived Release")
	}
	if err := w.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestWorkspaceCommit(t *testing.T) {
	r := mustRaster(t, 3, 3, 1)
	z, _ := r.AddZeros("z")

	w, err := Acquire(r, "z", "out")
	if err != nil {
		t.Fatal(err)
	}
	z[4] = 1
	if _, err := r.AddZeros("out"); err != nil {
		t.Fatal(err)
	}
	w.Commit("z")
	w.Commit("out")
	if err := w.Release(); err != nil {
		t.Fatal(err)
	}
	if z[4] != 1 {
		t.Error("committed field was restored")
	}
	if !r.HasField("out") {
		t.Error("committed scratch field was deleted")
	}
}

func TestWorkspaceRecreatesDeletedField(t *testing.T) {
	r := mustRaster(t, 3, 3, 1)
	ids, _ := r.EnsureInts("ids", 2)

	w, err := Acquire(r, "ids")
	if err != nil {
		t.Fatal(err)
	}
	ids[0] = 9
	_ = r.DeleteField("ids")
	if err := w.Release(); err != nil {
		t.Fatal(err)
	}
	got, err := r.Ints("ids")
	if err != nil {
		t.Fatalf("ids not restored: %v", err)
	}
	if got[0] != 2 {
		t.Errorf("ids[0] = %d, want 2", got[0])
	}
}
