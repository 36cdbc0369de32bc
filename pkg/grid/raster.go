package grid

import (
	"errors"
	"fmt"
	"math"
)

// BadIndex marks an absent neighbor in adjacency queries.
const BadIndex = -1

var (
	// ErrInvalidShape is returned by [NewRaster] for fewer than 3 rows or
	// columns, or a non-positive spacing.
	ErrInvalidShape = errors.New("invalid raster shape")

	// ErrNodeOutOfRange is returned when a node ID does not address the grid.
	ErrNodeOutOfRange = errors.New("node out of range")
)

// NodeStatus is the boundary condition of a node.
type NodeStatus int

const (
	// Core nodes are interior nodes whose elevation evolves.
	Core NodeStatus = iota
	// FixedValue nodes are open boundaries: water leaving through them is lost.
	FixedValue
	// Closed nodes are excluded from flow: nothing enters or leaves them.
	Closed
)

// String returns a human-readable status name.
func (s NodeStatus) String() string {
	switch s {
	case Core:
		return "core"
	case FixedValue:
		return "fixed_value"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Raster is a regular grid of nodes with uniform spacing.
// The zero value is not usable; create rasters with [NewRaster].
type Raster struct {
	rows, cols int
	spacing    float64
	x0, y0     float64
	status     []NodeStatus

	floats map[string][]float64
	ints   map[string][]int
}

// Option configures a Raster.
type Option func(*Raster)

// WithOrigin places node 0 at (x, y) instead of (0, 0).
func WithOrigin(x, y float64) Option {
	return func(r *Raster) { r.x0, r.y0 = x, y }
}

// NewRaster creates a rows×cols grid with the given node spacing.
// Perimeter nodes are FixedValue boundaries; all other nodes are Core.
func NewRaster(rows, cols int, spacing float64, opts ...Option) (*Raster, error) {
	if rows < 3 || cols < 3 || !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, fmt.Errorf("%w: %dx%d spacing %g", ErrInvalidShape, rows, cols, spacing)
	}
	r := &Raster{
		rows:    rows,
		cols:    cols,
		spacing: spacing,
		status:  make([]NodeStatus, rows*cols),
		floats:  make(map[string][]float64),
		ints:    make(map[string][]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	for node := range r.status {
		row, col := node/cols, node%cols
		if row == 0 || col == 0 || row == rows-1 || col == cols-1 {
			r.status[node] = FixedValue
		}
	}
	return r, nil
}

// Shape returns the number of rows and columns.
func (r *Raster) Shape() (rows, cols int) { return r.rows, r.cols }

// Spacing returns the distance between orthogonal neighbors.
func (r *Raster) Spacing() float64 { return r.spacing }

// NodeCount returns the number of nodes.
func (r *Raster) NodeCount() int { return r.rows * r.cols }

// XY returns the planar coordinates of node.
func (r *Raster) XY(node int) (x, y float64) {
	return r.x0 + float64(node%r.cols)*r.spacing, r.y0 + float64(node/r.cols)*r.spacing
}

// Status returns the boundary status of node.
func (r *Raster) Status(node int) NodeStatus { return r.status[node] }

// SetStatus changes the boundary status of node.
func (r *Raster) SetStatus(node int, s NodeStatus) error {
	if node < 0 || node >= len(r.status) {
		return fmt.Errorf("%w: %d", ErrNodeOutOfRange, node)
	}
	r.status[node] = s
	return nil
}

// CloseBoundaries marks every perimeter node Closed.
func (r *Raster) CloseBoundaries() {
	for node, s := range r.status {
		if s == FixedValue {
			r.status[node] = Closed
		}
	}
}

// CoreNodes returns the IDs of all Core nodes in ascending order.
func (r *Raster) CoreNodes() []int {
	var out []int
	for node, s := range r.status {
		if s == Core {
			out = append(out, node)
		}
	}
	return out
}

// offset returns the node at (row+dr, col+dc) of node, or BadIndex.
func (r *Raster) offset(node, dr, dc int) int {
	row, col := node/r.cols+dr, node%r.cols+dc
	if row < 0 || col < 0 || row >= r.rows || col >= r.cols {
		return BadIndex
	}
	return row*r.cols + col
}

// Neighbors returns the orthogonal neighbors of node: east, north, west, south.
func (r *Raster) Neighbors(node int) [4]int {
	return [4]int{
		r.offset(node, 0, 1),
		r.offset(node, 1, 0),
		r.offset(node, 0, -1),
		r.offset(node, -1, 0),
	}
}

// Diagonals returns the diagonal neighbors of node: NE, NW, SW, SE.
func (r *Raster) Diagonals(node int) [4]int {
	return [4]int{
		r.offset(node, 1, 1),
		r.offset(node, 1, -1),
		r.offset(node, -1, -1),
		r.offset(node, -1, 1),
	}
}

// D8 returns the orthogonal neighbors followed by the diagonals.
func (r *Raster) D8(node int) [8]int {
	n, d := r.Neighbors(node), r.Diagonals(node)
	return [8]int{n[0], n[1], n[2], n[3], d[0], d[1], d[2], d[3]}
}

// NeighborList returns the orthogonal neighbors of every node in nodes,
// four entries per node, with BadIndex for absent neighbors.
func (r *Raster) NeighborList(nodes []int) []int {
	out := make([]int, 0, 4*len(nodes))
	for _, node := range nodes {
		n := r.Neighbors(node)
		out = append(out, n[:]...)
	}
	return out
}

// DiagonalList is the diagonal counterpart of NeighborList.
func (r *Raster) DiagonalList(nodes []int) []int {
	out := make([]int, 0, 4*len(nodes))
	for _, node := range nodes {
		d := r.Diagonals(node)
		out = append(out, d[:]...)
	}
	return out
}

// Distance returns the planar distance between two nodes.
func (r *Raster) Distance(a, b int) float64 {
	ax, ay := r.XY(a)
	bx, by := r.XY(b)
	return math.Hypot(ax-bx, ay-by)
}

// DistancesToPoint returns the planar distance from each node in nodes to
// (x, y), in the order of nodes.
func (r *Raster) DistancesToPoint(x, y float64, nodes []int) []float64 {
	out := make([]float64, len(nodes))
	for i, node := range nodes {
		nx, ny := r.XY(node)
		out[i] = math.Hypot(nx-x, ny-y)
	}
	return out
}

// CellArea returns the area of the cell around node. Nodes on the grid
// perimeter have no cell and report zero.
func (r *Raster) CellArea(node int) float64 {
	row, col := node/r.cols, node%r.cols
	if row == 0 || col == 0 || row == r.rows-1 || col == r.cols-1 {
		return 0
	}
	return r.spacing * r.spacing
}
