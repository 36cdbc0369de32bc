// Package flow routes water over a grid using single-direction (D8)
// steepest descent.
//
// Each core node sends its flow to the one neighbor (of eight) with the
// steepest downhill gradient. A core node with no lower neighbor is a sink:
// it receives itself and is flagged in [FieldSinkFlag]. Boundary nodes are
// base level and also receive themselves, without being sinks. Closed nodes
// neither send nor receive flow.
//
// After routing, nodes are sorted upstream from base level (the "stack" of
// Braun and Willett 2013) and drainage area is accumulated down that order.
package flow

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/hurstaa/landlab/pkg/grid"
)

// Field names owned by the router.
const (
	FieldElevation     = "topographic__elevation"
	FieldReceiver      = "flow__receiver_node"
	FieldSteepestSlope = "topographic__steepest_slope"
	FieldSinkFlag      = "flow__sink_flag"
	FieldDrainageArea  = "drainage_area"
	FieldUpstreamOrder = "flow__upstream_node_order"
)

// Grid is the mesh capability set the router needs. [*grid.Raster]
// implements it.
type Grid interface {
	NodeCount() int
	Status(node int) grid.NodeStatus
	D8(node int) [8]int
	Distance(a, b int) float64
	CellArea(node int) float64
	HasField(name string) bool
	Floats(name string) ([]float64, error)
	EnsureFloats(name string) ([]float64, error)
	EnsureInts(name string, fill int) ([]int, error)
}

// Router computes D8 flow directions.
type Router struct {
	grid      Grid
	elevField string
	logger    *log.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithElevationField routes on the named field instead of FieldElevation.
func WithElevationField(name string) Option {
	return func(r *Router) { r.elevField = name }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a router over g.
func New(g Grid, opts ...Option) *Router {
	r := &Router{
		grid:      g,
		elevField: FieldElevation,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OutputFields returns the names of every field RouteFlow writes.
func (r *Router) OutputFields() []string {
	return []string{FieldReceiver, FieldSteepestSlope, FieldSinkFlag, FieldDrainageArea, FieldUpstreamOrder}
}

// ElevationField returns the name of the field routed on.
func (r *Router) ElevationField() string { return r.elevField }

// RouteFlow computes receivers, steepest slopes, sink flags, upstream order
// and drainage area from the current elevations. Output fields are created
// if absent and overwritten in place otherwise.
func (r *Router) RouteFlow() error {
	z, err := r.grid.Floats(r.elevField)
	if err != nil {
		return fmt.Errorf("route flow: %w", err)
	}
	recv, err := r.grid.EnsureInts(FieldReceiver, grid.BadIndex)
	if err != nil {
		return err
	}
	slope, err := r.grid.EnsureFloats(FieldSteepestSlope)
	if err != nil {
		return err
	}
	sink, err := r.grid.EnsureInts(FieldSinkFlag, 0)
	if err != nil {
		return err
	}

	sinks := 0
	for node := range recv {
		recv[node], slope[node], sink[node] = node, 0, 0
		if r.grid.Status(node) != grid.Core {
			continue
		}
		best, steepest := node, 0.0
		for _, nbr := range r.grid.D8(node) {
			if nbr == grid.BadIndex || r.grid.Status(nbr) == grid.Closed {
				continue
			}
			if s := (z[node] - z[nbr]) / r.grid.Distance(node, nbr); s > steepest {
				best, steepest = nbr, s
			}
		}
		recv[node], slope[node] = best, steepest
		if best == node {
			sink[node] = 1
			sinks++
		}
	}

	if err := r.Accumulate(); err != nil {
		return err
	}
	r.logger.Debug("routed flow", "nodes", len(recv), "sinks", sinks)
	return nil
}

// Accumulate recomputes upstream order and drainage area from the current
// receiver field. It lets collaborators that rewrite receivers (lake
// rerouting) refresh the derived fields without rerouting.
func (r *Router) Accumulate() error {
	recv, err := r.grid.EnsureInts(FieldReceiver, grid.BadIndex)
	if err != nil {
		return err
	}
	order, err := r.grid.EnsureInts(FieldUpstreamOrder, grid.BadIndex)
	if err != nil {
		return err
	}
	area, err := r.grid.EnsureFloats(FieldDrainageArea)
	if err != nil {
		return err
	}

	stack := UpstreamOrder(recv)
	copy(order, stack)
	for node := range area {
		area[node] = 0
		if r.grid.Status(node) != grid.Closed {
			area[node] = r.grid.CellArea(node)
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		node := stack[i]
		if rcv := recv[node]; rcv != node && rcv != grid.BadIndex {
			area[rcv] += area[node]
		}
	}
	return nil
}

// Sinks returns the IDs of nodes flagged in FieldSinkFlag, ascending.
func Sinks(flags []int) []int {
	var out []int
	for node, f := range flags {
		if f != 0 {
			out = append(out, node)
		}
	}
	return out
}

// UpstreamOrder orders nodes so every node appears after its receiver.
// Base-level nodes (their own receiver) start each drainage tree. Nodes
// caught in receiver cycles are appended last so the result always holds
// every node exactly once.
func UpstreamOrder(recv []int) []int {
	donors := make([][]int, len(recv))
	for node, rcv := range recv {
		if rcv != node && rcv >= 0 && rcv < len(recv) {
			donors[rcv] = append(donors[rcv], node)
		}
	}

	out := make([]int, 0, len(recv))
	seen := make([]bool, len(recv))
	var climb func(int)
	climb = func(node int) {
		seen[node] = true
		out = append(out, node)
		for _, d := range donors[node] {
			if !seen[d] {
				climb(d)
			}
		}
	}
	for node, rcv := range recv {
		if rcv == node || rcv < 0 || rcv >= len(recv) {
			climb(node)
		}
	}
	for node := range recv {
		if !seen[node] {
			climb(node)
		}
	}
	return out
}
