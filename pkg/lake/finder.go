package lake

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/hurstaa/landlab/pkg/flow"
	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/nodeset"
)

// Field names owned by the finder.
const (
	FieldDepth       = "depression__depth"
	FieldOutlet      = "depression__outlet_node"
	FieldFloodStatus = "flood_status_code"
	FieldLakeMap     = "depression__lake_map"
)

var (
	// ErrNoRouter is returned by [Finder.MapDepressions] when rerouting is
	// requested but the finder was built without [WithRouter].
	ErrNoRouter = errors.New("rerouting requires a flow router")

	// ErrNodeOutOfRange is returned when a pit ID does not address the grid.
	ErrNodeOutOfRange = errors.New("pit node out of range")
)

// FloodStatus classifies nodes during and after depression mapping.
type FloodStatus int

const (
	// Unflooded is the sentinel for nodes outside every lake.
	Unflooded FloodStatus = iota
	// Pit marks a seed node that has not been absorbed into a lake yet.
	Pit
	// CurrentLake marks members of the lake being grown.
	CurrentLake
	// Flooded marks members of a finished lake.
	Flooded
)

// Grid is the mesh capability set the finder needs.
type Grid interface {
	flow.Grid
}

// Lake is one mapped depression.
type Lake struct {
	Code   int         // ID of the pit that seeded the lake
	Outlet int         // node the lake spills through, or grid.BadIndex
	Spill  float64     // water-surface elevation when full
	Nodes  nodeset.Set // member nodes
}

// Finder maps depressions on a grid.
type Finder struct {
	grid      Grid
	elevField string
	router    *flow.Router
	logger    *log.Logger

	pits  []int
	lakes []Lake
}

// Option configures a Finder.
type Option func(*Finder)

// WithElevationField maps depressions on the named field instead of
// flow.FieldElevation.
func WithElevationField(name string) Option {
	return func(f *Finder) { f.elevField = name }
}

// WithRouter attaches the router whose fields are rewritten when mapping
// with rerouting enabled.
func WithRouter(r *flow.Router) Option {
	return func(f *Finder) { f.router = r }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a finder over g.
func New(g Grid, opts ...Option) *Finder {
	f := &Finder{
		grid:      g,
		elevField: flow.FieldElevation,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OutputFields returns the names of every field MapDepressions writes.
func (f *Finder) OutputFields() []string {
	return []string{FieldDepth, FieldOutlet, FieldFloodStatus, FieldLakeMap}
}

// Pits returns the pits used by the last MapDepressions call, in the order
// they were processed.
func (f *Finder) Pits() []int { return slices.Clone(f.pits) }

// Lakes returns every lake of the last mapping, including lakes without an
// outlet, in the order they were grown.
func (f *Finder) Lakes() []Lake {
	out := make([]Lake, len(f.lakes))
	for i, lk := range f.lakes {
		lk.Nodes = lk.Nodes.Clone()
		out[i] = lk
	}
	return out
}

// Outlets returns the outlet of every lake that has one. The slice is
// parallel to Codes.
func (f *Finder) Outlets() []int {
	var out []int
	for _, lk := range f.lakes {
		if lk.Outlet != grid.BadIndex {
			out = append(out, lk.Outlet)
		}
	}
	return out
}

// Codes returns the code of every lake that has an outlet.
func (f *Finder) Codes() []int {
	var out []int
	for _, lk := range f.lakes {
		if lk.Outlet != grid.BadIndex {
			out = append(out, lk.Code)
		}
	}
	return out
}

// FindPits returns every pit of the current surface, ascending by ID.
func (f *Finder) FindPits() ([]int, error) {
	z, err := f.grid.Floats(f.elevField)
	if err != nil {
		return nil, fmt.Errorf("find pits: %w", err)
	}
	var pits []int
	for node := range z {
		if f.isPit(node, z) {
			pits = append(pits, node)
		}
	}
	return pits, nil
}

func (f *Finder) isPit(node int, z []float64) bool {
	if f.grid.Status(node) != grid.Core {
		return false
	}
	for _, nbr := range f.grid.D8(node) {
		if nbr == grid.BadIndex {
			continue
		}
		switch st := f.grid.Status(nbr); {
		case st == grid.Closed:
		case z[nbr] < z[node]:
			return false
		case z[nbr] == z[node] && st == grid.FixedValue:
			return false
		}
	}
	return true
}

// MapDepressions grows a lake from every pit and writes the output fields.
// With pits == nil the pits are detected from the surface; otherwise only
// the core nodes among pits are used. With reroute set, the receivers of
// lake members are redirected toward their outlet and the router's derived
// fields are refreshed.
func (f *Finder) MapDepressions(pits []int, reroute bool) error {
	if reroute && f.router == nil {
		return ErrNoRouter
	}
	z, err := f.grid.Floats(f.elevField)
	if err != nil {
		return fmt.Errorf("map depressions: %w", err)
	}
	if pits == nil {
		if pits, err = f.FindPits(); err != nil {
			return err
		}
	} else if pits, err = f.corePits(pits); err != nil {
		return err
	}
	slices.SortFunc(pits, func(a, b int) int {
		if c := cmp.Compare(z[a], z[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	n := f.grid.NodeCount()
	status := make([]FloodStatus, n)
	for _, p := range pits {
		status[p] = Pit
	}

	m := &mapping{
		finder: f,
		z:      z,
		status: status,
		owner:  filled(n, grid.BadIndex),
		queued: filled(n, grid.BadIndex),
	}
	for _, p := range pits {
		if m.owner[p] == grid.BadIndex {
			m.grow(p)
		}
	}

	f.pits = pits
	f.lakes = f.lakes[:0]
	for _, g := range m.grown {
		if g.merged {
			continue
		}
		f.lakes = append(f.lakes, Lake{Code: g.code, Outlet: g.outlet, Spill: g.spill, Nodes: nodeset.Of(g.nodes...)})
	}
	if err := f.writeFields(z, status); err != nil {
		return err
	}

	f.logger.Debug("mapped depressions", "pits", len(pits), "lakes", len(f.lakes))
	if reroute {
		return f.reroute()
	}
	return nil
}

func (f *Finder) corePits(pits []int) ([]int, error) {
	n := f.grid.NodeCount()
	out := make([]int, 0, len(pits))
	for _, p := range pits {
		if p < 0 || p >= n {
			return nil, fmt.Errorf("%w: %d", ErrNodeOutOfRange, p)
		}
		if f.grid.Status(p) == grid.Core {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (f *Finder) writeFields(z []float64, status []FloodStatus) error {
	depth, err := f.grid.EnsureFloats(FieldDepth)
	if err != nil {
		return err
	}
	outlet, err := f.grid.EnsureInts(FieldOutlet, grid.BadIndex)
	if err != nil {
		return err
	}
	flood, err := f.grid.EnsureInts(FieldFloodStatus, int(Unflooded))
	if err != nil {
		return err
	}
	lakeMap, err := f.grid.EnsureInts(FieldLakeMap, grid.BadIndex)
	if err != nil {
		return err
	}

	for node := range depth {
		depth[node], outlet[node], lakeMap[node] = 0, grid.BadIndex, grid.BadIndex
		flood[node] = int(status[node])
	}
	for _, lk := range f.lakes {
		for _, node := range lk.Nodes {
			outlet[node], lakeMap[node] = lk.Outlet, lk.Code
			if lk.Outlet != grid.BadIndex {
				depth[node] = max(lk.Spill-z[node], 0)
			}
		}
	}
	return nil
}

// reroute points every lake member down a shortest path to its outlet.
func (f *Finder) reroute() error {
	recv, err := f.grid.EnsureInts(flow.FieldReceiver, grid.BadIndex)
	if err != nil {
		return err
	}
	slope, err := f.grid.EnsureFloats(flow.FieldSteepestSlope)
	if err != nil {
		return err
	}
	sink, err := f.grid.EnsureInts(flow.FieldSinkFlag, 0)
	if err != nil {
		return err
	}
	z, err := f.grid.Floats(f.elevField)
	if err != nil {
		return err
	}

	for _, lk := range f.lakes {
		if lk.Outlet == grid.BadIndex {
			continue
		}
		member := lk.Nodes.Mask(f.grid.NodeCount())
		frontier := []int{lk.Outlet}
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			for _, nbr := range f.grid.D8(cur) {
				if nbr == grid.BadIndex || !member[nbr] {
					continue
				}
				member[nbr] = false
				recv[nbr], sink[nbr] = cur, 0
				slope[nbr] = max((z[nbr]-z[cur])/f.grid.Distance(nbr, cur), 0)
				frontier = append(frontier, nbr)
			}
		}
	}
	return f.router.Accumulate()
}

// growth is a lake under construction.
type growth struct {
	code   int
	nodes  []int
	outlet int
	spill  float64
	merged bool
}

// mapping holds the scratch state of one MapDepressions call.
type mapping struct {
	finder *Finder
	z      []float64
	status []FloodStatus
	owner  []int // index into grown, or BadIndex
	queued []int // index of the lake that queued the node, or BadIndex
	grown  []*growth
}

// surface is the elevation water standing at node would have: its ground
// elevation, or the spill elevation of the finished lake holding it.
func (m *mapping) surface(node int) float64 {
	if o := m.owner[node]; o != grid.BadIndex {
		return m.grown[o].spill
	}
	return m.z[node]
}

func (m *mapping) enqueue(per *perimeter, idx, node int) {
	g := m.finder.grid
	for _, nbr := range g.D8(node) {
		if nbr == grid.BadIndex || g.Status(nbr) == grid.Closed || m.owner[nbr] == idx || m.queued[nbr] == idx {
			continue
		}
		m.queued[nbr] = idx
		per.push(nbr, m.surface(nbr))
	}
}

func (m *mapping) canDrain(node, idx int) bool {
	g := m.finder.grid
	if g.Status(node) == grid.FixedValue {
		return true
	}
	for _, nbr := range g.D8(node) {
		if nbr == grid.BadIndex || g.Status(nbr) == grid.Closed || m.owner[nbr] == idx {
			continue
		}
		if m.surface(nbr) < m.z[node] {
			return true
		}
	}
	return false
}

func (m *mapping) grow(pit int) {
	idx := len(m.grown)
	lk := &growth{code: pit, nodes: []int{pit}, outlet: grid.BadIndex}
	m.grown = append(m.grown, lk)
	m.owner[pit] = idx
	m.status[pit] = CurrentLake
	level := m.z[pit]

	var per perimeter
	m.enqueue(&per, idx, pit)
	for per.Len() > 0 {
		node := per.pop().node
		if m.owner[node] == idx {
			continue
		}
		if o := m.owner[node]; o != grid.BadIndex {
			other := m.grown[o]
			absorbed := other.nodes
			for _, x := range absorbed {
				m.owner[x] = idx
				m.status[x] = CurrentLake
			}
			lk.nodes = append(lk.nodes, absorbed...)
			level = max(level, other.spill)
			other.nodes, other.merged = nil, true
			for _, x := range absorbed {
				m.enqueue(&per, idx, x)
			}
			continue
		}
		if m.canDrain(node, idx) {
			lk.outlet = node
			break
		}
		m.owner[node] = idx
		m.status[node] = CurrentLake
		lk.nodes = append(lk.nodes, node)
		level = max(level, m.z[node])
		m.enqueue(&per, idx, node)
	}

	lk.spill = level
	if lk.outlet != grid.BadIndex {
		lk.spill = max(level, m.z[lk.outlet])
	} else {
		m.finder.logger.Warn("depression has no outlet", "code", pit, "nodes", len(lk.nodes))
	}
	for _, x := range lk.nodes {
		m.status[x] = Flooded
	}
}

func filled(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}
