package sinkfill

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/hurstaa/landlab/pkg/grid"
	"github.com/hurstaa/landlab/pkg/lake"
	"github.com/hurstaa/landlab/pkg/nodeset"
	"github.com/hurstaa/landlab/pkg/retry"
)

// Bounds of the slope stage loops.
const (
	MaxRestarts   = 10  // unstable attempts before a ConvergenceError
	MaxBackoffs   = 10  // gradients tried per lake before a restart
	MaxPasses     = 100 // depression mapping passes per attempt
	BackoffFactor = 0.1 // gradient factor between tries
)

// Closeness tolerance for elevation comparisons.
const (
	absTol = 1e-8
	relTol = 1e-5
)

// geq reports a >= b, counting values within tolerance as equal.
func geq(a, b float64) bool {
	return a >= b || scalar.EqualWithinAbsOrRel(a, b, absTol, relTol)
}

// Margins returns the external margin of members (non-members next to a
// member, diagonals included) and the internal margin (members next to the
// external margin).
func Margins(m Mesh, members nodeset.Set) (external, internal nodeset.Set) {
	external = ring(m, members)
	internal = nodeset.Intersect(ring(m, external), members)
	return external, internal
}

// ring returns the D8 neighbors of nodes that are not in nodes.
func ring(m Mesh, nodes nodeset.Set) nodeset.Set {
	adj := slices.Concat(m.NeighborList(nodes), m.DiagonalList(nodes))
	return nodeset.Difference(nodeset.Of(adj...), nodes)
}

// DrainageChanges reports whether any margin node compares differently
// with one of its D8 neighbors on before than on after.
func DrainageChanges(m Mesh, margin nodeset.Set, before, after []float64) bool {
	for _, node := range margin {
		for _, nbr := range m.D8(node) {
			if nbr == grid.BadIndex {
				continue
			}
			if geq(before[node], before[nbr]) != geq(after[node], after[nbr]) {
				return true
			}
		}
	}
	return false
}

// applySlope runs the slope stage on z, which holds the flat fill of
// original. Each unstable attempt resets z and retries with a tenth of the
// base gradient.
func (f *Filler) applySlope(z, original []float64, base float64) error {
	var lastErr error
	b := retry.Backoff{Attempts: MaxRestarts, Factor: BackoffFactor}
	res, err := b.Run(base, func(attempt int, s float64) error {
		if attempt > 1 {
			copy(z, original)
			if err := f.flatFill(z); err != nil {
				return err
			}
		}
		stable, err := f.slopeAttempt(z, original, s)
		if err != nil {
			return err
		}
		if !stable {
			f.hooks.OnInstability(attempt, s)
			f.logger.Debug("unstable sloped surface", "attempt", attempt, "slope", s)
			lastErr = errUnstable
			return retry.Retryable(errUnstable)
		}
		return nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return &ConvergenceError{Attempts: res.Attempts, Slope: res.Value, Err: lastErr}
	}
	return err
}

// slopeAttempt tilts the lakes of the last mapping with gradient s, then
// keeps mapping, filling and tilting the lakes the tilt creates until no
// draining lake is left. It reports whether drainage around everything
// flooded survived.
func (f *Filler) slopeAttempt(z, original []float64, s float64) (bool, error) {
	var treated, flooded nodeset.Set
	lakes := drainingLakes(f.finder.Lakes())
	nested := false

	for pass := 1; ; pass++ {
		for _, lk := range lakes {
			flooded = nodeset.Union(flooded, lk.Nodes)
			var ok bool
			if treated, ok = f.tilt(z, lk, s, treated, nested); !ok {
				return false, nil
			}
		}

		if err := f.finder.MapDepressions(nil, false); err != nil {
			return false, err
		}
		fresh := drainingLakes(f.finder.Lakes())
		f.hooks.OnLakesMapped(pass, len(fresh))
		if len(fresh) == 0 {
			break
		}
		if pass == MaxPasses {
			f.logger.Debug("depression mapping did not settle", "passes", pass)
			return false, nil
		}
		// Refilled members have lost their offsets.
		raise(z, fresh)
		lakes, nested, treated = fresh, true, nil
	}

	margin, _ := Margins(f.mesh, flooded)
	return !DrainageChanges(f.mesh, margin, original, z), nil
}

// tilt raises the untreated members of lk by s times their distance to the
// outlet. Outside nested mode a tilt that changes drainage at the lake's
// margin is undone and retried with a smaller gradient; ok is false when
// every gradient failed. The returned set is treated plus the tilted nodes.
func (f *Filler) tilt(z []float64, lk lake.Lake, s float64, treated nodeset.Set, nested bool) (_ nodeset.Set, ok bool) {
	nodes := nodeset.Difference(lk.Nodes, treated)
	if len(nodes) == 0 {
		return treated, true
	}
	x, y := f.mesh.XY(lk.Outlet)
	dists := f.mesh.DistancesToPoint(x, y, nodes)
	margin, _ := Margins(f.mesh, lk.Nodes)
	before := slices.Clone(z)
	offsets := make([]float64, len(nodes))

	b := retry.Backoff{Attempts: MaxBackoffs, Factor: BackoffFactor}
	res, err := b.Run(s, func(attempt int, slope float64) error {
		floats.ScaleTo(offsets, slope, dists)
		for i, node := range nodes {
			z[node] = before[node] + offsets[i]
		}
		if nested || !DrainageChanges(f.mesh, margin, before, z) {
			return nil
		}
		for _, node := range nodes {
			z[node] = before[node]
		}
		f.hooks.OnLocalReject(lk.Code, attempt)
		return retry.Retryable(errDrainageReversed)
	})
	if err != nil {
		f.logger.Debug("no stable gradient for lake", "code", lk.Code, "slope", res.Value, "attempts", res.Attempts)
		return treated, false
	}

	f.hooks.OnLakePerturbed(lk.Code, nested, res.Attempts, res.Value)
	f.logger.Debug("tilted lake", "code", lk.Code, "outlet", lk.Outlet, "nodes", len(nodes),
		"slope", res.Value, "nested", nested)
	return nodeset.Union(treated, nodes), true
}
