// Package sinkfill fills depressions in an elevation surface so every node
// drains to the grid boundary.
//
// A [Filler] works in two stages. The flat stage routes flow, hands the sink
// nodes to the depression finder and raises every lake to its spill
// elevation. The optional slope stage then tilts each lake up and away from
// its outlet, so flow over the filled surface has a direction:
//
//	f, err := sinkfill.New(g)
//	if err != nil {
//	    return err
//	}
//	err = f.FillPits(sinkfill.DefaultGradient)
//
// # Stability
//
// A tilt must never reverse drainage between a lake and the terrain around
// it. For every node of a lake's external margin and every neighbor of that
// node, the comparison margin >= neighbor (with a closeness tolerance) has to
// give the same answer before and after the tilt.
//
// Each lake found by the flat stage is checked on its own; a failing tilt is
// undone and retried at a tenth of the gradient. Tilting can create new pits
// beside a filled lake, so the stage maps depressions again and fills and
// tilts every lake it finds without the local check, nodes tilted earlier
// included. Once no draining lake is left, the whole flooded area is checked against the surface as it was before the
// fill. If that fails, the surface is reset, the base gradient is divided by
// ten and the stage starts over. After [MaxRestarts] unstable attempts
// FillPits returns a [*ConvergenceError].
//
// # Fields
//
// FillPits mutates the elevation field in place and writes
// [FieldFillDepth]. Fields written by the router and the finder are
// restored or removed before it returns, and on failure the elevation field
// is left as it was.
package sinkfill
