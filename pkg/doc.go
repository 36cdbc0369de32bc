// Package pkg provides the libraries behind sinkfill, a depression filler for
// raster elevation models.
//
// # Overview
//
// Digital elevation models are full of closed depressions: single-cell pits
// left by interpolation, and genuine basins with no outlet. Flow routing
// stalls in both. Sinkfill raises every depression to the elevation at which
// it would spill, optionally with a small gradient toward the outlet, so that
// every node drains to the grid boundary.
//
// # Architecture
//
// The typical data flow:
//
//	ESRI ASCII / TOML grid
//	         ↓
//	    [io] package (read into a raster)
//	         ↓
//	    [flow] package (D8 routing, sink detection)
//	         ↓
//	    [lake] package (map depressions, outlets, spill elevations)
//	         ↓
//	    [sinkfill] package (flat fill + slope stabilization)
//	         ↓
//	    filled grid, fill depth, JSON report
//
// # Quick Start
//
//	import (
//	    "github.com/hurstaa/landlab/pkg/grid"
//	    "github.com/hurstaa/landlab/pkg/sinkfill"
//	)
//
//	g, _ := grid.NewRaster(5, 5, 1)
//	z, _ := g.AddZeros("topographic__elevation")
//	// ... set elevations
//
//	f, err := sinkfill.New(g)
//	if err != nil {
//	    return err
//	}
//	err = f.FillPits(sinkfill.DefaultGradient)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [grid] - Raster grid with node statuses, D8 neighborhoods and named node
// fields. [grid.Workspace] gives transactional access to a set of fields.
//
// [flow] - Steepest-descent (D8) flow routing, sink flags, upstream order and
// drainage area.
//
// [lake] - Depression finder. Grows a lake from each pit to its spill point
// and optionally reroutes flow across lakes to their outlets.
//
// [sinkfill] - The filler. Flat-fills lakes, then tilts their surfaces while
// checking that no drainage direction around a lake reverses.
//
// [nodeset] - Sorted node-ID sets with union, difference and intersection.
//
// [retry] - Bounded back-off combinator used by the slope stage.
//
// ## Infrastructure
//
// [io] - ESRI ASCII and TOML grid readers, ASCII writer and JSON fill reports.
//
// [config] - Parameter files and environment overrides via viper.
//
// [cache] - File and null caches for fill results, keyed by a hash of the
// input surface.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for fill and cache events.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/sinkfill/...   # Specific package
//	go test -run Example ./...   # Examples only
//
// [grid]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/grid
// [grid.Workspace]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/grid#Workspace
// [flow]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/flow
// [lake]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/lake
// [sinkfill]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/sinkfill
// [nodeset]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/nodeset
// [retry]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/retry
// [io]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/io
// [config]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/config
// [cache]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/cache
// [errors]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/errors
// [observability]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/hurstaa/landlab/pkg/buildinfo
package pkg
