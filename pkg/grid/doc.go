// Package grid provides a regular raster mesh with named per-node fields.
//
// # Overview
//
// A [Raster] is a rectangular lattice of nodes with uniform spacing. Node IDs
// increase left to right along a row and rows increase upward from the lower
// left corner, so node 0 sits at the grid origin:
//
//	rows=3, cols=4
//
//	 8  9 10 11
//	 4  5  6  7
//	 0  1  2  3
//
// Perimeter nodes start as [FixedValue] boundaries (open outlets), interior
// nodes as [Core]. Use [Raster.SetStatus] to close nodes, for example to mask
// NODATA cells of a DEM.
//
// # Adjacency
//
// [Raster.Neighbors] returns the four orthogonal neighbors in the order east,
// north, west, south; [Raster.Diagonals] returns NE, NW, SW, SE. Neighbors that
// fall outside the grid are reported as [BadIndex]. The list variants accept a
// node collection and return a flat slice, four entries per node.
//
// # Fields
//
// Fields are float64 or int slices of length [Raster.NodeCount], addressed by
// name. Query existence with [Raster.HasField] before access; accessors return
// [ErrNoField] for unknown names. Slices returned by accessors alias the stored
// field, so in-place updates are visible to every holder.
//
// # Workspaces
//
// [Acquire] snapshots a set of fields before a computation that overwrites
// them and [Workspace.Release] puts the grid back: fields that did not exist
// are deleted, fields that did are restored in place. Fields marked with
// [Workspace.Commit] keep their new values.
//
// # Concurrency
//
// A Raster is not safe for concurrent use without external synchronization.
package grid
