// Package lake finds closed depressions in an elevation surface and maps the
// lakes that would fill them.
//
// # Algorithm
//
// Starting from each pit, in ascending order of elevation, a lake grows by
// repeatedly taking the lowest node on its perimeter. If that node can drain
// (it is an open boundary, or it has a neighbor outside the lake whose
// surface is strictly lower) it becomes the lake's outlet and growth stops.
// Otherwise the node joins the lake and the search continues.
//
// Nodes that already belong to an earlier lake are seen at that lake's spill
// elevation rather than their ground elevation, so a growing lake that
// reaches another lake's water merges with it instead of draining into it.
// Pits swallowed by a lake grown earlier are skipped.
//
// Each lake is identified by a code, the ID of the pit that seeded it. The
// fill deficit of a member node is the spill elevation (the outlet's
// elevation) minus its own.
//
// # Pits
//
// A pit is a core node without a strictly lower neighbor among its eight
// neighbors. A node tied with an open-boundary neighbor is not a pit, since
// water can leave through that boundary. Closed nodes are never pits,
// members or outlets.
//
// # Output fields
//
//   - [FieldDepth]: fill deficit per node, zero outside lakes
//   - [FieldOutlet]: outlet node of the lake holding each node, or grid.BadIndex
//   - [FieldFloodStatus]: [FloodStatus] per node; [Unflooded] is the sentinel
//   - [FieldLakeMap]: lake code per node, or grid.BadIndex for non-members
package lake
