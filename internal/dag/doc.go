// Package dag builds the directed dependency graph over registered unit
// names and computes a deterministic, best-effort execution order.
//
// Edges run from a dependency to its dependent. Declarations naming a unit
// absent from the registry are skipped with a warning and recorded, so one
// dangling reference never blocks graph construction. Cyclic units stay in
// the graph: they are detected, reported, and ordered last rather than
// dropped.
package dag
