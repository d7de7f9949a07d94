// Package inmemorygraph provides the map-backed implementation of the
// graphstore.Store interface.
//
// # State
//
// The store owns three structures, all guarded by one RWMutex:
//   - vertices: vertex id -> *graph.Vertex (with IN/OUT adjacency)
//   - edges: edge id -> *graph.Edge
//   - labels: label -> ordered vertex ids (the label index)
//
// Callers never receive pointers into these maps; every read returns a
// clone. Mutations hold the write lock for their whole duration, including
// cascades, so a mutation always runs to completion before the next one
// starts.
//
// # Undo
//
// Deletes record where the entity sat (label index slots, adjacency slots)
// in the journal step. Revert walks the steps backwards and reinserts at
// those slots, so a reverted transaction leaves the store structurally
// identical to its pre-transaction state.
package inmemorygraph
