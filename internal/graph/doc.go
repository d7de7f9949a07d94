// Package graph defines the property graph data model: vertices, edges,
// their adjacency indices, commit diffs, id maps and the validation errors
// reported at the store boundary.
//
// # Adjacency
//
// Every vertex carries two adjacency indices keyed by edge type. IN lists
// the edges that end at the vertex, OUT the edges that start at it:
//
//	v1.Out["ParentPage"] = ["e1"]      e1: v1 ──ParentPage──▶ v2
//	v2.In["ParentPage"]  = ["e1"]
//
// Lists are ordered; the order is the order in which edges were attached and
// is what traversal reports. Empty lists and empty indices are normalized to
// nil so that two snapshots of the same logical state compare equal.
//
// # Identifiers
//
// Entities created on the client get temporary ids from an IDGenerator
// (`tmp-1`, `tmp-2`, ... or `tmp-<uuid>`). After a commit the backing
// database assigns canonical ids, reported as an IDMap and applied by the
// store's reconciliation.
package graph
