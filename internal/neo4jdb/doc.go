// Package neo4jdb persists graph diffs to Neo4j.
//
// Every vertex is stored as one node carrying the vertex labels, and every
// edge as one relationship of the edge type. Canonical ids are the element
// ids Neo4j assigns, so the id map returned by Apply translates temporary
// ids into elementId values.
//
// Neo4j properties hold primitives and homogeneous primitive lists only.
// Nested maps and mixed lists are stored as JSON strings.
//
// Transient server errors (deadlocks, lock timeouts) are reported as
// bridge.ConflictError so the bridge retries the whole diff. Driver
// connectivity failures become bridge.ConnectivityError.
package neo4jdb
