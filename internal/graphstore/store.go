// Package graphstore defines the interface of the client-resident graph
// store together with the types that cross its boundary: mutation inputs
// and results, mutation options, broadcast ops and snapshots.
//
// # Why Graph Store Is an Interface
//
// The store is the single owner of vertex and edge state. Everything else
// (the expression evaluator, the editing session, replica sync, the CLI)
// holds a handle to a Store and never reaches into its maps. Keeping the
// contract here lets those consumers depend on behavior rather than on the
// in-memory implementation in internal/inmemorygraph.
//
// # Mutations, Journal and Broadcast
//
// Every mutating call takes a transaction id. Id 0 (journal.Immediate)
// applies the change without recording it; any other id must name an open
// transaction, and the change is appended to it as a step whose index is
// reported in MutationResult.StepIndex.
//
// Unless the Suppressed option is given, each successful mutating call also
// emits exactly one Op to the configured Broadcaster. Suppression is used
// when replaying an op received from another replica or when reapplying the
// result of a commit, so that changes do not echo between replicas.
//
//	caller ──▶ Store.MergeVertexProperties(txn, "v1", props)
//	              │
//	              ├──▶ journal step (txn != 0)
//	              └──▶ Broadcaster.Broadcast({opName, payload}) (not suppressed)
//
// # Errors
//
// Mutations report rejected input as *graph.ValidationError wrapping
// graph.ErrNotFound, graph.ErrIDCollision, graph.ErrMissingField or
// graph.ErrTransactionClosed. Implementations never panic on bad input.
//
// # Thread-Safety
//
// Implementations MUST be safe for concurrent use. Mutations on one store
// run to completion before the next one starts; reads may run at any time
// and observe the latest applied state.
package graphstore

import (
	"context"

	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/value"
)

// Reader is the read-only view of a store used by the expression evaluator.
type Reader interface {
	// Vertex returns a copy of the vertex with the given id.
	Vertex(id string) (*graph.Vertex, bool)

	// Edge returns a copy of the edge with the given id.
	Edge(id string) (*graph.Edge, bool)

	// VerticesByLabel returns copies of every vertex carrying label, in label
	// index order.
	VerticesByLabel(label string) []*graph.Vertex

	// FindVertices returns the vertices carrying label whose property key
	// equals want.
	FindVertices(label, key string, want value.Value) []*graph.Vertex
}

// Store is the full graph store contract.
type Store interface {
	Reader

	// CreateVertex adds a vertex. An empty input id is replaced by a temporary
	// id from the store's generator; an id already in use is rejected with
	// graph.ErrIDCollision.
	CreateVertex(ctx context.Context, txn journal.TxnID, in VertexInput, opts ...MutationOption) (MutationResult, error)

	// MergeVertexProperties performs a shallow union of props into the
	// vertex's properties.
	MergeVertexProperties(ctx context.Context, txn journal.TxnID, id string, props *value.Map, opts ...MutationOption) (MutationResult, error)

	// ReplaceVertexProperties swaps the vertex's properties for props. Keys
	// present before and after keep their position.
	ReplaceVertexProperties(ctx context.Context, txn journal.TxnID, id string, props *value.Map, opts ...MutationOption) (MutationResult, error)

	// DeleteVertex removes a vertex, first deleting every edge in its IN and
	// OUT adjacency. Each cascaded edge delete is journaled as its own step.
	DeleteVertex(ctx context.Context, txn journal.TxnID, id string, opts ...MutationOption) (MutationResult, error)

	// CreateEdge adds an edge between two existing vertices.
	CreateEdge(ctx context.Context, txn journal.TxnID, in EdgeInput, opts ...MutationOption) (MutationResult, error)

	// ReplaceEdgeProperties swaps the edge's properties for props.
	ReplaceEdgeProperties(ctx context.Context, txn journal.TxnID, id string, props *value.Map, opts ...MutationOption) (MutationResult, error)

	// DeleteEdge removes an edge from the edge map and both adjacency lists.
	DeleteEdge(ctx context.Context, txn journal.TxnID, id string, opts ...MutationOption) (MutationResult, error)

	// Begin opens a transaction.
	Begin() journal.TxnID

	// Commit closes a transaction and returns its net diff. It does not
	// contact any database.
	Commit(ctx context.Context, txn journal.TxnID) (*graph.Diff, error)

	// Revert undoes every step of an open transaction in reverse order.
	// Reverting a closed or unknown transaction is a no-op.
	Revert(ctx context.Context, txn journal.TxnID)

	// HasSteps reports whether an open transaction has recorded steps.
	HasSteps(txn journal.TxnID) bool

	// Reconcile renames entities according to m. The whole map is validated
	// before anything changes.
	Reconcile(ctx context.Context, m graph.IDMap, opts ...MutationOption) error

	// Apply replays an op received from another replica with suppression.
	Apply(ctx context.Context, op Op) error

	// Snapshot returns a sorted deep copy of the store's state.
	Snapshot() Snapshot
}

// Broadcaster receives one Op per non-suppressed mutation.
type Broadcaster interface {
	Broadcast(ctx context.Context, op Op)
}

// Observer is notified after each applied mutation. It is used for metrics.
type Observer interface {
	ObserveMutation(op OpName, suppressed bool)
}
