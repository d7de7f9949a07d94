// Package session defines the editing session: the unit that owns one
// replica's graph store and ties it to the expression evaluator, the
// persistence bridge and, optionally, a broadcast bus.
//
// A typical edit runs through a session like this:
//
//	txn := s.Store().Begin()
//	s.Store().CreateVertex(ctx, txn, ...)   // optimistic, broadcast to peers
//	s.Persist(ctx, txn)                      // commit → bridge → reconcile
//
// Implementations live in other packages (see internal/localsession).
package session

import (
	"context"
	"errors"

	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/expr"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/pubsub"
)

// ErrNoDatabase is returned by Persist when the session has no backing
// database.
var ErrNoDatabase = errors.New("session has no database")

// Factory creates sessions. db may be nil for a session that never
// persists, and bus may be nil for a session that does not sync.
type Factory interface {
	NewSession(ctx context.Context, db bridge.Database, bus pubsub.Bus) (Session, error)
}

// Session is one replica's editing context.
type Session interface {
	// Store returns the session's graph store.
	Store() graphstore.Store

	// Evaluate runs a query expression against the store. Malformed
	// expressions are logged and yield an empty result.
	Evaluate(ctx context.Context, src string, in expr.Input) []expr.Result

	// Persist commits txn, submits its diff through the persistence bridge
	// and reconciles the ids the database assigned. An empty diff does not
	// reach the database. When the bridge fails the optimistic local state
	// is kept and the error returned.
	Persist(ctx context.Context, txn journal.TxnID) (graph.IDMap, error)

	// Close detaches the session from its bus. It accepts a context to
	// allow for graceful cleanup operations.
	Close(ctx context.Context) error
}
