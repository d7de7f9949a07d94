package bridge

import (
	"context"

	"github.com/specialistvlad/graphkit/internal/graph"
)

// Database hands out transactions against the backing graph database.
type Database interface {
	// Begin acquires a session and opens a write transaction on it.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one database transaction. Close releases the underlying session and
// must be called exactly once, after Commit or Rollback.
type Tx interface {
	// Apply writes the diff and returns the canonical ids assigned to
	// created vertices and edges, keyed by their local ids.
	Apply(ctx context.Context, diff *graph.Diff) (graph.IDMap, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close(ctx context.Context) error
}
