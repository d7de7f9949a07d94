// Package localsession provides a concrete implementation of the
// session.Session and session.Factory interfaces backed by an in-memory
// graph store.
package localsession

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/expr"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/inmemorygraph"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/pubsub"
	"github.com/specialistvlad/graphkit/internal/replica"
	"github.com/specialistvlad/graphkit/internal/session"
)

// DefaultTopic is the broadcast topic used when Factory.Topic is empty.
const DefaultTopic = "graph"

// Metrics is the union of the observers a session wires in. Any field of
// Factory left nil disables the matching observation.
type Metrics interface {
	graphstore.Observer
	expr.Observer
	replica.Observer
	bridge.Metrics
}

// Factory implements session.Factory for local, in-process stores.
type Factory struct {
	// Bridge is the retry policy used when persisting.
	Bridge bridge.Config
	// IDs generates temporary ids. When nil, a generator for IDStrategy is
	// used, scoped to the bus id when the session is synced.
	IDs graph.IDGenerator
	// IDStrategy is "counter" (the default) or "uuid".
	IDStrategy string
	// Topic is the broadcast topic shared by replicas of one document.
	Topic string
	// Metrics receives store, evaluator, sync and bridge observations.
	Metrics Metrics
}

var _ session.Factory = (*Factory)(nil)

// NewSession creates and wires a new local session.
func (f *Factory) NewSession(ctx context.Context, db bridge.Database, bus pubsub.Bus) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)

	storeOpts := []inmemorygraph.Option{}
	evalOpts := []expr.Option{}
	bridgeOpts := []bridge.Option{}
	syncOpts := []replica.Option{}
	ids := f.IDs
	if ids == nil {
		var scope string
		if bus != nil {
			scope = bus.ID()
		}
		ids = graph.NewIDGenerator(f.IDStrategy, scope)
	}
	storeOpts = append(storeOpts, inmemorygraph.WithIDGenerator(ids))
	if f.Metrics != nil {
		storeOpts = append(storeOpts, inmemorygraph.WithObserver(f.Metrics))
		evalOpts = append(evalOpts, expr.WithObserver(f.Metrics))
		bridgeOpts = append(bridgeOpts, bridge.WithMetrics(f.Metrics))
		syncOpts = append(syncOpts, replica.WithObserver(f.Metrics))
	}

	store := inmemorygraph.New(storeOpts...)
	s := &Session{
		store:     store,
		evaluator: expr.NewEvaluator(store, evalOpts...),
	}
	if db != nil {
		s.bridge = bridge.New(db, f.Bridge, bridgeOpts...)
	}
	if bus != nil {
		topic := f.Topic
		if topic == "" {
			topic = DefaultTopic
		}
		syncer, err := replica.Attach(ctx, store, bus, topic, syncOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to attach replica sync: %w", err)
		}
		s.sync = syncer
	}

	logger.Debug("Session created.", "persistent", s.bridge != nil, "synced", s.sync != nil)
	return s, nil
}

// Session implements session.Session.
type Session struct {
	store     *inmemorygraph.Store
	evaluator *expr.Evaluator
	bridge    *bridge.Bridge
	sync      *replica.Sync
}

var _ session.Session = (*Session)(nil)

// Store returns the underlying graph store.
func (s *Session) Store() graphstore.Store { return s.store }

// Evaluate runs src against the store.
func (s *Session) Evaluate(ctx context.Context, src string, in expr.Input) []expr.Result {
	return s.evaluator.Evaluate(ctx, src, in)
}

// Persist commits txn and writes its diff to the database.
func (s *Session) Persist(ctx context.Context, txn journal.TxnID) (graph.IDMap, error) {
	logger := ctxlog.FromContext(ctx).With("txn", uint64(txn))

	if s.bridge == nil {
		return graph.IDMap{}, session.ErrNoDatabase
	}
	diff, err := s.store.Commit(ctx, txn)
	if err != nil {
		return graph.IDMap{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if diff.Empty() {
		logger.Debug("Transaction has no net changes, nothing to persist.")
		return graph.NewIDMap(), nil
	}

	idMap, err := s.bridge.Apply(ctxlog.WithLogger(ctx, logger), diff)
	if err != nil {
		logger.Error("Persist failed, keeping optimistic state.", "error", err)
		return graph.IDMap{}, fmt.Errorf("failed to persist transaction: %w", err)
	}
	live, gone := s.splitResolvable(idMap)
	if !gone.Empty() {
		// Deleted during the round trip. Open transactions may still restore
		// them, and must do so under the ids the database now holds.
		logger.Warn("Entities deleted while persisting, skipping their renames.",
			"vertices", len(gone.Vertices), "edges", len(gone.Edges))
		s.store.Journal().RewriteIDs(gone)
	}
	if !live.Empty() {
		if err := s.store.Reconcile(ctx, live); err != nil {
			return idMap, fmt.Errorf("failed to reconcile ids: %w", err)
		}
	}
	logger.Info("Transaction persisted.", "diff_size", diff.Size(), "renamed", len(idMap.Vertices)+len(idMap.Edges))
	return idMap, nil
}

// splitResolvable separates the renames whose old id still resolves in the
// store from those whose entity is gone.
func (s *Session) splitResolvable(m graph.IDMap) (live, gone graph.IDMap) {
	live, gone = graph.NewIDMap(), graph.NewIDMap()
	for from, to := range m.Vertices {
		if _, ok := s.store.Vertex(from); ok {
			live.Vertices[from] = to
		} else {
			gone.Vertices[from] = to
		}
	}
	for from, to := range m.Edges {
		if _, ok := s.store.Edge(from); ok {
			live.Edges[from] = to
		} else {
			gone.Edges[from] = to
		}
	}
	return live, gone
}

// Close detaches replica sync, if any.
func (s *Session) Close(ctx context.Context) error {
	if s.sync != nil {
		s.sync.Detach()
	}
	ctxlog.FromContext(ctx).Debug("Session closed.")
	return nil
}
