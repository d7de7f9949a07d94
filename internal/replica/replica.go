// Package replica keeps graph stores in different replicas in step by
// exchanging mutation ops over a pubsub.Bus.
//
// A Sync is both the store's Broadcaster, publishing every non-suppressed
// mutation as a JSON {opName, payload} message, and a subscriber that
// replays messages from other replicas with suppression so that they are
// neither journaled nor echoed back.
//
// Concurrent edits of the same property on different replicas resolve as
// last write wins, in whatever order each replica drains its messages.
// There is no causal ordering across replicas.
package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/pubsub"
)

// Directions reported to an Observer.
const (
	DirectionOut = "out"
	DirectionIn  = "in"
)

// Store is a graph store whose broadcaster can be replaced after
// construction.
type Store interface {
	graphstore.Store
	SetBroadcaster(b graphstore.Broadcaster)
}

// Observer is notified for every op sent or received.
type Observer interface {
	ObserveBroadcast(direction string, op graphstore.OpName, err error)
}

// Option configures a Sync.
type Option func(*Sync)

// WithObserver sets the broadcast observer.
func WithObserver(o Observer) Option {
	return func(s *Sync) { s.observer = o }
}

// Sync binds one store to one topic on a bus.
type Sync struct {
	store    Store
	bus      pubsub.Bus
	topic    string
	observer Observer

	mu          sync.Mutex
	unsubscribe func()
}

var _ graphstore.Broadcaster = (*Sync)(nil)

// Attach subscribes to topic on bus and installs the Sync as the store's
// broadcaster.
func Attach(ctx context.Context, store Store, bus pubsub.Bus, topic string, opts ...Option) (*Sync, error) {
	s := &Sync{store: store, bus: bus, topic: topic}
	for _, opt := range opts {
		opt(s)
	}

	unsubscribe, err := bus.Subscribe(topic, s.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %q: %w", topic, err)
	}
	s.unsubscribe = unsubscribe
	store.SetBroadcaster(s)

	ctxlog.FromContext(ctx).Info("Replica attached.", "replica", bus.ID(), "topic", topic)
	return s, nil
}

// Broadcast implements graphstore.Broadcaster. Failures are logged; the
// local mutation has already been applied and is not rolled back.
func (s *Sync) Broadcast(ctx context.Context, op graphstore.Op) {
	body, err := json.Marshal(op)
	if err == nil {
		err = s.bus.Publish(ctx, s.topic, body)
	}
	s.observe(DirectionOut, op.Name, err)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Failed to broadcast op.", "replica", s.bus.ID(), "topic", s.topic, "op", op.Name, "error", err)
	}
}

func (s *Sync) handle(ctx context.Context, msg pubsub.Message) {
	logger := ctxlog.FromContext(ctx)

	var op graphstore.Op
	if err := json.Unmarshal(msg.Body, &op); err != nil {
		s.observe(DirectionIn, "", err)
		logger.Error("Discarding undecodable op.", "replica", s.bus.ID(), "origin", msg.Origin, "error", err)
		return
	}
	err := s.store.Apply(ctx, op)
	s.observe(DirectionIn, op.Name, err)
	if err != nil {
		logger.Warn("Failed to apply remote op.", "replica", s.bus.ID(), "origin", msg.Origin, "op", op.Name, "error", err)
		return
	}
	logger.Debug("Remote op applied.", "replica", s.bus.ID(), "origin", msg.Origin, "op", op.Name)
}

func (s *Sync) observe(direction string, op graphstore.OpName, err error) {
	if s.observer != nil {
		s.observer.ObserveBroadcast(direction, op, err)
	}
}

// Detach unsubscribes and removes the Sync from the store. It is safe to
// call more than once.
func (s *Sync) Detach() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe == nil {
		return
	}
	unsubscribe()
	s.store.SetBroadcaster(nil)
}
