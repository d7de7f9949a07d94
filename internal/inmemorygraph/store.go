package inmemorygraph

import (
	"slices"
	"strings"
	"sync"

	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/value"
)

var _ graphstore.Store = (*Store)(nil)

// Store implements graphstore.Store using maps and a mutex.
type Store struct {
	mu       sync.RWMutex
	vertices map[string]*graph.Vertex
	edges    map[string]*graph.Edge
	labels   map[string][]string

	journal *journal.Journal
	ids     graph.IDGenerator

	hooksMu     sync.RWMutex
	broadcaster graphstore.Broadcaster
	observer    graphstore.Observer
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator used for temporary ids.
func WithIDGenerator(g graph.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithJournal sets the transaction journal.
func WithJournal(j *journal.Journal) Option {
	return func(s *Store) { s.journal = j }
}

// WithBroadcaster sets the receiver of non-suppressed mutation ops.
func WithBroadcaster(b graphstore.Broadcaster) Option {
	return func(s *Store) { s.broadcaster = b }
}

// WithObserver sets a mutation observer.
func WithObserver(o graphstore.Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New creates a new, empty in-memory graph store.
func New(opts ...Option) *Store {
	s := &Store{
		vertices: make(map[string]*graph.Vertex),
		edges:    make(map[string]*graph.Edge),
		labels:   make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.journal == nil {
		s.journal = journal.New()
	}
	if s.ids == nil {
		s.ids = &graph.Counter{}
	}
	return s
}

// SetBroadcaster replaces the broadcaster. Replica sync attaches itself
// through this after the store has been built.
func (s *Store) SetBroadcaster(b graphstore.Broadcaster) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.broadcaster = b
}

// SetObserver replaces the mutation observer.
func (s *Store) SetObserver(o graphstore.Observer) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.observer = o
}

// Vertex returns a copy of the vertex with the given id.
func (s *Store) Vertex(id string) (*graph.Vertex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vertices[id]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Edge returns a copy of the edge with the given id.
func (s *Store) Edge(id string) (*graph.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.edges[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// VerticesByLabel returns copies of the vertices carrying label, in label
// index order.
func (s *Store) VerticesByLabel(label string) []*graph.Vertex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.labels[label]
	out := make([]*graph.Vertex, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.vertices[id]; ok {
			out = append(out, v.Clone())
		}
	}
	return out
}

// FindVertices returns the vertices carrying label whose property key equals want.
func (s *Store) FindVertices(label, key string, want value.Value) []*graph.Vertex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*graph.Vertex
	for _, id := range s.labels[label] {
		v, ok := s.vertices[id]
		if !ok {
			continue
		}
		if got, present := v.Props.Get(key); present && got.Equal(want) {
			out = append(out, v.Clone())
		}
	}
	return out
}

// Snapshot returns a sorted deep copy of the store's state.
func (s *Store) Snapshot() graphstore.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := graphstore.Snapshot{
		Vertices: make([]*graph.Vertex, 0, len(s.vertices)),
		Edges:    make([]*graph.Edge, 0, len(s.edges)),
		Labels:   make(map[string][]string, len(s.labels)),
	}
	for _, v := range s.vertices {
		snap.Vertices = append(snap.Vertices, v.Clone())
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, e.Clone())
	}
	for label, ids := range s.labels {
		snap.Labels[label] = slices.Clone(ids)
	}
	slices.SortFunc(snap.Vertices, func(a, b *graph.Vertex) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Edges, func(a, b *graph.Edge) int { return strings.Compare(a.ID, b.ID) })
	return snap
}

// Begin opens a transaction.
func (s *Store) Begin() journal.TxnID {
	return s.journal.Begin()
}

// HasSteps reports whether an open transaction has recorded steps.
func (s *Store) HasSteps(txn journal.TxnID) bool {
	return s.journal.HasSteps(txn)
}

// Journal exposes the store's transaction journal.
func (s *Store) Journal() *journal.Journal {
	return s.journal
}
