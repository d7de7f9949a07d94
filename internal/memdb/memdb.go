package memdb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
)

// IDPrefix prefixes every id the database assigns.
const IDPrefix = "srv-"

// ErrTxClosed is returned when a transaction is used after Close.
var ErrTxClosed = errors.New("transaction already closed")

// Stats counts transaction lifecycle events.
type Stats struct {
	Acquired   int
	Released   int
	Committed  int
	RolledBack int
}

// Node is a stored vertex: labels and properties, no adjacency.
type Node = graph.Vertex

// Relationship is a stored edge.
type Relationship = graph.Edge

// DB is a thread-safe in-memory graph database.
type DB struct {
	mu       sync.Mutex
	nodes    map[string]*Node
	rels     map[string]*Relationship
	next     int
	stats    Stats
	failures []error
	beginErr error
}

var _ bridge.Database = (*DB)(nil)

// New creates an empty database.
func New() *DB {
	return &DB{
		nodes: make(map[string]*Node),
		rels:  make(map[string]*Relationship),
	}
}

// FailNext queues errors returned by the next Tx.Apply calls, one per call.
func (db *DB) FailNext(errs ...error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures = append(db.failures, errs...)
}

// FailBegin makes every Begin fail with err until called with nil.
func (db *DB) FailBegin(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.beginErr = err
}

// Stats returns a copy of the lifecycle counters.
func (db *DB) Stats() Stats {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.stats
}

// Node returns a copy of the stored node.
func (db *DB) Node(id string) (*Node, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.nodes[id]
	return n.Clone(), ok
}

// Relationship returns a copy of the stored relationship.
func (db *DB) Relationship(id string) (*Relationship, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.rels[id]
	return r.Clone(), ok
}

// Counts returns the number of stored nodes and relationships.
func (db *DB) Counts() (nodes, relationships int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.nodes), len(db.rels)
}

// Begin implements bridge.Database.
func (db *DB) Begin(ctx context.Context) (bridge.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.stats.Acquired++
	ctxlog.FromContext(ctx).Debug("memdb transaction acquired.", "acquired", db.stats.Acquired)
	return &tx{db: db}, nil
}

func (db *DB) newID() string {
	db.next++
	return IDPrefix + strconv.Itoa(db.next)
}

type tx struct {
	db     *DB
	staged *graph.Diff
	idMap  graph.IDMap
	done   bool
	closed bool
}

// Apply validates the diff against committed state, reserves ids for
// created entities and stages the diff until Commit.
func (t *tx) Apply(_ context.Context, diff *graph.Diff) (graph.IDMap, error) {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.closed || t.done {
		return graph.IDMap{}, ErrTxClosed
	}
	if len(db.failures) > 0 {
		err := db.failures[0]
		db.failures = db.failures[1:]
		return graph.IDMap{}, err
	}

	m := graph.NewIDMap()
	for _, v := range diff.CreatedVertices {
		m.Vertices[v.ID] = db.newID()
	}
	for _, e := range diff.CreatedEdges {
		m.Edges[e.ID] = db.newID()
	}

	nodeExists := func(id string) bool {
		_, created := m.Vertices[id]
		return created || db.nodes[id] != nil
	}
	for _, e := range diff.CreatedEdges {
		if !nodeExists(e.Start) || !nodeExists(e.End) {
			return graph.IDMap{}, fmt.Errorf("create relationship %q: endpoint %w", e.ID, graph.ErrNotFound)
		}
	}
	for _, v := range diff.UpdatedVertices {
		if db.nodes[v.ID] == nil {
			return graph.IDMap{}, fmt.Errorf("update node %q: %w", v.ID, graph.ErrNotFound)
		}
	}
	for _, e := range diff.UpdatedEdges {
		if db.rels[e.ID] == nil {
			return graph.IDMap{}, fmt.Errorf("update relationship %q: %w", e.ID, graph.ErrNotFound)
		}
	}

	t.staged = diff
	t.idMap = m
	return m, nil
}

// Commit writes the staged diff.
func (t *tx) Commit(_ context.Context) error {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.closed || t.done {
		return ErrTxClosed
	}
	t.done = true
	db.stats.Committed++
	if t.staged == nil {
		return nil
	}
	diff, m := t.staged, t.idMap

	for _, v := range diff.CreatedVertices {
		db.nodes[m.Vertex(v.ID)] = graph.NewVertex(m.Vertex(v.ID), v.Labels, v.Props)
	}
	for _, v := range diff.UpdatedVertices {
		db.nodes[v.ID] = graph.NewVertex(v.ID, v.Labels, v.Props)
	}
	for _, e := range diff.CreatedEdges {
		db.rels[m.Edge(e.ID)] = &Relationship{
			ID:    m.Edge(e.ID),
			Type:  e.Type,
			Start: m.Vertex(e.Start),
			End:   m.Vertex(e.End),
			Props: e.Props.Clone(),
		}
	}
	for _, e := range diff.UpdatedEdges {
		db.rels[e.ID].Props = e.Props.Clone()
	}
	for _, id := range diff.DeletedEdgeIDs {
		delete(db.rels, id)
	}
	for _, id := range diff.DeletedVertexIDs {
		delete(db.nodes, id)
		for relID, r := range db.rels {
			if r.Start == id || r.End == id {
				delete(db.rels, relID)
			}
		}
	}
	return nil
}

// Rollback discards the staged diff.
func (t *tx) Rollback(_ context.Context) error {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.closed || t.done {
		return ErrTxClosed
	}
	t.done = true
	t.staged = nil
	db.stats.RolledBack++
	return nil
}

// Close releases the transaction. An uncommitted transaction is discarded.
func (t *tx) Close(_ context.Context) error {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true
	db.stats.Released++
	return nil
}

// NodeIDs returns the stored node ids, sorted.
func (db *DB) NodeIDs() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	ids := make([]string, 0, len(db.nodes))
	for id := range db.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
