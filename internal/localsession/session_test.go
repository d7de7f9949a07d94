package localsession_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/expr"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/localsession"
	"github.com/specialistvlad/graphkit/internal/memdb"
	"github.com/specialistvlad/graphkit/internal/pubsub"
	"github.com/specialistvlad/graphkit/internal/session"
	"github.com/specialistvlad/graphkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory() *localsession.Factory {
	return &localsession.Factory{Bridge: bridge.Config{MaxAttempts: 3, Backoff: time.Millisecond}}
}

// editPages opens a transaction that creates two pages linked by a
// ParentPage edge and returns the transaction with the temporary ids.
func editPages(t *testing.T, s session.Session) (journal.TxnID, []string) {
	t.Helper()
	ctx := context.Background()
	store := s.Store()
	txn := store.Begin()

	child, err := store.CreateVertex(ctx, txn, graphstore.VertexInput{Labels: []string{"Page"}, Props: value.MapOf("name", "Child")})
	require.NoError(t, err)
	parent, err := store.CreateVertex(ctx, txn, graphstore.VertexInput{Labels: []string{"Page"}, Props: value.MapOf("name", "Parent")})
	require.NoError(t, err)
	edge, err := store.CreateEdge(ctx, txn, graphstore.EdgeInput{Type: "ParentPage", Start: child.ID, End: parent.ID})
	require.NoError(t, err)
	return txn, []string{child.ID, parent.ID, edge.ID}
}

func TestPersistReconcilesAssignedIDs(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	s, err := newFactory().NewSession(ctx, db, nil)
	require.NoError(t, err)
	defer s.Close(ctx)

	txn, tmp := editPages(t, s)
	m, err := s.Persist(ctx, txn)
	require.NoError(t, err)
	require.Len(t, m.Vertices, 2)
	require.Len(t, m.Edges, 1)

	store := s.Store()
	for _, id := range tmp[:2] {
		_, ok := store.Vertex(id)
		assert.False(t, ok, "temporary id %s is gone", id)
		v, ok := store.Vertex(m.Vertex(id))
		require.True(t, ok)
		stored, ok := db.Node(v.ID)
		require.True(t, ok)
		assert.True(t, v.Props.Equal(stored.Props))
	}
	e, ok := store.Edge(m.Edge(tmp[2]))
	require.True(t, ok)
	assert.Equal(t, m.Vertex(tmp[0]), e.Start)
	assert.Equal(t, m.Vertex(tmp[1]), e.End)

	pages := s.Evaluate(ctx, "Page", expr.Input{})
	assert.Len(t, pages, 2)

	child, _ := store.Vertex(m.Vertex(tmp[0]))
	parents := expr.Vertices(s.Evaluate(ctx, "->ParentPage", expr.Input{Vertices: []*graph.Vertex{child}}))
	require.Len(t, parents, 1)
	assert.Equal(t, m.Vertex(tmp[1]), parents[0].ID)
	assert.Equal(t, memdb.Stats{Acquired: 1, Released: 1, Committed: 1}, db.Stats())
}

// hookDB runs before once, ahead of the first Begin, to simulate edits made
// while a commit is on its way to the database.
type hookDB struct {
	bridge.Database
	before func(ctx context.Context)
}

func (d *hookDB) Begin(ctx context.Context) (bridge.Tx, error) {
	if d.before != nil {
		hook := d.before
		d.before = nil
		hook(ctx)
	}
	return d.Database.Begin(ctx)
}

func TestPersistToleratesDeletesDuringRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	hooked := &hookDB{Database: db}
	s, err := newFactory().NewSession(ctx, hooked, nil)
	require.NoError(t, err)
	store := s.Store()

	txn := store.Begin()
	kept, err := store.CreateVertex(ctx, txn, graphstore.VertexInput{Labels: []string{"Page"}, Props: value.MapOf("name", "Kept")})
	require.NoError(t, err)
	dropped, err := store.CreateVertex(ctx, txn, graphstore.VertexInput{Labels: []string{"Page"}, Props: value.MapOf("name", "Dropped")})
	require.NoError(t, err)

	pending := store.Begin()
	hooked.before = func(ctx context.Context) {
		_, err := store.DeleteVertex(ctx, pending, dropped.ID)
		require.NoError(t, err)
	}

	m, err := s.Persist(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{kept.ID: "srv-1", dropped.ID: "srv-2"}, m.Vertices)

	_, ok := store.Vertex(kept.ID)
	assert.False(t, ok, "surviving entities are renamed")
	_, ok = store.Vertex("srv-1")
	assert.True(t, ok)
	_, ok = store.Vertex("srv-2")
	assert.False(t, ok, "the deleted entity is not resurrected")

	store.Revert(ctx, pending)
	restored, ok := store.Vertex("srv-2")
	require.True(t, ok, "undoing the delete restores the entity under its database id")
	name, _ := restored.Props.Get("name")
	assert.Equal(t, "Dropped", name.Interface())

	edit := store.Begin()
	_, err = store.MergeVertexProperties(ctx, edit, "srv-1", value.MapOf("seen", true))
	require.NoError(t, err)
	_, err = s.Persist(ctx, edit)
	require.NoError(t, err, "later edits address the database id")
	node, ok := db.Node("srv-1")
	require.True(t, ok)
	seen, _ := node.Props.Get("seen")
	assert.Equal(t, true, seen.Interface())
}

func TestPersistSkipsEmptyTransaction(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	s, err := newFactory().NewSession(ctx, db, nil)
	require.NoError(t, err)

	store := s.Store()
	txn := store.Begin()
	res, err := store.CreateVertex(ctx, txn, graphstore.VertexInput{Labels: []string{"Page"}})
	require.NoError(t, err)
	_, err = store.DeleteVertex(ctx, txn, res.ID)
	require.NoError(t, err)

	m, err := s.Persist(ctx, txn)
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.Equal(t, memdb.Stats{}, db.Stats(), "a net-empty diff never reaches the database")
}

func TestPersistFailureKeepsOptimisticState(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	conflict := &bridge.ConflictError{Err: errors.New("deadlock")}
	db.FailNext(conflict, conflict, conflict)
	s, err := newFactory().NewSession(ctx, db, nil)
	require.NoError(t, err)

	txn, tmp := editPages(t, s)
	before := s.Store().Snapshot()

	_, err = s.Persist(ctx, txn)
	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrMaxRetries)
	assert.Equal(t, before, s.Store().Snapshot())
	_, ok := s.Store().Vertex(tmp[0])
	assert.True(t, ok)
	assert.Equal(t, memdb.Stats{Acquired: 3, Released: 3, RolledBack: 3}, db.Stats())
}

func TestPersistWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := newFactory().NewSession(ctx, nil, nil)
	require.NoError(t, err)

	txn, _ := editPages(t, s)
	_, err = s.Persist(ctx, txn)
	assert.ErrorIs(t, err, session.ErrNoDatabase)
	assert.True(t, s.Store().HasSteps(txn), "the transaction stays open")
}

func TestSyncedSessionsConverge(t *testing.T) {
	ctx := context.Background()
	hub := pubsub.NewHub()
	chanA, chanB := hub.Channel("a"), hub.Channel("b")
	db := memdb.New()

	f := newFactory()
	a, err := f.NewSession(ctx, db, chanA)
	require.NoError(t, err)
	b, err := f.NewSession(ctx, nil, chanB)
	require.NoError(t, err)

	txn, _ := editPages(t, a)
	chanB.Drain(ctx)
	assert.Equal(t, a.Store().Snapshot(), b.Store().Snapshot(), "optimistic edits reach the peer")

	_, err = a.Persist(ctx, txn)
	require.NoError(t, err)
	chanB.Drain(ctx)
	assert.Equal(t, a.Store().Snapshot(), b.Store().Snapshot(), "reconciled ids reach the peer")
	assert.Zero(t, chanA.Pending(), "no echo back to the origin")

	require.NoError(t, b.Close(ctx))
	_, err = a.Store().CreateVertex(ctx, journal.Immediate, graphstore.VertexInput{Labels: []string{"Section"}})
	require.NoError(t, err)
	assert.Zero(t, chanB.Drain(ctx), "a closed session no longer receives ops")
}

func TestSyncedSessionsCreateBeforeDraining(t *testing.T) {
	ctx := context.Background()
	hub := pubsub.NewHub()
	chanA, chanB := hub.Channel("a"), hub.Channel("b")

	f := newFactory()
	a, err := f.NewSession(ctx, memdb.New(), chanA)
	require.NoError(t, err)
	b, err := f.NewSession(ctx, nil, chanB)
	require.NoError(t, err)

	txn := a.Store().Begin()
	fromA, err := a.Store().CreateVertex(ctx, txn, graphstore.VertexInput{Labels: []string{"Page"}, Props: value.MapOf("name", "FromA")})
	require.NoError(t, err)
	fromB, err := b.Store().CreateVertex(ctx, journal.Immediate, graphstore.VertexInput{Labels: []string{"Page"}, Props: value.MapOf("name", "FromB")})
	require.NoError(t, err)
	require.NotEqual(t, fromA.ID, fromB.ID, "replicas mint distinct temporary ids")
	assert.True(t, graph.IsTemp(fromA.ID))

	chanA.Drain(ctx)
	chanB.Drain(ctx)
	assert.Len(t, a.Store().VerticesByLabel("Page"), 2)
	assert.Len(t, b.Store().VerticesByLabel("Page"), 2)

	m, err := a.Persist(ctx, txn)
	require.NoError(t, err)
	chanB.Drain(ctx)

	names := func(s session.Session) map[string]any {
		out := make(map[string]any)
		for _, v := range s.Store().VerticesByLabel("Page") {
			name, _ := v.Props.Get("name")
			out[v.ID] = name.Interface()
		}
		return out
	}
	want := map[string]any{m.Vertex(fromA.ID): "FromA", fromB.ID: "FromB"}
	assert.Equal(t, want, names(a))
	assert.Equal(t, want, names(b), "the rename only touches the persisted entity")
}
