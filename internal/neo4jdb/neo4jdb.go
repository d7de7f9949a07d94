package neo4jdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
)

const transientPrefix = "Neo.TransientError."

// Config holds connection settings.
type Config struct {
	URI      string `validate:"required"`
	Username string
	Password string
	// Database selects the database; empty means the server default.
	Database string
}

// DB is a bridge.Database backed by a Neo4j driver.
type DB struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ bridge.Database = (*DB)(nil)

// Open creates a driver for cfg and verifies the server is reachable.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, &bridge.ConnectivityError{Err: err}
	}
	ctxlog.FromContext(ctx).Info("Connected to Neo4j.", "uri", cfg.URI, "database", cfg.Database)
	return New(driver, cfg.Database), nil
}

// New wraps an existing driver.
func New(driver neo4j.DriverWithContext, database string) *DB {
	return &DB{driver: driver, database: database}
}

// Close closes the driver.
func (db *DB) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}

// Begin opens a write session and an explicit transaction on it.
func (db *DB) Begin(ctx context.Context) (bridge.Tx, error) {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: db.database,
	})
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)
		return nil, classify(err)
	}
	return &txn{session: session, tx: tx}, nil
}

type txn struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
}

// Apply runs the diff inside the transaction. Deletions run first so that
// detached relationships never block node removal.
func (t *txn) Apply(ctx context.Context, diff *graph.Diff) (graph.IDMap, error) {
	m := graph.NewIDMap()

	for _, id := range diff.DeletedEdgeIDs {
		if err := t.exec(ctx, deleteRelQuery, map[string]any{"id": id}); err != nil {
			return graph.IDMap{}, fmt.Errorf("delete relationship %q: %w", id, err)
		}
	}
	for _, id := range diff.DeletedVertexIDs {
		if err := t.exec(ctx, deleteNodeQuery, map[string]any{"id": id}); err != nil {
			return graph.IDMap{}, fmt.Errorf("delete node %q: %w", id, err)
		}
	}

	for _, v := range diff.CreatedVertices {
		props, err := propertyParams(v.Props)
		if err != nil {
			return graph.IDMap{}, fmt.Errorf("create node %q: %w", v.ID, err)
		}
		id, err := t.single(ctx, createNodeCypher(v.Labels), map[string]any{"props": props})
		if err != nil {
			return graph.IDMap{}, fmt.Errorf("create node %q: %w", v.ID, err)
		}
		m.Vertices[v.ID] = id
	}
	for _, v := range diff.UpdatedVertices {
		if err := t.updateNode(ctx, v); err != nil {
			return graph.IDMap{}, fmt.Errorf("update node %q: %w", v.ID, err)
		}
	}

	for _, e := range diff.CreatedEdges {
		props, err := propertyParams(e.Props)
		if err != nil {
			return graph.IDMap{}, fmt.Errorf("create relationship %q: %w", e.ID, err)
		}
		id, err := t.single(ctx, createRelCypher(e.Type), map[string]any{
			"start": m.Vertex(e.Start),
			"end":   m.Vertex(e.End),
			"props": props,
		})
		if err != nil {
			return graph.IDMap{}, fmt.Errorf("create relationship %q: %w", e.ID, err)
		}
		m.Edges[e.ID] = id
	}
	for _, e := range diff.UpdatedEdges {
		props, err := propertyParams(e.Props)
		if err != nil {
			return graph.IDMap{}, fmt.Errorf("update relationship %q: %w", e.ID, err)
		}
		if _, err := t.single(ctx, updateRelQuery, map[string]any{"id": e.ID, "props": props}); err != nil {
			return graph.IDMap{}, fmt.Errorf("update relationship %q: %w", e.ID, err)
		}
	}

	ctxlog.FromContext(ctx).Debug("Diff applied to Neo4j transaction.",
		"vertices_created", len(m.Vertices), "edges_created", len(m.Edges))
	return m, nil
}

func (t *txn) updateNode(ctx context.Context, v *graph.Vertex) error {
	props, err := propertyParams(v.Props)
	if err != nil {
		return err
	}
	result, err := t.tx.Run(ctx, nodeLabelsQuery, map[string]any{"id": v.ID})
	if err != nil {
		return classify(err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return notFound(err)
	}
	raw, _ := record.Get("labels")
	var current []string
	if items, ok := raw.([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok {
				current = append(current, s)
			}
		}
	}
	_, err = t.single(ctx, updateNodeCypher(current, v.Labels), map[string]any{"id": v.ID, "props": props})
	return err
}

// single runs a statement that returns exactly one id column.
func (t *txn) single(ctx context.Context, cypher string, params map[string]any) (string, error) {
	result, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return "", classify(err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return "", notFound(err)
	}
	id, _, err := neo4j.GetRecordValue[string](record, "id")
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *txn) exec(ctx context.Context, cypher string, params map[string]any) error {
	result, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return classify(err)
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return classify(err)
	}
	counters := summary.Counters()
	if counters.NodesDeleted()+counters.RelationshipsDeleted() == 0 {
		return graph.ErrNotFound
	}
	return nil
}

func (t *txn) Commit(ctx context.Context) error {
	return classify(t.tx.Commit(ctx))
}

func (t *txn) Rollback(ctx context.Context) error {
	return classify(t.tx.Rollback(ctx))
}

// Close releases the transaction and its session.
func (t *txn) Close(ctx context.Context) error {
	return errors.Join(t.tx.Close(ctx), t.session.Close(ctx))
}

// notFound maps an empty single-record result to graph.ErrNotFound and
// classifies every other failure.
func notFound(err error) error {
	if isTransient(err) || neo4j.IsConnectivityError(err) {
		return classify(err)
	}
	return fmt.Errorf("%w: %v", graph.ErrNotFound, err)
}

// classify wraps driver errors into the bridge error kinds.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isTransient(err):
		return &bridge.ConflictError{Err: err}
	case neo4j.IsConnectivityError(err):
		return &bridge.ConnectivityError{Err: err}
	}
	return err
}

func isTransient(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && strings.HasPrefix(neoErr.Code, transientPrefix)
}
