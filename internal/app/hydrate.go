package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/graphkit/internal/config"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/expr"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/session"
	"github.com/specialistvlad/graphkit/internal/value"
)

// QueryReport is the outcome of one query.
type QueryReport struct {
	Name       string        `json:"name"`
	Expression string        `json:"expression"`
	Results    []expr.Result `json:"results"`
}

// Report is written to the output once every query has run.
type Report struct {
	Replica  string              `json:"replica,omitempty"`
	IDMap    graph.IDMap         `json:"idMap"`
	Queries  []QueryReport       `json:"queries"`
	Snapshot graphstore.Snapshot `json:"snapshot"`
}

func propsOrEmpty(m *value.Map) *value.Map {
	if m == nil {
		return value.NewMap()
	}
	return m
}

// hydrate loads the seeded vertices and edges. Seeds are applied the way a
// server fetch would be, suppressed, unless the document asks for them to
// be persisted. In that case they go through one transaction and the ids
// the database assigned are returned.
func hydrate(ctx context.Context, s session.Session, m *config.Model) (graph.IDMap, error) {
	logger := ctxlog.FromContext(ctx)
	store := s.Store()

	persist := m.Replica != nil && m.Replica.PersistSeeds
	txn := journal.Immediate
	var opts []graphstore.MutationOption
	if persist {
		txn = store.Begin()
	} else {
		opts = append(opts, graphstore.Suppressed())
	}

	for _, v := range m.Vertices {
		in := graphstore.VertexInput{ID: v.ID, Labels: v.Labels, Props: propsOrEmpty(v.Properties)}
		if _, err := store.CreateVertex(ctx, txn, in, opts...); err != nil {
			store.Revert(ctx, txn)
			return graph.IDMap{}, fmt.Errorf("failed to seed vertex %q: %w", v.ID, err)
		}
	}
	for _, e := range m.Edges {
		in := graphstore.EdgeInput{ID: e.ID, Type: e.Type, Start: e.Start, End: e.End, Props: propsOrEmpty(e.Properties)}
		if _, err := store.CreateEdge(ctx, txn, in, opts...); err != nil {
			store.Revert(ctx, txn)
			return graph.IDMap{}, fmt.Errorf("failed to seed edge %q: %w", e.ID, err)
		}
	}
	logger.Info("Store hydrated.", "vertices", len(m.Vertices), "edges", len(m.Edges), "persisted", persist)

	if !persist {
		return graph.NewIDMap(), nil
	}
	idMap, err := s.Persist(ctx, txn)
	if errors.Is(err, session.ErrNoDatabase) {
		// Nothing to write to; keep the seeds as they are.
		logger.Warn("Seeds marked for persistence but no database is configured.")
		if _, err := store.Commit(ctx, txn); err != nil {
			return graph.IDMap{}, err
		}
		return graph.NewIDMap(), nil
	}
	if err != nil {
		return graph.IDMap{}, err
	}
	return idMap, nil
}

// buildInput resolves a query's input vertices and argument bindings. Ids
// are translated through idMap so documents can keep using seed ids after
// the database renamed them.
func buildInput(s session.Session, q *config.Query, idMap graph.IDMap) (expr.Input, error) {
	store := s.Store()
	lookup := func(ids []string) ([]*graph.Vertex, error) {
		out := make([]*graph.Vertex, 0, len(ids))
		for _, id := range ids {
			v, ok := store.Vertex(idMap.Vertex(id))
			if !ok {
				return nil, fmt.Errorf("vertex %q: %w", id, graph.ErrNotFound)
			}
			out = append(out, v)
		}
		return out, nil
	}

	from, err := lookup(q.From)
	if err != nil {
		return expr.Input{}, fmt.Errorf("query %q: %w", q.Name, err)
	}
	args := expr.NewArgs(nil)
	for name, e := range q.Filters {
		pred, err := expr.NewHCLPredicate(e)
		if err != nil {
			return expr.Input{}, fmt.Errorf("query %q filter %q: %w", q.Name, name, err)
		}
		args.Set(name, expr.FilterArg(pred))
	}
	for name, ids := range q.Binds {
		vertices, err := lookup(ids)
		if err != nil {
			return expr.Input{}, fmt.Errorf("query %q bind %q: %w", q.Name, name, err)
		}
		args.Set(name, expr.VertexArg(vertices...))
	}
	return expr.Input{Vertices: from, Args: args}, nil
}

// runQueries evaluates every query in document order.
func runQueries(ctx context.Context, s session.Session, queries []*config.Query, idMap graph.IDMap) ([]QueryReport, error) {
	reports := make([]QueryReport, 0, len(queries))
	for _, q := range queries {
		in, err := buildInput(s, q, idMap)
		if err != nil {
			return nil, err
		}
		results := s.Evaluate(ctx, q.Expression, in)
		if results == nil {
			results = []expr.Result{}
		}
		ctxlog.FromContext(ctx).Debug("Query evaluated.", "query", q.Name, "results", len(results))
		reports = append(reports, QueryReport{Name: q.Name, Expression: q.Expression, Results: results})
	}
	return reports, nil
}
