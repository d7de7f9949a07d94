package inmemorygraph

import (
	"context"
	"slices"
	"sort"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
)

const opReconcile = string(graphstore.OpReconcileIDs)

// Reconcile renames vertices and edges from old to new ids. The whole map is
// validated first; on error nothing changes. After renaming, lookups by an
// old id fail and every reference (edge endpoints, neighbor adjacency, label
// index, open journal steps) uses the new id.
func (s *Store) Reconcile(ctx context.Context, m graph.IDMap, opts ...graphstore.MutationOption) error {
	o := graphstore.ApplyOptions(opts)
	vertexRenames := sortedRenames(m.Vertices)
	edgeRenames := sortedRenames(m.Edges)

	s.mu.Lock()
	if err := validateRenames(vertexRenames, func(id string) bool { return s.vertices[id] != nil }); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := validateRenames(edgeRenames, func(id string) bool { return s.edges[id] != nil }); err != nil {
		s.mu.Unlock()
		return err
	}

	for _, r := range vertexRenames {
		s.renameVertex(r.from, r.to)
	}
	for _, r := range edgeRenames {
		s.renameEdge(r.from, r.to)
	}
	s.journal.RewriteIDs(m)
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Ids reconciled.", "vertices", len(vertexRenames), "edges", len(edgeRenames), "suppressed", o.Suppressed)
	wire, err := graphstore.NewOp(graphstore.OpReconcileIDs, m)
	s.emit(ctx, o, wire, err)
	return nil
}

type rename struct{ from, to string }

func sortedRenames(table map[string]string) []rename {
	out := make([]rename, 0, len(table))
	for from, to := range table {
		if from != to {
			out = append(out, rename{from: from, to: to})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].from < out[j].from })
	return out
}

func validateRenames(renames []rename, exists func(string) bool) error {
	targets := make(map[string]struct{}, len(renames))
	for _, r := range renames {
		if r.from == "" || r.to == "" {
			return graph.NewValidationError(opReconcile, r.from, graph.ErrMissingField)
		}
		if !exists(r.from) {
			return graph.NewValidationError(opReconcile, r.from, graph.ErrNotFound)
		}
		if exists(r.to) {
			return graph.NewValidationError(opReconcile, r.to, graph.ErrIDCollision)
		}
		if _, dup := targets[r.to]; dup {
			return graph.NewValidationError(opReconcile, r.to, graph.ErrIDCollision)
		}
		targets[r.to] = struct{}{}
	}
	return nil
}

func (s *Store) renameVertex(from, to string) {
	v := s.vertices[from]
	delete(s.vertices, from)
	v.ID = to
	s.vertices[to] = v

	for _, label := range v.Labels {
		ids := s.labels[label]
		if i := slices.Index(ids, from); i >= 0 {
			ids[i] = to
		}
	}
	for _, t := range v.Out.Types() {
		for _, edgeID := range v.Out.IDs(t) {
			if e, ok := s.edges[edgeID]; ok && e.Start == from {
				e.Start = to
			}
		}
	}
	for _, t := range v.In.Types() {
		for _, edgeID := range v.In.IDs(t) {
			if e, ok := s.edges[edgeID]; ok && e.End == from {
				e.End = to
			}
		}
	}
}

func (s *Store) renameEdge(from, to string) {
	e := s.edges[from]
	delete(s.edges, from)
	e.ID = to
	s.edges[to] = e

	if start, ok := s.vertices[e.Start]; ok {
		start.Out.Rename(from, to)
	}
	if end, ok := s.vertices[e.End]; ok {
		end.In.Rename(from, to)
	}
}
