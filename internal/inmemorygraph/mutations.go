package inmemorygraph

import (
	"context"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
	"github.com/specialistvlad/graphkit/internal/value"
)

// CreateVertex adds a vertex, assigning a temporary id when none is given.
func (s *Store) CreateVertex(ctx context.Context, txn journal.TxnID, in graphstore.VertexInput, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	o := graphstore.ApplyOptions(opts)
	const op = graphstore.OpCreateVertex

	s.mu.Lock()
	if err := s.checkTxn(op, txn, o); err != nil {
		s.mu.Unlock()
		return noResult, err
	}
	id := in.ID
	if id == "" {
		id = s.nextVertexID()
	}
	if _, exists := s.vertices[id]; exists {
		s.mu.Unlock()
		return noResult, graph.NewValidationError(string(op), id, graph.ErrIDCollision)
	}
	v := graph.NewVertex(id, uniqueLabels(in.Labels), in.Props)
	s.insertVertex(v, nil)
	idx := s.record(txn, o, journal.Step{Kind: journal.CreateVertex, TargetID: id, After: v.Clone()})
	wire, err := graphstore.VertexOp(v)
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Vertex created.", "id", id, "labels", v.Labels, "txn", txn, "suppressed", o.Suppressed)
	s.emit(ctx, o, wire, err)
	return graphstore.MutationResult{ID: id, StepIndex: idx}, nil
}

// MergeVertexProperties performs a shallow union of props into the vertex.
func (s *Store) MergeVertexProperties(ctx context.Context, txn journal.TxnID, id string, props *value.Map, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	return s.updateVertex(ctx, graphstore.OpMergeVertexProperties, txn, id, props, opts, (*value.Map).Merge)
}

// ReplaceVertexProperties swaps the vertex's properties for props.
func (s *Store) ReplaceVertexProperties(ctx context.Context, txn journal.TxnID, id string, props *value.Map, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	return s.updateVertex(ctx, graphstore.OpReplaceVertexProperties, txn, id, props, opts, (*value.Map).Reconcile)
}

func (s *Store) updateVertex(
	ctx context.Context,
	op graphstore.OpName,
	txn journal.TxnID,
	id string,
	props *value.Map,
	opts []graphstore.MutationOption,
	apply func(dst, src *value.Map),
) (graphstore.MutationResult, error) {
	o := graphstore.ApplyOptions(opts)
	if props == nil {
		props = value.NewMap()
	}

	s.mu.Lock()
	if err := s.checkTxn(op, txn, o); err != nil {
		s.mu.Unlock()
		return noResult, err
	}
	v, ok := s.vertices[id]
	if !ok {
		s.mu.Unlock()
		return noResult, graph.NewValidationError(string(op), id, graph.ErrNotFound)
	}
	before := v.Clone()
	apply(v.Props, props)
	idx := s.record(txn, o, journal.Step{Kind: journal.UpdateVertex, TargetID: id, Before: before, After: v.Clone()})
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Vertex properties updated.", "op", op, "id", id, "txn", txn, "suppressed", o.Suppressed)
	wire, err := graphstore.NewOp(op, graphstore.PropsPayload{ID: id, Props: props})
	s.emit(ctx, o, wire, err)
	return graphstore.MutationResult{ID: id, StepIndex: idx}, nil
}

// DeleteVertex removes a vertex and cascades to every incident edge.
func (s *Store) DeleteVertex(ctx context.Context, txn journal.TxnID, id string, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	o := graphstore.ApplyOptions(opts)
	const op = graphstore.OpDeleteVertex

	s.mu.Lock()
	if err := s.checkTxn(op, txn, o); err != nil {
		s.mu.Unlock()
		return noResult, err
	}
	v, ok := s.vertices[id]
	if !ok {
		s.mu.Unlock()
		return noResult, graph.NewValidationError(string(op), id, graph.ErrNotFound)
	}
	cascaded := incidentEdges(v)
	for _, edgeID := range cascaded {
		s.deleteEdgeLocked(txn, edgeID, o)
	}
	before := v.Clone()
	positions := s.removeVertex(id)
	idx := s.record(txn, o, journal.Step{
		Kind:     journal.DeleteVertex,
		TargetID: id,
		Before:   before,
		Restore:  journal.Restore{LabelPositions: positions},
	})
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Vertex deleted.", "id", id, "cascaded_edges", len(cascaded), "txn", txn, "suppressed", o.Suppressed)
	wire, err := graphstore.NewOp(op, graphstore.IDPayload{ID: id})
	s.emit(ctx, o, wire, err)
	return graphstore.MutationResult{ID: id, StepIndex: idx}, nil
}

// CreateEdge adds an edge between two existing vertices.
func (s *Store) CreateEdge(ctx context.Context, txn journal.TxnID, in graphstore.EdgeInput, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	o := graphstore.ApplyOptions(opts)
	const op = graphstore.OpCreateEdge

	if in.Type == "" || in.Start == "" || in.End == "" {
		return noResult, graph.NewValidationError(string(op), in.ID, graph.ErrMissingField)
	}

	s.mu.Lock()
	if err := s.checkTxn(op, txn, o); err != nil {
		s.mu.Unlock()
		return noResult, err
	}
	for _, endpoint := range []string{in.Start, in.End} {
		if _, ok := s.vertices[endpoint]; !ok {
			s.mu.Unlock()
			return noResult, graph.NewValidationError(string(op), endpoint, graph.ErrNotFound)
		}
	}
	id := in.ID
	if id == "" {
		id = s.nextEdgeID()
	}
	if _, exists := s.edges[id]; exists {
		s.mu.Unlock()
		return noResult, graph.NewValidationError(string(op), id, graph.ErrIDCollision)
	}
	e := &graph.Edge{ID: id, Type: in.Type, Start: in.Start, End: in.End, Props: in.Props.Clone()}
	s.insertEdge(e, -1, -1)
	idx := s.record(txn, o, journal.Step{Kind: journal.CreateEdge, TargetID: id, After: e.Clone()})
	wire, err := graphstore.EdgeOp(e)
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Edge created.", "id", id, "type", in.Type, "start", in.Start, "end", in.End, "txn", txn, "suppressed", o.Suppressed)
	s.emit(ctx, o, wire, err)
	return graphstore.MutationResult{ID: id, StepIndex: idx}, nil
}

// ReplaceEdgeProperties swaps the edge's properties for props.
func (s *Store) ReplaceEdgeProperties(ctx context.Context, txn journal.TxnID, id string, props *value.Map, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	o := graphstore.ApplyOptions(opts)
	const op = graphstore.OpReplaceEdgeProperties
	if props == nil {
		props = value.NewMap()
	}

	s.mu.Lock()
	if err := s.checkTxn(op, txn, o); err != nil {
		s.mu.Unlock()
		return noResult, err
	}
	e, ok := s.edges[id]
	if !ok {
		s.mu.Unlock()
		return noResult, graph.NewValidationError(string(op), id, graph.ErrNotFound)
	}
	before := e.Clone()
	e.Props.Reconcile(props)
	idx := s.record(txn, o, journal.Step{Kind: journal.UpdateEdge, TargetID: id, Before: before, After: e.Clone()})
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Edge properties replaced.", "id", id, "txn", txn, "suppressed", o.Suppressed)
	wire, err := graphstore.NewOp(op, graphstore.PropsPayload{ID: id, Props: props})
	s.emit(ctx, o, wire, err)
	return graphstore.MutationResult{ID: id, StepIndex: idx}, nil
}

// DeleteEdge removes an edge from the edge map and both adjacency lists.
func (s *Store) DeleteEdge(ctx context.Context, txn journal.TxnID, id string, opts ...graphstore.MutationOption) (graphstore.MutationResult, error) {
	o := graphstore.ApplyOptions(opts)
	const op = graphstore.OpDeleteEdge

	s.mu.Lock()
	if err := s.checkTxn(op, txn, o); err != nil {
		s.mu.Unlock()
		return noResult, err
	}
	if _, ok := s.edges[id]; !ok {
		s.mu.Unlock()
		return noResult, graph.NewValidationError(string(op), id, graph.ErrNotFound)
	}
	idx := s.deleteEdgeLocked(txn, id, o)
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Edge deleted.", "id", id, "txn", txn, "suppressed", o.Suppressed)
	wire, err := graphstore.NewOp(op, graphstore.IDPayload{ID: id})
	s.emit(ctx, o, wire, err)
	return graphstore.MutationResult{ID: id, StepIndex: idx}, nil
}

func (s *Store) deleteEdgeLocked(txn journal.TxnID, id string, o graphstore.MutationOptions) int {
	e, ok := s.edges[id]
	if !ok {
		return -1
	}
	before := e.Clone()
	outPos, inPos := s.removeEdge(id)
	return s.record(txn, o, journal.Step{
		Kind:     journal.DeleteEdge,
		TargetID: id,
		Before:   before,
		Restore:  journal.Restore{OutPosition: outPos, InPosition: inPos},
	})
}

var noResult = graphstore.MutationResult{StepIndex: -1}

// checkTxn rejects journaled mutations under a transaction that is not open.
func (s *Store) checkTxn(op graphstore.OpName, txn journal.TxnID, o graphstore.MutationOptions) error {
	if txn == journal.Immediate || o.Suppressed {
		return nil
	}
	if !s.journal.IsOpen(txn) {
		return graph.NewValidationError(string(op), "", graph.ErrTransactionClosed)
	}
	return nil
}

// record appends step to txn and returns its index, or -1 when the call is
// immediate or suppressed.
func (s *Store) record(txn journal.TxnID, o graphstore.MutationOptions, step journal.Step) int {
	if txn == journal.Immediate || o.Suppressed {
		return -1
	}
	idx, err := s.journal.Append(txn, step)
	if err != nil {
		return -1
	}
	return idx
}

func (s *Store) nextVertexID() string {
	for {
		if id := s.ids.NextID(); s.vertices[id] == nil {
			return id
		}
	}
}

func (s *Store) nextEdgeID() string {
	for {
		if id := s.ids.NextID(); s.edges[id] == nil {
			return id
		}
	}
}

// emit reports a mutation to the observer and, unless suppressed, hands
// the op to the broadcaster. It is called without s.mu held.
func (s *Store) emit(ctx context.Context, o graphstore.MutationOptions, op graphstore.Op, encodeErr error) {
	s.hooksMu.RLock()
	broadcaster, observer := s.broadcaster, s.observer
	s.hooksMu.RUnlock()

	if observer != nil {
		observer.ObserveMutation(op.Name, o.Suppressed)
	}
	if o.Suppressed || broadcaster == nil {
		return
	}
	if encodeErr != nil {
		ctxlog.FromContext(ctx).Error("Failed to encode broadcast op.", "op", op.Name, "error", encodeErr)
		return
	}
	broadcaster.Broadcast(ctx, op)
}
