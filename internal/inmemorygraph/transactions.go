package inmemorygraph

import (
	"context"
	"strconv"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
)

// Commit closes txn and returns the net diff of its steps. It does not
// contact any database.
func (s *Store) Commit(ctx context.Context, txn journal.TxnID) (*graph.Diff, error) {
	s.mu.Lock()
	closed, ok := s.journal.Close(txn, journal.Committed)
	s.mu.Unlock()
	if !ok {
		return nil, graph.NewValidationError("commit", strconv.FormatUint(uint64(txn), 10), graph.ErrTransactionClosed)
	}

	diff := journal.BuildDiff(closed.Steps)
	ctxlog.FromContext(ctx).Debug("Transaction committed.", "txn", txn, "steps", len(closed.Steps), "diff_size", diff.Size())
	return diff, nil
}

// Revert undoes every step of an open transaction, newest first, and
// broadcasts the inverse ops. Unknown or closed transactions are ignored.
func (s *Store) Revert(ctx context.Context, txn journal.TxnID) {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	closed, ok := s.journal.Close(txn, journal.Reverted)
	if !ok {
		s.mu.Unlock()
		logger.Debug("Revert ignored, transaction is not open.", "txn", txn)
		return
	}
	inverse := make([]graphstore.Op, 0, len(closed.Steps))
	for i := len(closed.Steps) - 1; i >= 0; i-- {
		if closed.Steps[i].Void {
			continue
		}
		op, err := s.undo(closed.Steps[i])
		if err != nil {
			logger.Warn("Skipping step during revert.", "txn", txn, "step", i, "kind", closed.Steps[i].Kind, "target", closed.Steps[i].TargetID, "error", err)
			continue
		}
		inverse = append(inverse, op)
	}
	s.mu.Unlock()

	logger.Debug("Transaction reverted.", "txn", txn, "steps", len(closed.Steps))
	var o graphstore.MutationOptions
	for _, op := range inverse {
		s.emit(ctx, o, op, nil)
	}
}

// undo reverses one step under s.mu and returns the op that replays the
// reversal on other replicas.
func (s *Store) undo(step journal.Step) (graphstore.Op, error) {
	switch step.Kind {
	case journal.CreateVertex:
		v, ok := s.vertices[step.TargetID]
		if !ok {
			return graphstore.Op{}, graph.ErrNotFound
		}
		// Edges attached outside the transaction would dangle otherwise. If
		// another open transaction created them, its steps for them are
		// voided so it neither commits nor undoes a vanished edge.
		for _, edgeID := range incidentEdges(v) {
			s.removeEdge(edgeID)
			s.journal.VoidEdgeSteps(edgeID)
		}
		s.removeVertex(step.TargetID)
		return graphstore.NewOp(graphstore.OpDeleteVertex, graphstore.IDPayload{ID: step.TargetID})

	case journal.UpdateVertex:
		v, ok := s.vertices[step.TargetID]
		before := step.BeforeVertex()
		if !ok || before == nil {
			return graphstore.Op{}, graph.ErrNotFound
		}
		v.Props = before.Props.Clone()
		return graphstore.NewOp(graphstore.OpReplaceVertexProperties, graphstore.PropsPayload{ID: v.ID, Props: v.Props})

	case journal.DeleteVertex:
		before := step.BeforeVertex()
		if before == nil {
			return graphstore.Op{}, graph.ErrNotFound
		}
		if _, exists := s.vertices[before.ID]; exists {
			return graphstore.Op{}, graph.ErrIDCollision
		}
		restored := before.Clone()
		restored.In, restored.Out = nil, nil
		s.insertVertex(restored, step.Restore.LabelPositions)
		return graphstore.VertexOp(restored)

	case journal.CreateEdge:
		if _, ok := s.edges[step.TargetID]; !ok {
			return graphstore.Op{}, graph.ErrNotFound
		}
		s.removeEdge(step.TargetID)
		return graphstore.NewOp(graphstore.OpDeleteEdge, graphstore.IDPayload{ID: step.TargetID})

	case journal.UpdateEdge:
		e, ok := s.edges[step.TargetID]
		before := step.BeforeEdge()
		if !ok || before == nil {
			return graphstore.Op{}, graph.ErrNotFound
		}
		e.Props = before.Props.Clone()
		return graphstore.NewOp(graphstore.OpReplaceEdgeProperties, graphstore.PropsPayload{ID: e.ID, Props: e.Props})

	case journal.DeleteEdge:
		before := step.BeforeEdge()
		if before == nil {
			return graphstore.Op{}, graph.ErrNotFound
		}
		if _, exists := s.edges[before.ID]; exists {
			return graphstore.Op{}, graph.ErrIDCollision
		}
		if s.vertices[before.Start] == nil || s.vertices[before.End] == nil {
			return graphstore.Op{}, graph.ErrNotFound
		}
		s.insertEdge(before.Clone(), step.Restore.OutPosition, step.Restore.InPosition)
		return graphstore.EdgeOp(before)
	}
	return graphstore.Op{}, graph.ErrMissingField
}
