package inmemorygraph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/graphstore"
	"github.com/specialistvlad/graphkit/internal/journal"
)

// Apply replays an op received from another replica. The replay is
// immediate and suppressed, so it is neither journaled nor re-broadcast.
func (s *Store) Apply(ctx context.Context, op graphstore.Op) error {
	suppressed := graphstore.Suppressed()
	var err error

	switch op.Name {
	case graphstore.OpCreateVertex:
		var p graphstore.VertexPayload
		if err = op.Decode(&p); err == nil {
			_, err = s.CreateVertex(ctx, journal.Immediate, graphstore.VertexInput{ID: p.ID, Labels: p.Labels, Props: p.Props}, suppressed)
		}
	case graphstore.OpMergeVertexProperties:
		var p graphstore.PropsPayload
		if err = op.Decode(&p); err == nil {
			_, err = s.MergeVertexProperties(ctx, journal.Immediate, p.ID, p.Props, suppressed)
		}
	case graphstore.OpReplaceVertexProperties:
		var p graphstore.PropsPayload
		if err = op.Decode(&p); err == nil {
			_, err = s.ReplaceVertexProperties(ctx, journal.Immediate, p.ID, p.Props, suppressed)
		}
	case graphstore.OpDeleteVertex:
		var p graphstore.IDPayload
		if err = op.Decode(&p); err == nil {
			_, err = s.DeleteVertex(ctx, journal.Immediate, p.ID, suppressed)
		}
	case graphstore.OpCreateEdge:
		var p graphstore.EdgePayload
		if err = op.Decode(&p); err == nil {
			_, err = s.CreateEdge(ctx, journal.Immediate, graphstore.EdgeInput{ID: p.ID, Type: p.Type, Start: p.Start, End: p.End, Props: p.Props}, suppressed)
		}
	case graphstore.OpReplaceEdgeProperties:
		var p graphstore.PropsPayload
		if err = op.Decode(&p); err == nil {
			_, err = s.ReplaceEdgeProperties(ctx, journal.Immediate, p.ID, p.Props, suppressed)
		}
	case graphstore.OpDeleteEdge:
		var p graphstore.IDPayload
		if err = op.Decode(&p); err == nil {
			_, err = s.DeleteEdge(ctx, journal.Immediate, p.ID, suppressed)
		}
	case graphstore.OpReconcileIDs:
		var m graph.IDMap
		if err = op.Decode(&m); err == nil {
			err = s.Reconcile(ctx, m, suppressed)
		}
	default:
		err = fmt.Errorf("unknown op %q", op.Name)
	}

	if err != nil {
		return fmt.Errorf("apply %s: %w", op.Name, err)
	}
	return nil
}
