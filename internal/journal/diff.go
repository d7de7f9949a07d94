package journal

import "github.com/specialistvlad/graphkit/internal/graph"

// entityState follows one entity through a step list.
type entityState struct {
	existedBefore bool
	deleted       bool
	final         graph.Entity
}

// tracker keeps entity states in order of first appearance.
type tracker struct {
	order  []string
	states map[string]*entityState
}

func newTracker() *tracker {
	return &tracker{states: make(map[string]*entityState)}
}

func (t *tracker) get(id string, firstIsCreate bool) *entityState {
	s, ok := t.states[id]
	if !ok {
		s = &entityState{existedBefore: !firstIsCreate}
		t.states[id] = s
		t.order = append(t.order, id)
	}
	return s
}

func (t *tracker) record(id string, created, deleted bool, after graph.Entity) {
	s := t.get(id, created)
	s.deleted = deleted
	s.final = after
}

// BuildDiff folds steps into the net change they describe:
//   - created then deleted: omitted
//   - created then updated: created, with the final state
//   - updated then deleted: deleted only
//
// Void steps are skipped. Entities appear in the order they were first
// touched. Vertex adjacency is
// dropped from the diff; edges carry their endpoints.
func BuildDiff(steps []Step) *graph.Diff {
	vertices := newTracker()
	edges := newTracker()

	for _, step := range steps {
		if step.Void {
			continue
		}
		switch step.Kind {
		case CreateVertex:
			vertices.record(step.TargetID, true, false, step.After)
		case UpdateVertex:
			vertices.record(step.TargetID, false, false, step.After)
		case DeleteVertex:
			vertices.record(step.TargetID, false, true, nil)
		case CreateEdge:
			edges.record(step.TargetID, true, false, step.After)
		case UpdateEdge:
			edges.record(step.TargetID, false, false, step.After)
		case DeleteEdge:
			edges.record(step.TargetID, false, true, nil)
		}
	}

	diff := &graph.Diff{}
	for _, id := range vertices.order {
		s := vertices.states[id]
		switch {
		case s.deleted && s.existedBefore:
			diff.DeletedVertexIDs = append(diff.DeletedVertexIDs, id)
		case s.deleted:
		case s.existedBefore:
			diff.UpdatedVertices = append(diff.UpdatedVertices, diffVertex(s.final))
		default:
			diff.CreatedVertices = append(diff.CreatedVertices, diffVertex(s.final))
		}
	}
	for _, id := range edges.order {
		s := edges.states[id]
		switch {
		case s.deleted && s.existedBefore:
			diff.DeletedEdgeIDs = append(diff.DeletedEdgeIDs, id)
		case s.deleted:
		case s.existedBefore:
			diff.UpdatedEdges = append(diff.UpdatedEdges, diffEdge(s.final))
		default:
			diff.CreatedEdges = append(diff.CreatedEdges, diffEdge(s.final))
		}
	}
	return diff
}

func diffVertex(e graph.Entity) *graph.Vertex {
	v, _ := e.(*graph.Vertex)
	out := v.Clone()
	if out != nil {
		out.In, out.Out = nil, nil
	}
	return out
}

func diffEdge(e graph.Entity) *graph.Edge {
	edge, _ := e.(*graph.Edge)
	return edge.Clone()
}
