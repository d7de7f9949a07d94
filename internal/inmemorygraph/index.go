package inmemorygraph

import (
	"slices"

	"github.com/specialistvlad/graphkit/internal/graph"
)

// The helpers below mutate raw state. Callers hold s.mu for writing and are
// responsible for journaling and broadcasting.

// insertVertex stores v and indexes its labels. positions places labels at
// recorded label index slots; missing entries append.
func (s *Store) insertVertex(v *graph.Vertex, positions map[string]int) {
	s.vertices[v.ID] = v
	for _, label := range v.Labels {
		ids := s.labels[label]
		pos, ok := positions[label]
		if !ok || pos < 0 || pos > len(ids) {
			pos = len(ids)
		}
		s.labels[label] = slices.Insert(ids, pos, v.ID)
	}
}

// removeVertex drops a vertex from the map and the label index and returns
// the label index slot it occupied per label. Adjacency is not touched.
func (s *Store) removeVertex(id string) map[string]int {
	v, ok := s.vertices[id]
	if !ok {
		return nil
	}
	positions := make(map[string]int, len(v.Labels))
	for _, label := range v.Labels {
		ids := s.labels[label]
		pos := slices.Index(ids, id)
		if pos < 0 {
			continue
		}
		positions[label] = pos
		ids = slices.Delete(ids, pos, pos+1)
		if len(ids) == 0 {
			delete(s.labels, label)
		} else {
			s.labels[label] = ids
		}
	}
	delete(s.vertices, id)
	return positions
}

// insertEdge stores e and links it into its endpoints at the given slots
// (negative slots append). Both endpoints must exist.
func (s *Store) insertEdge(e *graph.Edge, outPos, inPos int) {
	s.edges[e.ID] = e
	s.vertices[e.Start].Out.Insert(e.Type, e.ID, outPos)
	s.vertices[e.End].In.Insert(e.Type, e.ID, inPos)
}

// removeEdge unlinks and drops an edge, returning its former slots in the
// start vertex's OUT list and the end vertex's IN list.
func (s *Store) removeEdge(id string) (outPos, inPos int) {
	e, ok := s.edges[id]
	if !ok {
		return -1, -1
	}
	outPos, inPos = -1, -1
	if start, ok := s.vertices[e.Start]; ok {
		outPos = start.Out.Remove(e.Type, id)
	}
	if end, ok := s.vertices[e.End]; ok {
		inPos = end.In.Remove(e.Type, id)
	}
	delete(s.edges, id)
	return outPos, inPos
}

// incidentEdges lists the edges attached to v: OUT before IN, types sorted,
// list order within a type. Self-loops appear once.
func incidentEdges(v *graph.Vertex) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, adj := range []graph.Adjacency{v.Out, v.In} {
		for _, t := range adj.Types() {
			for _, id := range adj.IDs(t) {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func uniqueLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != "" && !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
