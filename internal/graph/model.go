package graph

import (
	"slices"

	"github.com/specialistvlad/graphkit/internal/value"
)

// Vertex is a labeled, property-bearing graph node.
type Vertex struct {
	ID     string     `json:"id"`
	Labels []string   `json:"labels,omitempty"`
	Props  *value.Map `json:"props"`
	In     Adjacency  `json:"in,omitempty"`
	Out    Adjacency  `json:"out,omitempty"`
}

// NewVertex builds a detached vertex with no adjacency.
func NewVertex(id string, labels []string, props *value.Map) *Vertex {
	v := &Vertex{ID: id, Props: props.Clone()}
	if len(labels) > 0 {
		v.Labels = slices.Clone(labels)
	}
	return v
}

// HasLabel reports whether the vertex carries label.
func (v *Vertex) HasLabel(label string) bool {
	return slices.Contains(v.Labels, label)
}

// Clone returns a deep copy of the vertex.
func (v *Vertex) Clone() *Vertex {
	if v == nil {
		return nil
	}
	out := &Vertex{
		ID:    v.ID,
		Props: v.Props.Clone(),
		In:    v.In.Clone(),
		Out:   v.Out.Clone(),
	}
	if len(v.Labels) > 0 {
		out.Labels = slices.Clone(v.Labels)
	}
	return out
}

// EntityID implements Entity.
func (v *Vertex) EntityID() string { return v.ID }

// Edge is a typed, directed, property-bearing relationship.
type Edge struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"`
	Start string     `json:"start"`
	End   string     `json:"end"`
	Props *value.Map `json:"props"`
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	out := *e
	out.Props = e.Props.Clone()
	return &out
}

// EntityID implements Entity.
func (e *Edge) EntityID() string { return e.ID }

// Entity is implemented by *Vertex and *Edge.
type Entity interface {
	EntityID() string
}
