package graphstore

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/value"
)

// OpName identifies a broadcast operation.
type OpName string

const (
	OpCreateVertex            OpName = "createVertex"
	OpMergeVertexProperties   OpName = "mergeVertexProperties"
	OpReplaceVertexProperties OpName = "replaceVertexProperties"
	OpDeleteVertex            OpName = "deleteVertex"
	OpCreateEdge              OpName = "createEdge"
	OpReplaceEdgeProperties   OpName = "replaceEdgeProperties"
	OpDeleteEdge              OpName = "deleteEdge"
	OpReconcileIDs            OpName = "reconcileIds"
)

// Op is the broadcast wire format: {"opName": ..., "payload": {...}}.
type Op struct {
	Name    OpName          `json:"opName"`
	Payload json.RawMessage `json:"payload"`
}

// VertexPayload carries a created vertex.
type VertexPayload struct {
	ID     string     `json:"id"`
	Labels []string   `json:"labels,omitempty"`
	Props  *value.Map `json:"props,omitempty"`
}

// EdgePayload carries a created edge.
type EdgePayload struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"`
	Start string     `json:"start"`
	End   string     `json:"end"`
	Props *value.Map `json:"props,omitempty"`
}

// PropsPayload carries a property merge or replacement.
type PropsPayload struct {
	ID    string     `json:"id"`
	Props *value.Map `json:"props"`
}

// IDPayload carries a delete.
type IDPayload struct {
	ID string `json:"id"`
}

// NewOp encodes payload under name.
func NewOp(name OpName, payload any) (Op, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Op{Name: name}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return Op{Name: name, Payload: raw}, nil
}

// Decode unmarshals the payload into dst.
func (op Op) Decode(dst any) error {
	if err := json.Unmarshal(op.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", op.Name, err)
	}
	return nil
}

// VertexOp builds a createVertex op from a vertex.
func VertexOp(v *graph.Vertex) (Op, error) {
	return NewOp(OpCreateVertex, VertexPayload{ID: v.ID, Labels: v.Labels, Props: v.Props})
}

// EdgeOp builds a createEdge op from an edge.
func EdgeOp(e *graph.Edge) (Op, error) {
	return NewOp(OpCreateEdge, EdgePayload{ID: e.ID, Type: e.Type, Start: e.Start, End: e.End, Props: e.Props})
}
