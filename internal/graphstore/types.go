package graphstore

import (
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/value"
)

// VertexInput is the payload of CreateVertex.
type VertexInput struct {
	ID     string
	Labels []string
	Props  *value.Map
}

// EdgeInput is the payload of CreateEdge.
type EdgeInput struct {
	ID    string
	Type  string
	Start string
	End   string
	Props *value.Map
}

// MutationResult reports the affected id and the index of the journal step
// recorded for the call, or -1 when nothing was journaled.
type MutationResult struct {
	ID        string
	StepIndex int
}

// Journaled reports whether the mutation was recorded in a transaction.
func (r MutationResult) Journaled() bool {
	return r.StepIndex >= 0
}

// MutationOptions holds per-call flags.
type MutationOptions struct {
	Suppressed bool
}

// MutationOption configures a single mutating call.
type MutationOption func(*MutationOptions)

// Suppressed skips both journaling and broadcast for the call.
func Suppressed() MutationOption {
	return func(o *MutationOptions) { o.Suppressed = true }
}

// ApplyOptions folds opts into a MutationOptions value.
func ApplyOptions(opts []MutationOption) MutationOptions {
	var o MutationOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Snapshot is a sorted deep copy of store state.
type Snapshot struct {
	Vertices []*graph.Vertex     `json:"vertices"`
	Edges    []*graph.Edge       `json:"edges"`
	Labels   map[string][]string `json:"labels"`
}
