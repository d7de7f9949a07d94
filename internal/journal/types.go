package journal

import "github.com/specialistvlad/graphkit/internal/graph"

// TxnID identifies a transaction. Immediate (0) means "no transaction".
type TxnID uint64

// Immediate applies a mutation without journaling it.
const Immediate TxnID = 0

// State is the lifecycle state of a transaction.
type State int

const (
	Open State = iota
	Committed
	Reverted
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Committed:
		return "committed"
	case Reverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Kind names what a step did.
type Kind string

const (
	CreateVertex Kind = "createVertex"
	UpdateVertex Kind = "updateVertex"
	DeleteVertex Kind = "deleteVertex"
	CreateEdge   Kind = "createEdge"
	UpdateEdge   Kind = "updateEdge"
	DeleteEdge   Kind = "deleteEdge"
)

// IsVertex reports whether the step targets a vertex.
func (k Kind) IsVertex() bool {
	return k == CreateVertex || k == UpdateVertex || k == DeleteVertex
}

// Restore holds the positions a deleted entity occupied, so undo can put it
// back exactly where it was.
type Restore struct {
	// LabelPositions maps each label of a deleted vertex to its index in the
	// store's label index.
	LabelPositions map[string]int
	// OutPosition and InPosition locate a deleted edge in its start vertex's
	// OUT list and its end vertex's IN list.
	OutPosition int
	InPosition  int
}

// Step is one journaled mutation. Before is nil for creates, After is nil
// for deletes.
type Step struct {
	Kind     Kind
	TargetID string
	Before   graph.Entity
	After    graph.Entity
	Restore  Restore
	// Void marks a step whose target was removed by undoing another
	// transaction. Void steps are neither diffed nor undone.
	Void bool
}

// BeforeVertex returns Before as a vertex, or nil.
func (s Step) BeforeVertex() *graph.Vertex {
	v, _ := s.Before.(*graph.Vertex)
	return v
}

// AfterVertex returns After as a vertex, or nil.
func (s Step) AfterVertex() *graph.Vertex {
	v, _ := s.After.(*graph.Vertex)
	return v
}

// BeforeEdge returns Before as an edge, or nil.
func (s Step) BeforeEdge() *graph.Edge {
	e, _ := s.Before.(*graph.Edge)
	return e
}

// AfterEdge returns After as an edge, or nil.
func (s Step) AfterEdge() *graph.Edge {
	e, _ := s.After.(*graph.Edge)
	return e
}

// Transaction is an ordered step log owned by one editing session.
type Transaction struct {
	ID    TxnID
	State State
	Steps []Step
}
