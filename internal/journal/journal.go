package journal

import (
	"fmt"
	"sync"

	"github.com/specialistvlad/graphkit/internal/graph"
)

// Journal tracks open transactions. It is safe for concurrent use.
type Journal struct {
	mu   sync.Mutex
	last TxnID
	open map[TxnID]*Transaction
}

// New creates an empty journal. Transaction ids start at 1.
func New() *Journal {
	return &Journal{open: make(map[TxnID]*Transaction)}
}

// Begin opens a new transaction and returns its id.
func (j *Journal) Begin() TxnID {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.last++
	j.open[j.last] = &Transaction{ID: j.last, State: Open}
	return j.last
}

// IsOpen reports whether id names an open transaction.
func (j *Journal) IsOpen(id TxnID) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.open[id]
	return ok
}

// Append records a step and returns its index within the transaction.
func (j *Journal) Append(id TxnID, step Step) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	txn, ok := j.open[id]
	if !ok {
		return -1, fmt.Errorf("transaction %d: %w", id, graph.ErrTransactionClosed)
	}
	txn.Steps = append(txn.Steps, step)
	return len(txn.Steps) - 1, nil
}

// HasSteps reports whether an open transaction has recorded anything. It
// never mutates the journal.
func (j *Journal) HasSteps(id TxnID) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	txn, ok := j.open[id]
	return ok && len(txn.Steps) > 0
}

// Steps returns a copy of the step list of an open transaction.
func (j *Journal) Steps(id TxnID) []Step {
	j.mu.Lock()
	defer j.mu.Unlock()
	txn, ok := j.open[id]
	if !ok {
		return nil
	}
	return append([]Step(nil), txn.Steps...)
}

// Close removes an open transaction, marking it with the final state, and
// returns it. The second result is false when id was not open.
func (j *Journal) Close(id TxnID, final State) (*Transaction, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	txn, ok := j.open[id]
	if !ok {
		return nil, false
	}
	delete(j.open, id)
	txn.State = final
	return txn, true
}

// VoidEdgeSteps marks every step of an open transaction that targets the
// edge id as void and returns how many were marked.
func (j *Journal) VoidEdgeSteps(edgeID string) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := 0
	for _, txn := range j.open {
		for i := range txn.Steps {
			step := &txn.Steps[i]
			if !step.Kind.IsVertex() && step.TargetID == edgeID && !step.Void {
				step.Void = true
				n++
			}
		}
	}
	return n
}

// OpenCount returns the number of open transactions.
func (j *Journal) OpenCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.open)
}

// RewriteIDs renames ids inside every open transaction so that pending steps
// refer to canonical ids once a commit has been reconciled.
func (j *Journal) RewriteIDs(m graph.IDMap) {
	if m.Empty() {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, txn := range j.open {
		for i := range txn.Steps {
			step := &txn.Steps[i]
			if step.Kind.IsVertex() {
				step.TargetID = m.Vertex(step.TargetID)
			} else {
				step.TargetID = m.Edge(step.TargetID)
			}
			step.Before = rewriteEntity(step.Before, m)
			step.After = rewriteEntity(step.After, m)
		}
	}
}

func rewriteEntity(e graph.Entity, m graph.IDMap) graph.Entity {
	switch t := e.(type) {
	case *graph.Vertex:
		t.ID = m.Vertex(t.ID)
		for oldID, newID := range m.Edges {
			t.In.Rename(oldID, newID)
			t.Out.Rename(oldID, newID)
		}
		return t
	case *graph.Edge:
		t.ID = m.Edge(t.ID)
		t.Start = m.Vertex(t.Start)
		t.End = m.Vertex(t.End)
		return t
	}
	return e
}
