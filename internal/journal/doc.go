// Package journal records the reversible steps of store transactions.
//
// A transaction moves OPEN -> COMMITTED or OPEN -> REVERTED. While open, every
// store mutation under its id appends a Step holding the pre-state needed to
// undo it and the post-state needed to replay it server-side. Closing a
// transaction removes it from the journal, so operations on a closed or
// unknown id are no-ops.
//
// The journal only records; undoing steps is the store's job since only the
// store knows how to reinsert an entity at its former position. BuildDiff
// folds a step list into the net Diff submitted by the persistence bridge.
package journal
