// Package bridge persists commit diffs to the backing graph database.
//
// # Why the Bridge Exists
//
// The graph store commits locally and optimistically: Commit only folds the
// journal into a graph.Diff. Making that diff durable is a separate,
// asynchronous step that can fail in ways the store knows nothing about.
// The bridge owns that step and its failure policy:
//
//   - Write-write conflicts (*ConflictError) are retried by replaying the
//     whole diff in a fresh database transaction, with a constant backoff,
//     up to Config.MaxAttempts attempts in total. Running out of attempts
//     yields an error wrapping ErrMaxRetries.
//   - Connectivity failures (*ConnectivityError) are returned at once.
//   - Any other failure rolls the attempt back and is returned at once.
//
// Every attempt acquires exactly one Tx from the Database and releases it
// with Tx.Close on every exit path.
//
//	Bridge.Apply(diff)
//	   └─▶ attempt ─▶ Database.Begin ─▶ Tx.Apply ─▶ Tx.Commit ─▶ Tx.Close
//	            ▲                          │ conflict
//	            └──────── backoff ◀────────┘
//
// On success the bridge returns the old id to canonical id map that the
// caller feeds into graph store reconciliation.
package bridge
