// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// A run loads a document, opens the configured database and relay, builds
// an editing session, hydrates the store with the seeded vertices and
// edges, evaluates every query and writes a JSON report. With Serve set it
// then keeps the session live, applying ops from peers until cancelled.
package app
