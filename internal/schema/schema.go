// Package schema holds the gohcl decoding targets of a graphkit HCL
// document. The structs mirror the file layout one to one; translation
// into config.Model happens in internal/hcl.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File represents every top-level block a document file may contain.
type File struct {
	Replica  *Replica  `hcl:"replica,block"`
	Database *Database `hcl:"database,block"`
	Vertices []*Vertex `hcl:"vertex,block"`
	Edges    []*Edge   `hcl:"edge,block"`
	Queries  []*Query  `hcl:"query,block"`
	Remain   hcl.Body  `hcl:",remain"`
}

// Replica represents the `replica "name"` block.
type Replica struct {
	Name         string `hcl:"name,label"`
	Topic        string `hcl:"topic,optional"`
	RelayURL     string `hcl:"relay_url,optional"`
	IDStrategy   string `hcl:"id_strategy,optional"`
	PersistSeeds bool   `hcl:"persist_seeds,optional"`
}

// Database represents the `database` block.
type Database struct {
	Driver      string   `hcl:"driver"`
	URI         string   `hcl:"uri,optional"`
	Username    string   `hcl:"username,optional"`
	Password    string   `hcl:"password,optional"`
	Name        string   `hcl:"name,optional"`
	MaxAttempts int      `hcl:"max_attempts,optional"`
	Backoff     string   `hcl:"backoff,optional"`
	Breaker     *Breaker `hcl:"breaker,block"`
}

// Breaker represents the `breaker` block nested in `database`.
type Breaker struct {
	FailureThreshold float64 `hcl:"failure_threshold,optional"`
	MinRequests      int     `hcl:"min_requests,optional"`
	Timeout          string  `hcl:"timeout,optional"`
}

// Vertex represents a `vertex "id"` block. Properties stay an expression so
// that key order can be read from the source.
type Vertex struct {
	ID         string         `hcl:"id,label"`
	Labels     []string       `hcl:"labels,optional"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

// Edge represents an `edge "id"` block.
type Edge struct {
	ID         string         `hcl:"id,label"`
	Type       string         `hcl:"type"`
	Start      string         `hcl:"start"`
	End        string         `hcl:"end"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

// Query represents a `query "name"` block.
type Query struct {
	Name       string    `hcl:"name,label"`
	Expression string    `hcl:"expression"`
	From       []string  `hcl:"from,optional"`
	Filters    []*Filter `hcl:"filter,block"`
	Binds      []*Bind   `hcl:"bind,block"`
}

// Filter represents a `filter "arg"` block: a predicate argument.
type Filter struct {
	Arg   string         `hcl:"arg,label"`
	Match hcl.Expression `hcl:"match"`
}

// Bind represents a `bind "arg"` block: a vertex-set argument.
type Bind struct {
	Arg      string   `hcl:"arg,label"`
	Vertices []string `hcl:"vertices"`
}
