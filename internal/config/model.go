package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/graphkit/internal/value"
)

// Database drivers.
const (
	DriverMemory = "memory"
	DriverNeo4j  = "neo4j"
)

// Temporary id strategies.
const (
	IDStrategyCounter = "counter"
	IDStrategyUUID    = "uuid"
)

// Model is the unified, format-agnostic representation of a document.
type Model struct {
	Replica  *Replica  `validate:"omitempty"`
	Database *Database `validate:"omitempty"`
	Vertices []*Vertex `validate:"dive"`
	Edges    []*Edge   `validate:"dive"`
	Queries  []*Query  `validate:"dive"`
}

// Replica configures the local replica and its broadcast sync.
type Replica struct {
	Name string `validate:"required"`
	// Topic is shared by every replica of one document.
	Topic string
	// RelayURL enables sync through a socket.io relay when set.
	RelayURL   string `validate:"omitempty,url"`
	IDStrategy string `validate:"omitempty,oneof=counter uuid"`
	// PersistSeeds writes the seeded vertices and edges through the bridge
	// and reconciles them before queries run.
	PersistSeeds bool
}

// Database configures the persistence bridge and its backing database.
type Database struct {
	Driver      string `validate:"required,oneof=memory neo4j"`
	URI         string `validate:"required_if=Driver neo4j"`
	Username    string
	Password    string
	Name        string
	MaxAttempts int           `validate:"omitempty,min=1"`
	Backoff     time.Duration `validate:"min=0"`
	Breaker     *Breaker      `validate:"omitempty"`
}

// Breaker enables the circuit breaker around database attempts.
type Breaker struct {
	FailureThreshold float64 `validate:"gt=0,lte=1"`
	MinRequests      uint32
	Timeout          time.Duration `validate:"min=0"`
}

// Vertex is a seed vertex.
type Vertex struct {
	ID         string `validate:"required"`
	Labels     []string
	Properties *value.Map
}

// Edge is a seed edge.
type Edge struct {
	ID         string `validate:"required"`
	Type       string `validate:"required"`
	Start      string `validate:"required"`
	End        string `validate:"required"`
	Properties *value.Map
}

// Query is an expression evaluated once the store is hydrated.
type Query struct {
	Name       string `validate:"required"`
	Expression string `validate:"required"`
	// From lists the ids of the input vertices.
	From []string
	// Filters binds argument names to predicate expressions.
	Filters map[string]hcl.Expression
	// Binds binds argument names to vertex id sets.
	Binds map[string][]string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and cross references: seed ids are
// unique, edges connect seeded vertices and query names are unique.
func (m *Model) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	vertices := make(map[string]struct{}, len(m.Vertices))
	for _, v := range m.Vertices {
		if _, dup := vertices[v.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate vertex %q", v.ID))
		}
		vertices[v.ID] = struct{}{}
	}
	edges := make(map[string]struct{}, len(m.Edges))
	for _, e := range m.Edges {
		if _, dup := edges[e.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate edge %q", e.ID))
		}
		edges[e.ID] = struct{}{}
		for _, end := range []string{e.Start, e.End} {
			if _, ok := vertices[end]; !ok {
				errs = append(errs, fmt.Errorf("edge %q references unknown vertex %q", e.ID, end))
			}
		}
	}
	queries := make(map[string]struct{}, len(m.Queries))
	for _, q := range m.Queries {
		if _, dup := queries[q.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate query %q", q.Name))
		}
		queries[q.Name] = struct{}{}
	}
	return errors.Join(errs...)
}
