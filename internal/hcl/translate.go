// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/graphkit/internal/config"
	"github.com/specialistvlad/graphkit/internal/schema"
)

func translateReplica(s *schema.Replica) *config.Replica {
	return &config.Replica{
		Name:         s.Name,
		Topic:        s.Topic,
		RelayURL:     s.RelayURL,
		IDStrategy:   s.IDStrategy,
		PersistSeeds: s.PersistSeeds,
	}
}

func translateDatabase(s *schema.Database) (*config.Database, error) {
	backoff, err := parseDuration("database backoff", s.Backoff)
	if err != nil {
		return nil, err
	}
	db := &config.Database{
		Driver:      s.Driver,
		URI:         s.URI,
		Username:    s.Username,
		Password:    s.Password,
		Name:        s.Name,
		MaxAttempts: s.MaxAttempts,
		Backoff:     backoff,
	}
	if s.Breaker != nil {
		timeout, err := parseDuration("breaker timeout", s.Breaker.Timeout)
		if err != nil {
			return nil, err
		}
		if s.Breaker.MinRequests < 0 {
			return nil, fmt.Errorf("breaker min_requests must not be negative")
		}
		db.Breaker = &config.Breaker{
			FailureThreshold: s.Breaker.FailureThreshold,
			MinRequests:      uint32(s.Breaker.MinRequests),
			Timeout:          timeout,
		}
	}
	return db, nil
}

func translateVertex(ctx context.Context, s *schema.Vertex) (*config.Vertex, error) {
	props, err := propertiesFromExpr(ctx, s.Properties)
	if err != nil {
		return nil, fmt.Errorf("vertex %q: %w", s.ID, err)
	}
	return &config.Vertex{ID: s.ID, Labels: s.Labels, Properties: props}, nil
}

func translateEdge(ctx context.Context, s *schema.Edge) (*config.Edge, error) {
	props, err := propertiesFromExpr(ctx, s.Properties)
	if err != nil {
		return nil, fmt.Errorf("edge %q: %w", s.ID, err)
	}
	return &config.Edge{ID: s.ID, Type: s.Type, Start: s.Start, End: s.End, Properties: props}, nil
}

func translateQuery(s *schema.Query) (*config.Query, error) {
	q := &config.Query{
		Name:       s.Name,
		Expression: s.Expression,
		From:       s.From,
	}
	for _, f := range s.Filters {
		if q.Filters == nil {
			q.Filters = make(map[string]hcl.Expression)
		}
		if _, dup := q.Filters[f.Arg]; dup {
			return nil, fmt.Errorf("query %q: duplicate filter %q", s.Name, f.Arg)
		}
		q.Filters[f.Arg] = f.Match
	}
	for _, b := range s.Binds {
		if q.Binds == nil {
			q.Binds = make(map[string][]string)
		}
		if _, dup := q.Binds[b.Arg]; dup {
			return nil, fmt.Errorf("query %q: duplicate bind %q", s.Name, b.Arg)
		}
		if _, clash := q.Filters[b.Arg]; clash {
			return nil, fmt.Errorf("query %q: argument %q is both a filter and a bind", s.Name, b.Arg)
		}
		q.Binds[b.Arg] = b.Vertices
	}
	return q, nil
}

func parseDuration(what, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return d, nil
}
