package expr_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/graphkit/internal/expr"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHCLPredicateMatch(t *testing.T) {
	v := graph.NewVertex("v1", []string{"Page", "Draft"}, value.MapOf("name", "Home", "order", 3, "tags", []any{"x", "y"}))
	bare := graph.NewVertex("v2", nil, nil)

	testCases := []struct {
		name   string
		src    string
		target *graph.Vertex
		match  bool
	}{
		{name: "property equality", src: `P.name == "Home"`, target: v, match: true},
		{name: "numeric comparison", src: `P.order > 2`, target: v, match: true},
		{name: "id", src: `id == "v1"`, target: v, match: true},
		{name: "label membership", src: `contains(labels, "Draft")`, target: v, match: true},
		{name: "function over property", src: `upper(P.name) == "HOME" && length(P.tags) == 2`, target: v, match: true},
		{name: "false result", src: `P.name == "Other"`, target: v, match: false},
		{name: "missing attribute is no match", src: `P.name == "Home"`, target: bare, match: false},
		{name: "try guards missing attribute", src: `try(P.name, "") == ""`, target: bare, match: true},
		{name: "non bool result is no match", src: `P.name`, target: v, match: false},
		{name: "string bool converts", src: `"true"`, target: v, match: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := expr.CompilePredicate(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.match, p.Match(context.Background(), tc.target))
		})
	}
}

func TestCompilePredicateRejects(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "syntax error", src: `P.name ==`},
		{name: "unknown variable", src: `vertex.name == "x"`},
		{name: "unknown function", src: `exec("rm") == ""`},
		{name: "unknown function nested", src: `P.name == lower(shell("x"))`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := expr.CompilePredicate(tc.src)
			require.Error(t, err)
		})
	}
}
