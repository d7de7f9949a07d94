package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/graphkit/internal/config"
	"github.com/specialistvlad/graphkit/internal/expr"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHCL(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

const document = `
replica "editor-a" {
  topic         = "site-42"
  id_strategy   = "counter"
  persist_seeds = true
}

database {
  driver       = "memory"
  max_attempts = 5
  backoff      = "250ms"

  breaker {
    failure_threshold = 0.5
    min_requests      = 4
    timeout           = "10s"
  }
}

vertex "home" {
  labels     = ["Page"]
  properties = {
    zeta  = "last in lexical order"
    name  = "Home"
    order = 1
    meta  = { tags = ["a", "b"], draft = false, b = 1, a = 2 }
  }
}

vertex "root" {
  labels = ["Page"]
}
`

const queries = `
edge "home-root" {
  type  = "ParentPage"
  start = "home"
  end   = "root"
  properties = { weight = 2 }
}

query "parents" {
  expression = "->ParentPage"
  from       = ["home"]
}

query "named" {
  expression = "Page[$0][$1]"
  filter "0" {
    match = P.name == "Home"
  }
  bind "1" {
    vertices = ["home", "root"]
  }
}
`

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "a.hcl", document)
	writeHCL(t, dir, "b.hcl", queries)
	writeHCL(t, dir, "ignored.txt", "not hcl")

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, &config.Replica{Name: "editor-a", Topic: "site-42", IDStrategy: "counter", PersistSeeds: true}, m.Replica)
	assert.Equal(t, &config.Database{
		Driver:      "memory",
		MaxAttempts: 5,
		Backoff:     250 * time.Millisecond,
		Breaker:     &config.Breaker{FailureThreshold: 0.5, MinRequests: 4, Timeout: 10 * time.Second},
	}, m.Database)

	require.Len(t, m.Vertices, 2)
	home := m.Vertices[0]
	assert.Equal(t, "home", home.ID)
	assert.Equal(t, []string{"Page"}, home.Labels)
	assert.Equal(t, []string{"zeta", "name", "order", "meta"}, home.Properties.Keys(), "source order is kept")
	meta, _ := home.Properties.Get("meta")
	metaMap, ok := meta.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"tags", "draft", "b", "a"}, metaMap.Keys())
	assert.Equal(t, 0, m.Vertices[1].Properties.Len())

	require.Len(t, m.Edges, 1)
	assert.True(t, value.MapOf("weight", 2).Equal(m.Edges[0].Properties))

	require.Len(t, m.Queries, 2)
	assert.Equal(t, []string{"home"}, m.Queries[0].From)
	named := m.Queries[1]
	assert.Equal(t, map[string][]string{"1": {"home", "root"}}, named.Binds)
	require.Contains(t, named.Filters, "0")

	pred, err := expr.NewHCLPredicate(named.Filters["0"])
	require.NoError(t, err)
	ctx := context.Background()
	assert.True(t, pred.Match(ctx, graph.NewVertex("home", []string{"Page"}, value.MapOf("name", "Home"))))
	assert.False(t, pred.Match(ctx, graph.NewVertex("root", []string{"Page"}, value.MapOf("name", "Root"))))
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `vertex "v1" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			files:   map[string]string{"a.hcl": `vertex "v1" { colour = "red" }`},
			wantErr: "failed to decode HCL file",
		},
		{
			name: "duplicate replica",
			files: map[string]string{
				"a.hcl": `replica "a" {}`,
				"b.hcl": `replica "b" {}`,
			},
			wantErr: `duplicate replica block "b"`,
		},
		{
			name:    "properties not an object",
			files:   map[string]string{"a.hcl": `vertex "v1" { properties = ["x"] }`},
			wantErr: "properties must be an object",
		},
		{
			name:    "bad duration",
			files:   map[string]string{"a.hcl": "database {\n  driver  = \"memory\"\n  backoff = \"soon\"\n}"},
			wantErr: `invalid database backoff "soon"`,
		},
		{
			name: "dangling edge",
			files: map[string]string{"a.hcl": `
vertex "v1" {}
edge "e1" {
  type  = "Link"
  start = "v1"
  end   = "v2"
}`},
			wantErr: `references unknown vertex "v2"`,
		},
		{
			name: "filter and bind clash",
			files: map[string]string{"a.hcl": `
query "q" {
  expression = "Page[$0]"
  filter "0" { match = true }
  bind "0" { vertices = [] }
}`},
			wantErr: "both a filter and a bind",
		},
		{
			name:    "no files",
			files:   map[string]string{"notes.txt": "x"},
			wantErr: "no .hcl files found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tc.files {
				writeHCL(t, dir, name, content)
			}
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
