package integrationtests

import (
	"testing"

	"github.com/specialistvlad/graphkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidDocumentsAreRejected(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "syntax error",
			files: map[string]string{"main.hcl": `
vertex "a" {
  labels = ["Page"]
`},
			wantErr: "failed to parse",
		},
		{
			name: "dangling edge",
			files: map[string]string{"main.hcl": `
vertex "a" {}

edge "e" {
  type  = "Link"
  start = "a"
  end   = "b"
}
`},
			wantErr: `"b"`,
		},
		{
			name: "replica declared twice",
			files: map[string]string{
				"a.hcl": `replica "one" {}`,
				"b.hcl": `replica "two" {}`,
			},
			wantErr: "duplicate replica block",
		},
		{
			name: "neo4j without uri",
			files: map[string]string{"main.hcl": `
database {
  driver = "neo4j"
}
`},
			wantErr: "invalid configuration",
		},
		{
			name:    "no documents",
			files:   map[string]string{"notes.txt": "not hcl"},
			wantErr: "no .hcl files found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := testutil.RunIntegrationTest(t, tc.files)
			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), tc.wantErr)
			assert.Nil(t, result.App, "the app is not built from an invalid document")
		})
	}
}

func TestFilesInSubdirectoriesAreMerged(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"graph/pages.hcl": `
vertex "a" {
  labels = ["Page"]
}
`,
		"graph/more/pages.hcl": `
vertex "b" {
  labels = ["Page"]
}
`,
		"queries.hcl": `
query "pages" {
  expression = "Page"
}
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.ElementsMatch(t, []string{"a", "b"}, result.Report.Query(t, "pages").VertexIDs(t))
}
