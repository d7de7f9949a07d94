package integrationtests

import (
	"testing"

	"github.com/specialistvlad/graphkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistedSeedsAreReconciled(t *testing.T) {
	// --- Arrange ---
	doc := `
replica "editor" {
  persist_seeds = true
}

database {
  driver       = "memory"
  max_attempts = 2
  backoff      = "1ms"
}

vertex "root" {
  labels = ["Page"]
}

vertex "child" {
  labels     = ["Page"]
  properties = { name = "Child" }
}

edge "child-root" {
  type  = "ParentPage"
  start = "child"
  end   = "root"
}

query "parent" {
  expression = "->ParentPage"
  from       = ["child"]
}
`

	// --- Act ---
	result := testutil.RunHCLTest(t, doc)

	// --- Assert ---
	require.NoError(t, result.Err)
	report := result.Report
	assert.Equal(t, map[string]string{"root": "srv-1", "child": "srv-2"}, report.IDMap.Vertices)
	assert.Equal(t, map[string]string{"child-root": "srv-3"}, report.IDMap.Edges)

	assert.Equal(t, []string{"srv-1"}, report.Query(t, "parent").VertexIDs(t), "seed ids resolve through the id map")

	ids := make([]string, 0, len(report.Snapshot.Vertices))
	for _, v := range report.Snapshot.Vertices {
		ids = append(ids, v.ID)
	}
	assert.ElementsMatch(t, []string{"srv-1", "srv-2"}, ids)
	assert.Contains(t, result.LogOutput, "Transaction persisted.")
}

func TestPersistSeedsWithoutDatabase(t *testing.T) {
	// --- Arrange ---
	doc := `
replica "editor" {
  persist_seeds = true
}

vertex "root" {
  labels = ["Page"]
}

query "pages" {
  expression = "Page"
}
`

	// --- Act ---
	result := testutil.RunHCLTest(t, doc)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "no database is configured")
	assert.Equal(t, []string{"root"}, result.Report.Query(t, "pages").VertexIDs(t))
}
