package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Report mirrors app.Report with loosely typed results, so tests can
// compare against literals.
type Report struct {
	Replica string `json:"replica"`
	IDMap   struct {
		Vertices map[string]string `json:"vertices"`
		Edges    map[string]string `json:"edges"`
	} `json:"idMap"`
	Queries  []QueryReport  `json:"queries"`
	Snapshot ReportSnapshot `json:"snapshot"`
}

// QueryReport is one evaluated query.
type QueryReport struct {
	Name    string            `json:"name"`
	Results []json.RawMessage `json:"results"`
}

// ReportSnapshot is the store state after the run.
type ReportSnapshot struct {
	Vertices []ReportVertex      `json:"vertices"`
	Labels   map[string][]string `json:"labels"`
}

// ReportVertex is a vertex as it appears in the report.
type ReportVertex struct {
	ID     string         `json:"id"`
	Labels []string       `json:"labels"`
	Props  map[string]any `json:"props"`
}

// Query returns the named query report, failing the test when it is absent.
func (r *Report) Query(t *testing.T, name string) QueryReport {
	t.Helper()
	for _, q := range r.Queries {
		if q.Name == name {
			return q
		}
	}
	require.Failf(t, "query not in report", "query %q", name)
	return QueryReport{}
}

// VertexIDs decodes each result as a vertex and returns the ids.
func (q QueryReport) VertexIDs(t *testing.T) []string {
	t.Helper()
	ids := make([]string, 0, len(q.Results))
	for _, raw := range q.Results {
		var v ReportVertex
		require.NoError(t, json.Unmarshal(raw, &v))
		ids = append(ids, v.ID)
	}
	return ids
}

// Values decodes each result as a plain JSON value.
func (q QueryReport) Values(t *testing.T) []any {
	t.Helper()
	out := make([]any, 0, len(q.Results))
	for _, raw := range q.Results {
		var v any
		require.NoError(t, json.Unmarshal(raw, &v))
		out = append(out, v)
	}
	return out
}
