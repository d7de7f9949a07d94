package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	return &Model{
		Replica:  &Replica{Name: "a", Topic: "doc", IDStrategy: IDStrategyCounter},
		Database: &Database{Driver: DriverMemory, MaxAttempts: 3},
		Vertices: []*Vertex{{ID: "v1", Labels: []string{"Page"}}, {ID: "v2"}},
		Edges:    []*Edge{{ID: "e1", Type: "ParentPage", Start: "v1", End: "v2"}},
		Queries:  []*Query{{Name: "parents", Expression: "->ParentPage", From: []string{"v1"}}},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{name: "valid", mutate: func(*Model) {}},
		{name: "empty model", mutate: func(m *Model) { *m = Model{} }},
		{
			name:    "unknown driver",
			mutate:  func(m *Model) { m.Database.Driver = "mysql" },
			wantErr: "Driver",
		},
		{
			name:    "neo4j needs uri",
			mutate:  func(m *Model) { m.Database.Driver = DriverNeo4j },
			wantErr: "URI",
		},
		{
			name:    "bad id strategy",
			mutate:  func(m *Model) { m.Replica.IDStrategy = "random" },
			wantErr: "IDStrategy",
		},
		{
			name:    "bad relay url",
			mutate:  func(m *Model) { m.Replica.RelayURL = "not a url" },
			wantErr: "RelayURL",
		},
		{
			name:    "breaker threshold",
			mutate:  func(m *Model) { m.Database.Breaker = &Breaker{FailureThreshold: 2} },
			wantErr: "FailureThreshold",
		},
		{
			name:    "edge without type",
			mutate:  func(m *Model) { m.Edges[0].Type = "" },
			wantErr: "Type",
		},
		{
			name:    "duplicate vertex",
			mutate:  func(m *Model) { m.Vertices = append(m.Vertices, &Vertex{ID: "v1"}) },
			wantErr: `duplicate vertex "v1"`,
		},
		{
			name:    "dangling edge",
			mutate:  func(m *Model) { m.Edges[0].End = "v9" },
			wantErr: `edge "e1" references unknown vertex "v9"`,
		},
		{
			name:    "duplicate query",
			mutate:  func(m *Model) { m.Queries = append(m.Queries, &Query{Name: "parents", Expression: "Page"}) },
			wantErr: `duplicate query "parents"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := validModel()
			tc.mutate(m)
			err := m.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
