package graph

import (
	"testing"

	"github.com/specialistvlad/graphkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacencyInsertRemove(t *testing.T) {
	var a Adjacency

	a.Append("ParentPage", "e1")
	a.Append("ParentPage", "e2")
	a.Append("Link", "e3")
	require.Equal(t, []string{"e1", "e2"}, a.IDs("ParentPage"))
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []string{"Link", "ParentPage"}, a.Types())

	pos := a.Remove("ParentPage", "e1")
	assert.Equal(t, 0, pos)
	assert.Equal(t, -1, a.Remove("ParentPage", "missing"))

	a.Insert("ParentPage", "e1", pos)
	assert.Equal(t, []string{"e1", "e2"}, a.IDs("ParentPage"))

	a.Remove("ParentPage", "e1")
	a.Remove("ParentPage", "e2")
	a.Remove("Link", "e3")
	assert.Nil(t, a, "empty adjacency must normalize to nil")
}

func TestAdjacencyInsertOutOfRangeAppends(t *testing.T) {
	var a Adjacency
	a.Insert("T", "x", 5)
	a.Insert("T", "y", -1)
	assert.Equal(t, []string{"x", "y"}, a.IDs("T"))
}

func TestAdjacencyRename(t *testing.T) {
	a := Adjacency{"T": {"tmp-1", "e2"}, "U": {"tmp-1"}}
	assert.True(t, a.Rename("tmp-1", "srv-1"))
	assert.False(t, a.Rename("tmp-1", "srv-1"))
	assert.Equal(t, Adjacency{"T": {"srv-1", "e2"}, "U": {"srv-1"}}, a)
}

func TestVertexCloneIsIndependent(t *testing.T) {
	v := NewVertex("v1", []string{"Page"}, value.MapOf("name", "A"))
	v.Out.Append("ParentPage", "e1")

	c := v.Clone()
	c.Out.Append("ParentPage", "e2")
	c.Props.Set("name", value.String("B"))
	c.Labels[0] = "Other"

	assert.Equal(t, []string{"e1"}, v.Out.IDs("ParentPage"))
	name, _ := v.Props.Get("name")
	assert.True(t, value.String("A").Equal(name))
	assert.True(t, v.HasLabel("Page"))
}
