package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	var c Counter
	assert.Equal(t, "tmp-1", c.NextID())
	assert.Equal(t, "tmp-2", c.NextID())
}

func TestScopedCountersDoNotCollide(t *testing.T) {
	a := NewIDGenerator("counter", "replica-a")
	b := NewIDGenerator("counter", "replica-b")

	idA, idB := a.NextID(), b.NextID()
	assert.Equal(t, "tmp-replica-a-1", idA)
	assert.Equal(t, "tmp-replica-b-1", idB)
	assert.True(t, IsTemp(idA))
	assert.Equal(t, "tmp-1", NewIDGenerator("counter", "").NextID())
}

func TestRandomIDs(t *testing.T) {
	gen := NewIDGenerator("uuid", "ignored")
	a, b := gen.NextID(), gen.NextID()
	assert.NotEqual(t, a, b)
	assert.True(t, IsTemp(a))
	assert.False(t, IsTemp("srv-1"))
}

func TestIDMapTranslate(t *testing.T) {
	m := NewIDMap()
	assert.True(t, m.Empty())
	m.Vertices["tmp-1"] = "srv-1"
	assert.Equal(t, "srv-1", m.Vertex("tmp-1"))
	assert.Equal(t, "v9", m.Vertex("v9"))
	assert.Equal(t, "e1", m.Edge("e1"))
	assert.False(t, m.Empty())
}

func TestValidationError(t *testing.T) {
	err := error(NewValidationError("deleteVertex", "v3", ErrNotFound))
	require.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `deleteVertex "v3": not found`, err.Error())

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "v3", vErr.ID)
}
