package graph

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// TempPrefix marks client-local temporary ids.
const TempPrefix = "tmp-"

// IsTemp reports whether id was issued by a client-side IDGenerator.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}

// IDGenerator issues temporary ids for entities created before the backing
// database has assigned canonical ones.
type IDGenerator interface {
	NextID() string
}

// Counter issues monotonic ids: tmp-1, tmp-2, ... With a Scope the ids read
// tmp-<scope>-1, tmp-<scope>-2, ... so replicas sharing a topic never mint
// the same id.
type Counter struct {
	Scope string
	n     atomic.Uint64
}

// NewScopedCounter returns a Counter issuing ids under scope.
func NewScopedCounter(scope string) *Counter {
	return &Counter{Scope: scope}
}

// NextID implements IDGenerator.
func (c *Counter) NextID() string {
	n := strconv.FormatUint(c.n.Add(1), 10)
	if c.Scope == "" {
		return TempPrefix + n
	}
	return TempPrefix + c.Scope + "-" + n
}

// RandomIDs issues random ids of the form tmp-<uuid>, unique across replicas.
type RandomIDs struct{}

// NextID implements IDGenerator.
func (RandomIDs) NextID() string {
	return TempPrefix + uuid.NewString()
}

// NewIDGenerator returns the generator for a named strategy: "uuid" or
// "counter" (the default). Counter ids are issued under scope, which may be
// empty for a store that is not synced.
func NewIDGenerator(strategy, scope string) IDGenerator {
	if strategy == "uuid" {
		return RandomIDs{}
	}
	return NewScopedCounter(scope)
}
