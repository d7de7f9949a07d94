package bridge_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/graph"
	"github.com/specialistvlad/graphkit/internal/memdb"
	"github.com/specialistvlad/graphkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu       sync.Mutex
	attempts []string
	commits  []string
}

func (m *recordingMetrics) ObserveAttempt(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, outcome)
}

func (m *recordingMetrics) ObserveCommit(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits = append(m.commits, outcome)
}

func sampleDiff() *graph.Diff {
	return &graph.Diff{
		CreatedVertices: []*graph.Vertex{graph.NewVertex("tmp-1", []string{"Page"}, value.MapOf("name", "A"))},
	}
}

func conflict() error {
	return &bridge.ConflictError{Err: errors.New("deadlock detected")}
}

func fastConfig() bridge.Config {
	return bridge.Config{MaxAttempts: 3, Backoff: time.Millisecond}
}

func TestApplyGivesUpAfterMaxAttempts(t *testing.T) {
	db := memdb.New()
	db.FailNext(conflict(), conflict(), conflict())
	metrics := &recordingMetrics{}
	b := bridge.New(db, fastConfig(), bridge.WithMetrics(metrics))

	m, err := b.Apply(context.Background(), sampleDiff())
	require.Error(t, err)
	assert.True(t, errors.Is(err, bridge.ErrMaxRetries))
	assert.True(t, bridge.IsConflict(err))
	assert.True(t, strings.HasPrefix(err.Error(), "max retries reached"), err.Error())
	assert.True(t, m.Empty())

	assert.Equal(t, memdb.Stats{Acquired: 3, Released: 3, RolledBack: 3}, db.Stats(),
		"one acquisition and one release per attempt")
	assert.Equal(t, []string{bridge.OutcomeConflict, bridge.OutcomeConflict, bridge.OutcomeConflict}, metrics.attempts)
	assert.Equal(t, []string{bridge.OutcomeMaxRetries}, metrics.commits)
	nodes, _ := db.Counts()
	assert.Zero(t, nodes)
}

func TestApplyRetriesConflictsThenSucceeds(t *testing.T) {
	db := memdb.New()
	db.FailNext(conflict(), conflict())
	b := bridge.New(db, fastConfig())

	m, err := b.Apply(context.Background(), sampleDiff())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tmp-1": "srv-1"}, m.Vertices)
	assert.Equal(t, memdb.Stats{Acquired: 3, Released: 3, Committed: 1, RolledBack: 2}, db.Stats())
}

func TestApplyDoesNotRetryOtherFailures(t *testing.T) {
	boom := errors.New("constraint violated")

	testCases := []struct {
		name       string
		setup      func(db *memdb.DB)
		check      func(t *testing.T, err error)
		wantStats  memdb.Stats
		wantCommit string
	}{
		{
			name:  "connectivity during apply",
			setup: func(db *memdb.DB) { db.FailNext(&bridge.ConnectivityError{Err: errors.New("connection refused")}) },
			check: func(t *testing.T, err error) {
				assert.True(t, bridge.IsConnectivity(err))
			},
			wantStats:  memdb.Stats{Acquired: 1, Released: 1, RolledBack: 1},
			wantCommit: bridge.OutcomeConnectivity,
		},
		{
			name:  "connectivity on begin",
			setup: func(db *memdb.DB) { db.FailBegin(&bridge.ConnectivityError{Err: errors.New("no route")}) },
			check: func(t *testing.T, err error) {
				assert.True(t, bridge.IsConnectivity(err))
			},
			wantStats:  memdb.Stats{},
			wantCommit: bridge.OutcomeConnectivity,
		},
		{
			name:  "other failure is rolled back and surfaced",
			setup: func(db *memdb.DB) { db.FailNext(boom) },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, boom)
				assert.False(t, errors.Is(err, bridge.ErrMaxRetries))
			},
			wantStats:  memdb.Stats{Acquired: 1, Released: 1, RolledBack: 1},
			wantCommit: bridge.OutcomeFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := memdb.New()
			tc.setup(db)
			metrics := &recordingMetrics{}
			b := bridge.New(db, fastConfig(), bridge.WithMetrics(metrics))

			_, err := b.Apply(context.Background(), sampleDiff())
			require.Error(t, err)
			tc.check(t, err)
			assert.Equal(t, tc.wantStats, db.Stats())
			assert.Len(t, metrics.attempts, 1)
			assert.Equal(t, []string{tc.wantCommit}, metrics.commits)
		})
	}
}

func TestApplySkipsEmptyDiff(t *testing.T) {
	db := memdb.New()
	b := bridge.New(db, bridge.DefaultConfig())

	m, err := b.Apply(context.Background(), &graph.Diff{})
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.Equal(t, memdb.Stats{}, db.Stats())
}

func TestApplyStopsWhenContextEnds(t *testing.T) {
	db := memdb.New()
	db.FailNext(conflict(), conflict(), conflict())
	b := bridge.New(db, bridge.Config{MaxAttempts: 3, Backoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := b.Apply(ctx, sampleDiff())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, 1, db.Stats().Acquired)
}

func TestBreakerOpensOnConnectivityFailures(t *testing.T) {
	db := memdb.New()
	db.FailBegin(&bridge.ConnectivityError{Err: errors.New("connection refused")})
	breaker := bridge.DefaultBreakerConfig("test")
	breaker.MinRequests = 1
	breaker.Timeout = time.Hour
	cfg := fastConfig()
	cfg.Breaker = &breaker
	b := bridge.New(db, cfg)

	_, err := b.Apply(context.Background(), sampleDiff())
	require.Error(t, err)
	assert.False(t, errors.Is(err, gobreaker.ErrOpenState))

	db.FailBegin(nil)
	_, err = b.Apply(context.Background(), sampleDiff())
	require.Error(t, err)
	assert.True(t, bridge.IsConnectivity(err))
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 0, db.Stats().Acquired, "an open breaker does not reach the database")
}

func TestBreakerIgnoresConflicts(t *testing.T) {
	db := memdb.New()
	db.FailNext(conflict(), conflict())
	breaker := bridge.DefaultBreakerConfig("test")
	breaker.MinRequests = 1
	cfg := fastConfig()
	cfg.Breaker = &breaker
	b := bridge.New(db, cfg)

	_, err := b.Apply(context.Background(), sampleDiff())
	require.NoError(t, err)
	assert.Equal(t, 3, db.Stats().Acquired)
}
