package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/graph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/specialistvlad/graphkit/internal/bridge"

// Outcomes reported to Metrics.
const (
	OutcomeSuccess      = "success"
	OutcomeConflict     = "conflict"
	OutcomeConnectivity = "connectivity"
	OutcomeFailure      = "failure"
	OutcomeMaxRetries   = "max_retries"
)

// Metrics receives per-attempt and per-call outcomes.
type Metrics interface {
	ObserveAttempt(outcome string)
	ObserveCommit(outcome string, elapsed time.Duration)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// Bridge applies diffs to a Database with bounded retry on conflict.
type Bridge struct {
	db      Database
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	metrics Metrics
}

// New creates a bridge over db. A MaxAttempts below one is treated as one.
func New(db Database, cfg Config, opts ...Option) *Bridge {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	b := &Bridge{db: db, cfg: cfg}
	if cfg.Breaker != nil {
		b.breaker = newBreaker(*cfg.Breaker)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Default().Warn("Circuit breaker state changed.", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return !IsConnectivity(err)
		},
	})
}

// Apply persists diff and returns the id map produced by the database. An
// empty diff is not sent.
func (b *Bridge) Apply(ctx context.Context, diff *graph.Diff) (graph.IDMap, error) {
	logger := ctxlog.FromContext(ctx)
	if diff.Empty() {
		logger.Debug("Skipping empty diff.")
		return graph.NewIDMap(), nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "bridge.apply",
		trace.WithAttributes(
			attribute.Int("graphkit.diff.size", diff.Size()),
			attribute.Int("graphkit.bridge.max_attempts", b.cfg.MaxAttempts),
		),
	)
	defer span.End()
	started := time.Now()

	attempts := 0
	operation := func() (graph.IDMap, error) {
		attempts++
		idMap, err := b.attempt(ctx, diff)
		switch {
		case err == nil:
			b.observeAttempt(OutcomeSuccess)
			return idMap, nil
		case IsConflict(err):
			b.observeAttempt(OutcomeConflict)
			logger.Warn("Write conflict while persisting diff.", "attempt", attempts, "max_attempts", b.cfg.MaxAttempts, "error", err)
			return graph.IDMap{}, err
		case IsConnectivity(err):
			b.observeAttempt(OutcomeConnectivity)
			return graph.IDMap{}, backoff.Permanent(err)
		default:
			b.observeAttempt(OutcomeFailure)
			return graph.IDMap{}, backoff.Permanent(err)
		}
	}

	idMap, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(b.cfg.Backoff)),
		backoff.WithMaxTries(uint(b.cfg.MaxAttempts)),
	)
	span.SetAttributes(attribute.Int("graphkit.bridge.attempts", attempts))

	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		outcome := OutcomeFailure
		switch {
		case IsConflict(err):
			outcome = OutcomeMaxRetries
			err = fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempts, err)
		case IsConnectivity(err):
			outcome = OutcomeConnectivity
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.observeCommit(outcome, time.Since(started))
		logger.Error("Failed to persist diff.", "attempts", attempts, "outcome", outcome, "error", err)
		return graph.IDMap{}, err
	}

	span.SetStatus(codes.Ok, "")
	b.observeCommit(OutcomeSuccess, time.Since(started))
	logger.Info("Diff persisted.", "attempts", attempts, "vertices_mapped", len(idMap.Vertices), "edges_mapped", len(idMap.Edges))
	return idMap, nil
}

// attempt runs one transaction, through the breaker when configured.
func (b *Bridge) attempt(ctx context.Context, diff *graph.Diff) (graph.IDMap, error) {
	if b.breaker == nil {
		return b.runTx(ctx, diff)
	}
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.runTx(ctx, diff)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return graph.IDMap{}, &ConnectivityError{Err: err}
	}
	if err != nil {
		return graph.IDMap{}, err
	}
	return out.(graph.IDMap), nil
}

// runTx acquires a transaction, applies and commits the diff, and always
// releases the transaction. Failed attempts are rolled back.
func (b *Bridge) runTx(ctx context.Context, diff *graph.Diff) (graph.IDMap, error) {
	logger := ctxlog.FromContext(ctx)

	tx, err := b.db.Begin(ctx)
	if err != nil {
		return graph.IDMap{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Close(ctx); err != nil {
			logger.Warn("Failed to release database transaction.", "error", err)
		}
	}()

	idMap, err := tx.Apply(ctx, diff)
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Debug("Rollback failed.", "error", rbErr)
		}
		return graph.IDMap{}, err
	}
	return idMap, nil
}

func (b *Bridge) observeAttempt(outcome string) {
	if b.metrics != nil {
		b.metrics.ObserveAttempt(outcome)
	}
}

func (b *Bridge) observeCommit(outcome string, elapsed time.Duration) {
	if b.metrics != nil {
		b.metrics.ObserveCommit(outcome, elapsed)
	}
}
