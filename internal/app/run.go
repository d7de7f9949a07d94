package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
)

// Run executes the main application logic: it hydrates a session from the
// document, evaluates its queries and writes the report. With Serve set it
// then applies ops from peers until ctx is done.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer func() {
			err = errors.Join(err, a.closeHealthcheckServer(context.WithoutCancel(ctx)))
		}()
	}

	b, err := openBackends(ctx, a.model)
	if err != nil {
		return err
	}
	defer b.close(context.WithoutCancel(ctx))

	s, err := a.newFactory().NewSession(ctx, b.db, b.bus)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		err = errors.Join(err, s.Close(context.WithoutCancel(ctx)))
	}()

	idMap, err := hydrate(ctx, s, a.model)
	if err != nil {
		return fmt.Errorf("failed to hydrate store: %w", err)
	}

	queries, err := runQueries(ctx, s, a.model.Queries, idMap)
	if err != nil {
		return err
	}
	a.logger.Info("Queries evaluated.", "count", len(queries))

	report := Report{
		IDMap:    idMap,
		Queries:  queries,
		Snapshot: s.Store().Snapshot(),
	}
	if a.model.Replica != nil {
		report.Replica = a.model.Replica.Name
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if a.config.Serve {
		if b.drainer == nil {
			a.logger.Warn("Serve requested without a relay, nothing will arrive.")
		}
		a.logger.Info("Session is live, waiting for peers.")
		if err := a.serve(ctx, b); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		a.logger.Info("Session stopped.")
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// serve drains the relay until ctx is done.
func (a *App) serve(ctx context.Context, b *backends) error {
	if b.drainer == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return b.drainer.Run(ctx)
}
