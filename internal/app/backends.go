package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphkit/internal/bridge"
	"github.com/specialistvlad/graphkit/internal/config"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/localsession"
	"github.com/specialistvlad/graphkit/internal/memdb"
	"github.com/specialistvlad/graphkit/internal/neo4jdb"
	"github.com/specialistvlad/graphkit/internal/pubsub"
	"github.com/specialistvlad/graphkit/internal/socketbus"
)

// backends holds what a session is wired to, together with the functions
// releasing them.
type backends struct {
	db      bridge.Database
	bus     pubsub.Bus
	drainer pubsub.Drainer
	closers []func(ctx context.Context) error
}

func (b *backends) close(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			logger.Warn("Failed to release backend.", "error", err)
		}
	}
}

// openBackends opens the database and the relay connection named by the
// document. Both are optional.
func openBackends(ctx context.Context, m *config.Model) (*backends, error) {
	logger := ctxlog.FromContext(ctx)
	b := &backends{}

	if m.Database != nil {
		switch m.Database.Driver {
		case config.DriverMemory:
			logger.Info("Using in-memory database.")
			b.db = memdb.New()
		case config.DriverNeo4j:
			logger.Info("Connecting to Neo4j.", "uri", m.Database.URI)
			db, err := neo4jdb.Open(ctx, neo4jdb.Config{
				URI:      m.Database.URI,
				Username: m.Database.Username,
				Password: m.Database.Password,
				Database: m.Database.Name,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to open database: %w", err)
			}
			b.db = db
			b.closers = append(b.closers, db.Close)
		default:
			return nil, fmt.Errorf("unsupported database driver %q", m.Database.Driver)
		}
	}

	if m.Replica != nil && m.Replica.RelayURL != "" {
		client, err := socketbus.Dial(ctx, socketbus.Config{URL: m.Replica.RelayURL})
		if err != nil {
			b.close(ctx)
			return nil, fmt.Errorf("failed to connect to relay: %w", err)
		}
		b.bus = client
		b.drainer = client
		b.closers = append(b.closers, func(context.Context) error {
			client.Close()
			return nil
		})
	}
	return b, nil
}

// bridgeConfig overlays the document's retry settings on the defaults.
func bridgeConfig(m *config.Model) bridge.Config {
	cfg := bridge.DefaultConfig()
	if m.Database == nil {
		return cfg
	}
	if m.Database.MaxAttempts > 0 {
		cfg.MaxAttempts = m.Database.MaxAttempts
	}
	if m.Database.Backoff > 0 {
		cfg.Backoff = m.Database.Backoff
	}
	if br := m.Database.Breaker; br != nil {
		bc := bridge.DefaultBreakerConfig(m.Database.Driver)
		if br.FailureThreshold > 0 {
			bc.FailureThreshold = br.FailureThreshold
		}
		if br.MinRequests > 0 {
			bc.MinRequests = br.MinRequests
		}
		if br.Timeout > 0 {
			bc.Timeout = br.Timeout
		}
		cfg.Breaker = &bc
	}
	return cfg
}

// newFactory builds the session factory for the document.
func (a *App) newFactory() *localsession.Factory {
	f := &localsession.Factory{
		Bridge:  bridgeConfig(a.model),
		Metrics: a.metrics,
	}
	if r := a.model.Replica; r != nil {
		f.Topic = r.Topic
		f.IDStrategy = r.IDStrategy
	}
	return f
}
