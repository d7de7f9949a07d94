package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/metrics"
	"github.com/specialistvlad/graphkit/internal/relay"
)

// RelayConfig configures the standalone relay server.
type RelayConfig struct {
	Addr      string `validate:"required,hostname_port"`
	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`
}

// NewRelayConfig validates cfg and returns a copy of it.
func NewRelayConfig(cfg RelayConfig) (*RelayConfig, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// RunRelay serves the relay together with /health and /metrics until ctx
// is done.
func RunRelay(ctx context.Context, logW io.Writer, cfg *RelayConfig) error {
	logger := NewLogger(serviceRelay, cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)

	collector := metrics.NewCollector(MetricsNamespace)
	srv := relay.New(ctx, relay.WithMetrics(collector))
	defer srv.Close()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", srv.Handler())
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Relay listening.", "address", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down relay.")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
