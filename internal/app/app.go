package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/graphkit/internal/config"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/metrics"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "graphkit"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	metrics    *metrics.Collector
	httpServer *http.Server
}

// NewApp loads the document at appConfig.DocumentPath and returns an App
// ready to run. Reports go to outW and logs to logW.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := NewLogger(serviceGraph, appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		model:   model,
		metrics: metrics.NewCollector(MetricsNamespace),
	}, nil
}

// Model returns the loaded document. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Metrics returns the application's collectors.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}
