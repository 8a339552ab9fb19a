// Package app assembles a store, an optional LLM client and the rhyme
// pipeline from configuration. Both binaries start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/driver"
	"github.com/agenthands/rhymenet/internal/llm"
	"github.com/agenthands/rhymenet/internal/logger"
	"github.com/agenthands/rhymenet/internal/metrics"
	"github.com/agenthands/rhymenet/internal/server"
)

const metricsNamespace = "rhymenet"

type App struct {
	Config   *config.Config
	Store    driver.Store
	RhymeNet *core.RhymeNet
	Metrics  *metrics.Collector
	Logger   *zap.Logger

	closers []func() error
}

// Build opens the configured store and wires the pipeline. The LLM is
// optional: with no provider configured generation endpoints answer 501.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)

	store, err := driver.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	a := &App{Config: cfg, Store: store, Logger: log}
	a.closers = append(a.closers, func() error { return store.Close(context.Background()) })

	client, err := llm.NewClient(ctx, cfg.LLM, log)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		log.Info("no llm provider configured, generation disabled")
		client = nil
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	default:
		if c, ok := client.(interface{ Close() error }); ok {
			a.closers = append(a.closers, c.Close)
		}
	}

	a.Metrics = metrics.NewCollector(metricsNamespace)
	a.RhymeNet = core.NewRhymeNet(store, client, cfg.Search, a.Metrics, log)
	return a, nil
}

// Server builds the HTTP API over the pipeline.
func (a *App) Server() *server.Server {
	var breaker server.BreakerState
	if b, ok := a.Store.(*driver.BreakerStore); ok {
		breaker = b
	}
	return server.NewServer(a.RhymeNet, a.Metrics, breaker, a.Config.Server, a.Logger)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
