package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/config"
)

// Open connects the configured backend, builds its indices and wraps it in
// a circuit breaker when enabled.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.Store.QueryTimeoutSeconds) * time.Second

	var (
		store Store
		err   error
	)
	switch cfg.Store.Backend {
	case "memgraph":
		store, err = NewMemgraphStore(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, timeout, logger)
	case "sqlite":
		store, err = OpenSQLite(ctx, cfg.SQLite.Path, timeout, logger)
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := store.BuildIndices(ctx); err != nil {
		logger.Warn("failed to build indices", zap.Error(err))
	}

	if cfg.Breaker.Enabled {
		store = NewBreakerStore(store, cfg.Breaker, logger)
	}
	return store, nil
}
