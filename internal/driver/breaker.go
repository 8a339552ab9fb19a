package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/core/model"
)

// BreakerStore wraps a Store so a failing backend is short-circuited
// instead of being hit by every expansion layer.
type BreakerStore struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerStore(store Store, cfg config.BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	st := gobreaker.Settings{
		Name:        "store",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		// a caller hanging up says nothing about the backend
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BreakerStore{store: store, cb: gobreaker.NewCircuitBreaker(st)}
}

// State exposes the breaker state for health reporting.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, err
}

func (b *BreakerStore) FetchEdges(ctx context.Context, frontier []string, filter model.EdgeFilter) ([]model.RhymeEdge, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.store.FetchEdges(ctx, frontier, filter)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.RhymeEdge), nil
}

type lyricsLookup struct {
	lyrics string
	found  bool
}

func (b *BreakerStore) Lyrics(ctx context.Context, songID string) (string, bool, error) {
	res, err := b.execute(func() (interface{}, error) {
		lyrics, found, err := b.store.Lyrics(ctx, songID)
		return lyricsLookup{lyrics: lyrics, found: found}, err
	})
	if err != nil {
		return "", false, err
	}
	l := res.(lyricsLookup)
	return l.lyrics, l.found, nil
}

func (b *BreakerStore) Songs(ctx context.Context, filter model.SongFilter) ([]model.SongLyrics, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.store.Songs(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.SongLyrics), nil
}

func (b *BreakerStore) Facets(ctx context.Context) (model.Facets, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.store.Facets(ctx)
	})
	if err != nil {
		return model.Facets{}, err
	}
	return res.(model.Facets), nil
}

func (b *BreakerStore) SaveSong(ctx context.Context, song model.SongLyrics) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.SaveSong(ctx, song)
	})
	return err
}

func (b *BreakerStore) SaveRhymePair(ctx context.Context, edge model.RhymeEdge) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.SaveRhymePair(ctx, edge)
	})
	return err
}

func (b *BreakerStore) BuildIndices(ctx context.Context) error {
	return b.store.BuildIndices(ctx)
}

func (b *BreakerStore) Close(ctx context.Context) error {
	return b.store.Close(ctx)
}
