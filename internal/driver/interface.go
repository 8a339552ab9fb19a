package driver

import (
	"context"
	"errors"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// ErrStoreUnavailable wraps every failure to reach or query a backing store.
var ErrStoreUnavailable = errors.New("driver: store unavailable")

// EdgeStore returns every rhyme edge with an endpoint in frontier, matched
// case-insensitively, joined with its song and narrowed by filter.
type EdgeStore interface {
	FetchEdges(ctx context.Context, frontier []string, filter model.EdgeFilter) ([]model.RhymeEdge, error)
}

// LyricsStore is the read-only song and lyrics collaborator.
type LyricsStore interface {
	// Lyrics returns the raw text for songID; found is false when the song has none.
	Lyrics(ctx context.Context, songID string) (text string, found bool, err error)
	Songs(ctx context.Context, filter model.SongFilter) ([]model.SongLyrics, error)
	Facets(ctx context.Context) (model.Facets, error)
}

// Writer loads songs and rhyme pairs, used for seeding.
type Writer interface {
	SaveSong(ctx context.Context, song model.SongLyrics) error
	SaveRhymePair(ctx context.Context, edge model.RhymeEdge) error
}

type Store interface {
	EdgeStore
	LyricsStore
	Writer
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
