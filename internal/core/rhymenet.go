package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/core/aggregate"
	"github.com/agenthands/rhymenet/internal/core/compose"
	"github.com/agenthands/rhymenet/internal/core/family"
	"github.com/agenthands/rhymenet/internal/core/filter"
	"github.com/agenthands/rhymenet/internal/core/lyrics"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/core/network"
	"github.com/agenthands/rhymenet/internal/core/sorting"
	"github.com/agenthands/rhymenet/internal/driver"
	"github.com/agenthands/rhymenet/internal/llm"
	"github.com/agenthands/rhymenet/internal/logger"
	"github.com/agenthands/rhymenet/internal/metrics"
)

var (
	ErrSongNotFound = errors.New("core: song not found")
	ErrNoKeywords   = errors.New("core: at least one keyword is required")
)

const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusPartial = "partial"
)

// Backend is the read side of a store.
type Backend interface {
	driver.EdgeStore
	driver.LyricsStore
}

// RhymeNet wires the expansion and result-shaping pipeline to a store.
type RhymeNet struct {
	Store    Backend
	Expander *network.Expander
	Families *family.Detector
	Composer *compose.Composer
	Ranker   *llm.MeaningRanker
	Metrics  *metrics.Collector

	cfg config.SearchConfig
	log *zap.Logger
}

// NewRhymeNet builds the pipeline. client may be nil, which disables
// next-line generation and leaves meaning ranking in pass-through mode.
func NewRhymeNet(store Backend, client llm.LLMClient, cfg config.SearchConfig, collector *metrics.Collector, log *zap.Logger) *RhymeNet {
	log = logger.OrNop(log)
	expander := network.NewExpander(store, log)

	var composer *compose.Composer
	if client != nil {
		composer = compose.NewComposer(client, expander, log)
	}

	return &RhymeNet{
		Store:    store,
		Expander: expander,
		Families: family.NewDetector(),
		Composer: composer,
		Ranker:   llm.NewMeaningRanker(client, log),
		Metrics:  collector,
		cfg:      cfg,
		log:      log,
	}
}

// Search expands seed. maxDepth 0 means the configured default and values
// above the configured maximum are clamped to it.
func (r *RhymeNet) Search(ctx context.Context, seed string, maxDepth int, edgeFilter model.EdgeFilter) (*model.NetworkResult, error) {
	if maxDepth == 0 {
		maxDepth = r.cfg.DefaultDepth
	}
	if r.cfg.MaxDepth > 0 && maxDepth > r.cfg.MaxDepth {
		maxDepth = r.cfg.MaxDepth
	}

	result, err := r.Expander.Expand(ctx, seed, maxDepth, edgeFilter)
	if err != nil {
		r.Metrics.RecordSearch("network", "invalid")
		return nil, err
	}

	status := Status(result)
	r.Metrics.RecordSearch("network", status)
	r.Metrics.ObserveWords(result.TotalWords)
	if status == StatusPartial {
		r.Metrics.RecordStoreFailure("fetch_edges")
	}

	r.log.Info("network search",
		zap.String("seed", result.SeedWord),
		zap.Int("max_depth", maxDepth),
		zap.Int("words", result.TotalWords),
		zap.Int("depth_reached", result.MaxDepthReached),
		zap.String("status", status))
	return result, nil
}

// Status tells a clean, an empty and a store-truncated expansion apart.
func Status(result *model.NetworkResult) string {
	switch {
	case result.Partial():
		return StatusPartial
	case len(result.Layers) == 0:
		return StatusEmpty
	}
	return StatusOK
}

func (r *RhymeNet) DeriveRecords(result *model.NetworkResult) []model.SortableRecord {
	return aggregate.Aggregate(result)
}

func (r *RhymeNet) ApplyFilters(records []model.SortableRecord, f model.FilterSet) []model.SortableRecord {
	return filter.Network(records, f)
}

func (r *RhymeNet) ApplySort(records []model.SortableRecord, order model.SortOrder) []model.SortableRecord {
	return sorting.Sort(records, order)
}

// NetworkView is what a client renders for one network search.
type NetworkView struct {
	Records  []model.SortableRecord `json:"records"`
	Families []model.Family         `json:"families"`
}

// View derives, filters and sorts records. It never touches the store.
func (r *RhymeNet) View(result *model.NetworkResult, f model.FilterSet, order model.SortOrder) NetworkView {
	records := r.ApplySort(r.ApplyFilters(r.DeriveRecords(result), f), order)
	return NetworkView{Records: records, Families: r.Families.Detect(result)}
}

// SimpleSearch finds song lines ending in word.
func (r *RhymeNet) SimpleSearch(ctx context.Context, word string, allMatches bool, f model.FilterSet) ([]model.SimpleResult, error) {
	if model.Normalize(word) == "" {
		return nil, network.ErrInvalidSeed
	}

	songs, err := r.Store.Songs(ctx, model.SongFilter{
		Genres:  f.Genres,
		Years:   f.Years,
		MinRank: f.MinRank,
		MaxRank: f.MaxRank,
		Artists: f.Artists,
	})
	if err != nil {
		r.Metrics.RecordSearch("simple", "error")
		r.Metrics.RecordStoreFailure("songs")
		return nil, fmt.Errorf("simple search: %w", err)
	}

	results := filter.Simple(lyrics.Simple(songs, word, allMatches, r.contextLines()), f)
	r.Metrics.RecordSearch("simple", outcome(len(results)))
	return results, nil
}

// FigurativeSearch scans up to the configured number of songs for lines
// containing any keyword. Genre and artist match by substring.
func (r *RhymeNet) FigurativeSearch(ctx context.Context, keywords []string, f model.FilterSet) ([]model.FigurativeResult, error) {
	var cleaned []string
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoKeywords
	}

	songs, err := r.Store.Songs(ctx, model.SongFilter{
		Years:   f.Years,
		MinRank: f.MinRank,
		MaxRank: f.MaxRank,
		Limit:   r.cfg.FigurativeSongCap,
	})
	if err != nil {
		r.Metrics.RecordSearch("figurative", "error")
		r.Metrics.RecordStoreFailure("songs")
		return nil, fmt.Errorf("figurative search: %w", err)
	}

	results := lyrics.Figurative(songs, cleaned, lyrics.FigurativeOptions{
		Genres:  f.Genres,
		Artists: f.Artists,
		Context: r.contextLines(),
	})
	r.Metrics.RecordSearch("figurative", outcome(len(results)))
	return results, nil
}

// LyricsView is the full text of a song plus the contexts of highlighted words.
type LyricsView struct {
	SongID   string              `json:"song_id"`
	Lyrics   string              `json:"lyrics"`
	Contexts []model.LineContext `json:"contexts"`
}

func (r *RhymeNet) Lyrics(ctx context.Context, songID string, highlight []string) (*LyricsView, error) {
	text, found, err := r.Store.Lyrics(ctx, songID)
	if err != nil {
		r.Metrics.RecordStoreFailure("lyrics")
		return nil, fmt.Errorf("lyrics: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSongNotFound, songID)
	}
	return &LyricsView{
		SongID:   songID,
		Lyrics:   text,
		Contexts: lyrics.Highlight(text, highlight, r.contextLines()),
	}, nil
}

func (r *RhymeNet) Facets(ctx context.Context) (model.Facets, error) {
	facets, err := r.Store.Facets(ctx)
	if err != nil {
		r.Metrics.RecordStoreFailure("facets")
		return model.Facets{}, fmt.Errorf("facets: %w", err)
	}
	return facets, nil
}

func (r *RhymeNet) NextLine(ctx context.Context, req compose.Request) (*compose.Result, error) {
	if r.Composer == nil {
		return nil, compose.ErrNoLLM
	}
	return r.Composer.NextLine(ctx, req)
}

func (r *RhymeNet) RankByMeaning(ctx context.Context, meaning string, lines []llm.CandidateLine) ([]llm.RankedLine, error) {
	return r.Ranker.Rank(ctx, meaning, lines)
}

func (r *RhymeNet) contextLines() int {
	if r.cfg.ContextLines > 0 {
		return r.cfg.ContextLines
	}
	return lyrics.DefaultContext
}

func outcome(n int) string {
	if n == 0 {
		return StatusEmpty
	}
	return StatusOK
}
