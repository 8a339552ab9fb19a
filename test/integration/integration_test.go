//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rhymenet/internal/app"
	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/driver"
)

const fixturePath = "../../internal/driver/testdata/songs.json"

func TestFullFlow_SQLite(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "rhymes.db")

	a, err := app.Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	fixture, err := driver.LoadFixtureFile(fixturePath)
	require.NoError(t, err)
	songs, pairs, err := fixture.Apply(ctx, a.Store)
	require.NoError(t, err)
	assert.Equal(t, 3, songs)
	assert.Equal(t, 5, pairs)

	result, err := a.RhymeNet.Search(ctx, "phone", 3, model.EdgeFilter{})
	require.NoError(t, err)
	assert.Equal(t, core.StatusOK, core.Status(result))
	// phone -> tone, alone -> stone -> go
	assert.Equal(t, 3, result.MaxDepthReached)
	assert.Equal(t, 4, result.TotalWords)

	view := a.RhymeNet.View(result, model.FilterSet{RhymeTypes: []model.RhymeType{model.Slant}}, model.SortOrder{
		{ID: "1", Field: model.SortByDepth, Direction: model.Asc},
	})
	var words []string
	for _, r := range view.Records {
		words = append(words, r.Word)
	}
	assert.Equal(t, []string{"go"}, words)

	perfectOnly, err := a.RhymeNet.Search(ctx, "phone", 3, model.EdgeFilter{RhymeTypes: []model.RhymeType{model.Perfect}})
	require.NoError(t, err)
	assert.Equal(t, 2, perfectOnly.MaxDepthReached)

	simple, err := a.RhymeNet.SimpleSearch(ctx, "stone", true, model.FilterSet{})
	require.NoError(t, err)
	assert.Len(t, simple, 2)

	lyrics, err := a.RhymeNet.Lyrics(ctx, "song-stone-cold", []string{"river"})
	require.NoError(t, err)
	require.Len(t, lyrics.Contexts, 1)
	assert.Equal(t, 4, lyrics.Contexts[0].LineNumber)
}

func TestFullFlow_Memgraph(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.Default()
	cfg.Store.Backend = "memgraph"
	cfg.Memgraph.URI = uri
	cfg.Memgraph.User = os.Getenv("MEMGRAPH_USER")
	cfg.Memgraph.Password = os.Getenv("MEMGRAPH_PASSWORD")

	a, err := app.Build(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	// words are suffixed per run so repeated runs do not share a network
	run := strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	w := func(s string) string { return s + run }
	year := 2001
	genre := "soul"

	fixture := &driver.Fixture{Songs: []driver.FixtureSong{{
		Title:  "Integration " + run,
		Artist: "Test Band",
		Year:   &year,
		Genre:  &genre,
		Lyrics: "first " + w("night") + "\nsecond " + w("light") + "\nthird " + w("bright"),
		Rhymes: []driver.FixtureRhyme{
			{Word: w("night"), RhymesWith: w("light"), RhymeType: model.Perfect, WordLine: 1, RhymesWithLine: 2},
			{Word: w("light"), RhymesWith: w("bright"), RhymeType: model.Perfect, WordLine: 2, RhymesWithLine: 3},
		},
	}}}
	_, pairs, err := fixture.Apply(ctx, a.Store)
	require.NoError(t, err)
	assert.Equal(t, 2, pairs)

	result, err := a.RhymeNet.Search(ctx, w("night"), 3, model.EdgeFilter{Genres: []string{genre}})
	require.NoError(t, err)
	assert.Nil(t, result.Failure)
	assert.Equal(t, 2, result.TotalWords)
	assert.Equal(t, 2, result.MaxDepthReached)
	assert.Equal(t, []string{w("light")}, result.Layers[0].DiscoveredWords)

	facets, err := a.RhymeNet.Facets(ctx)
	require.NoError(t, err)
	assert.Contains(t, facets.Genres, genre)
}
