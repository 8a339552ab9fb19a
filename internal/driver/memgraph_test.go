package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rhymenet/internal/core/model"
)

type fakeRunner struct {
	queries []string
	params  []map[string]interface{}
	result  neo4j.EagerResult
	err     error
}

func (f *fakeRunner) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	return f.result, f.err
}

func (f *fakeRunner) Close(ctx context.Context) error { return nil }

func edgeRecord(word, rhymesWith, rhymeType, songID string, year interface{}) *neo4j.Record {
	return &neo4j.Record{
		Keys: []string{"word", "rhymes_with", "rhyme_type", "song_id", "word_line", "rhymes_with_line",
			"title", "artist", "year", "billboard_rank", "genre"},
		Values: []interface{}{word, rhymesWith, rhymeType, songID, int64(1), int64(2),
			"Telephone Line", "The Dials", year, nil, "pop"},
	}
}

func TestMemgraphStore_FetchEdges(t *testing.T) {
	runner := &fakeRunner{result: neo4j.EagerResult{Records: []*neo4j.Record{
		edgeRecord("phone", "tone", "perfect", "s1", int64(1999)),
		edgeRecord("phone", "alone", "perfect", "s1", nil),
	}}}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)

	edges, err := store.FetchEdges(context.Background(), []string{" Phone "}, model.EdgeFilter{})
	require.NoError(t, err)
	require.Len(t, edges, 2)

	assert.Equal(t, "tone", edges[0].RhymesWith)
	assert.Equal(t, model.Perfect, edges[0].RhymeType)
	assert.Equal(t, 1, edges[0].WordLine)
	assert.Equal(t, 2, edges[0].RhymesWithLine)
	require.NotNil(t, edges[0].Song.Year)
	assert.Equal(t, 1999, *edges[0].Song.Year)
	assert.Nil(t, edges[1].Song.Year)
	assert.Nil(t, edges[0].Song.BillboardRank)
	assert.Equal(t, "pop", edges[0].Song.GenreOrEmpty())

	require.Len(t, runner.params, 1)
	assert.Equal(t, []string{"phone"}, runner.params[0]["frontier"])
	assert.NotContains(t, runner.queries[0], "$genres")
}

func TestMemgraphStore_FetchEdgesBuildsFilterClauses(t *testing.T) {
	runner := &fakeRunner{}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)
	minRank, maxRank := 1, 50

	_, err := store.FetchEdges(context.Background(), []string{"phone"}, model.EdgeFilter{
		RhymeTypes: []model.RhymeType{model.Slant},
		Genres:     []string{"rock"},
		Years:      []int{2005},
		MinRank:    &minRank,
		MaxRank:    &maxRank,
		Artists:    []string{"Granite"},
	})
	require.NoError(t, err)

	q := runner.queries[0]
	assert.Contains(t, q, "r.rhyme_type IN $rhyme_types")
	assert.Contains(t, q, "s.genre IN $genres")
	assert.Contains(t, q, "s.year IN $years")
	assert.Contains(t, q, "s.billboard_rank >= $min_rank")
	assert.Contains(t, q, "s.billboard_rank <= $max_rank")
	assert.Contains(t, q, "s.artist IN $artists")

	p := runner.params[0]
	assert.Equal(t, []string{"slant"}, p["rhyme_types"])
	assert.Equal(t, []int64{2005}, p["years"])
	assert.Equal(t, int64(1), p["min_rank"])
	assert.Equal(t, int64(50), p["max_rank"])
}

func TestMemgraphStore_FetchEdgesEmptyFrontier(t *testing.T) {
	runner := &fakeRunner{}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)

	edges, err := store.FetchEdges(context.Background(), nil, model.EdgeFilter{})
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.Empty(t, runner.queries)
}

func TestMemgraphStore_QueryFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("connection refused")}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)

	_, err := store.FetchEdges(context.Background(), []string{"phone"}, model.EdgeFilter{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, _, err = store.Lyrics(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMemgraphStore_Lyrics(t *testing.T) {
	runner := &fakeRunner{result: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"lyrics"}, Values: []interface{}{"line one\nline two"}},
	}}}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)

	lyrics, found, err := store.Lyrics(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "line one\nline two", lyrics)

	runner.result = neo4j.EagerResult{}
	_, found, err = store.Lyrics(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemgraphStore_Facets(t *testing.T) {
	runner := &fakeRunner{result: neo4j.EagerResult{Records: []*neo4j.Record{{
		Keys: []string{"genres", "years", "artists"},
		Values: []interface{}{
			[]interface{}{"rock", "pop"},
			[]interface{}{int64(1999), int64(2010)},
			[]interface{}{"The Dials", "Granite"},
		},
	}}}}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)

	facets, err := store.Facets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pop", "rock"}, facets.Genres)
	assert.Equal(t, []int{2010, 1999}, facets.Years)
	assert.Equal(t, []string{"Granite", "The Dials"}, facets.Artists)
}

func TestMemgraphStore_SaveRhymePair(t *testing.T) {
	runner := &fakeRunner{}
	store := NewMemgraphStoreWithRunner(runner, 0, nil)

	err := store.SaveRhymePair(context.Background(), model.RhymeEdge{
		Word: "Phone", RhymesWith: "Tone", RhymeType: model.Perfect, SongID: "s1", WordLine: 1, RhymesWithLine: 3,
	})
	require.NoError(t, err)

	p := runner.params[0]
	assert.Equal(t, "phone", p["word"])
	assert.Equal(t, "tone", p["rhymes_with"])
	assert.Equal(t, int64(3), p["rhymes_with_line"])
	assert.Contains(t, p, "seq")
}
