package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// QueryRunner executes a Cypher query and returns every record eagerly.
type QueryRunner interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

type boltRunner struct {
	driver neo4j.DriverWithContext
}

func (b *boltRunner) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, b.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (b *boltRunner) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}

// MemgraphStore keeps words as (:Word) nodes, rhyme pairs as [:RHYMES_WITH]
// relationships carrying the song id and lines, and songs as (:Song) nodes.
type MemgraphStore struct {
	Runner  QueryRunner
	Timeout time.Duration
	logger  *zap.Logger
}

func NewMemgraphStore(ctx context.Context, uri, username, password string, timeout time.Duration, logger *zap.Logger) (*MemgraphStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	logger.Info("Connected to Memgraph", zap.String("uri", uri))
	return NewMemgraphStoreWithRunner(&boltRunner{driver: d}, timeout, logger), nil
}

func NewMemgraphStoreWithRunner(runner QueryRunner, timeout time.Duration, logger *zap.Logger) *MemgraphStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemgraphStore{Runner: runner, Timeout: timeout, logger: logger}
}

func (m *MemgraphStore) Close(ctx context.Context) error {
	return m.Runner.Close(ctx)
}

func (m *MemgraphStore) run(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	res, err := m.Runner.ExecuteQuery(ctx, query, params)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, nil
}

func (m *MemgraphStore) FetchEdges(ctx context.Context, frontier []string, filter model.EdgeFilter) ([]model.RhymeEdge, error) {
	if len(frontier) == 0 {
		return nil, nil
	}

	clauses, params := edgeFilterClauses(filter)
	words := make([]string, len(frontier))
	for i, w := range frontier {
		words[i] = model.Normalize(w)
	}
	params["frontier"] = words

	res, err := m.run(ctx, fmt.Sprintf(FetchEdgesQuery, clauses), params)
	if err != nil {
		return nil, err
	}

	edges := make([]model.RhymeEdge, 0, len(res.Records))
	for _, rec := range res.Records {
		songID := recordString(rec, "song_id")
		edges = append(edges, model.RhymeEdge{
			Word:           recordString(rec, "word"),
			RhymesWith:     recordString(rec, "rhymes_with"),
			RhymeType:      model.RhymeType(recordString(rec, "rhyme_type")),
			SongID:         songID,
			WordLine:       recordInt(rec, "word_line"),
			RhymesWithLine: recordInt(rec, "rhymes_with_line"),
			Song: model.Song{
				ID:            songID,
				Title:         recordString(rec, "title"),
				Artist:        recordString(rec, "artist"),
				Year:          recordIntPtr(rec, "year"),
				BillboardRank: recordIntPtr(rec, "billboard_rank"),
				Genre:         recordStringPtr(rec, "genre"),
			},
		})
	}
	return edges, nil
}

// edgeFilterClauses renders the song dimension filters as " AND ..." fragments.
func edgeFilterClauses(filter model.EdgeFilter) (string, map[string]interface{}) {
	var clauses []string
	params := make(map[string]interface{})

	if len(filter.RhymeTypes) > 0 {
		types := make([]string, len(filter.RhymeTypes))
		for i, t := range filter.RhymeTypes {
			types[i] = string(t)
		}
		clauses = append(clauses, "r.rhyme_type IN $rhyme_types")
		params["rhyme_types"] = types
	}
	if len(filter.Genres) > 0 {
		clauses = append(clauses, "s.genre IN $genres")
		params["genres"] = filter.Genres
	}
	if len(filter.Years) > 0 {
		clauses = append(clauses, "s.year IN $years")
		params["years"] = toInt64s(filter.Years)
	}
	if filter.MinRank != nil {
		clauses = append(clauses, "s.billboard_rank >= $min_rank")
		params["min_rank"] = int64(*filter.MinRank)
	}
	if filter.MaxRank != nil {
		clauses = append(clauses, "s.billboard_rank <= $max_rank")
		params["max_rank"] = int64(*filter.MaxRank)
	}
	if len(filter.Artists) > 0 {
		clauses = append(clauses, "s.artist IN $artists")
		params["artists"] = filter.Artists
	}

	if len(clauses) == 0 {
		return "", params
	}
	return " AND " + strings.Join(clauses, " AND "), params
}

func songFilterClauses(filter model.SongFilter) (string, map[string]interface{}) {
	var clauses []string
	params := make(map[string]interface{})

	if len(filter.Genres) > 0 {
		clauses = append(clauses, "s.genre IN $genres")
		params["genres"] = filter.Genres
	}
	if len(filter.Years) > 0 {
		clauses = append(clauses, "s.year IN $years")
		params["years"] = toInt64s(filter.Years)
	}
	if filter.MinRank != nil {
		clauses = append(clauses, "s.billboard_rank >= $min_rank")
		params["min_rank"] = int64(*filter.MinRank)
	}
	if filter.MaxRank != nil {
		clauses = append(clauses, "s.billboard_rank <= $max_rank")
		params["max_rank"] = int64(*filter.MaxRank)
	}
	if len(filter.Artists) > 0 {
		clauses = append(clauses, "s.artist IN $artists")
		params["artists"] = filter.Artists
	}

	limit := int64(noLimit)
	if filter.Limit > 0 {
		limit = int64(filter.Limit)
	}
	params["limit"] = limit

	if len(clauses) == 0 {
		return "", params
	}
	return " AND " + strings.Join(clauses, " AND "), params
}

func (m *MemgraphStore) Lyrics(ctx context.Context, songID string) (string, bool, error) {
	res, err := m.run(ctx, GetLyricsQuery, map[string]interface{}{"id": songID})
	if err != nil {
		return "", false, err
	}
	if len(res.Records) == 0 {
		return "", false, nil
	}
	lyrics := recordStringPtr(res.Records[0], "lyrics")
	if lyrics == nil {
		return "", false, nil
	}
	return *lyrics, true, nil
}

func (m *MemgraphStore) Songs(ctx context.Context, filter model.SongFilter) ([]model.SongLyrics, error) {
	clauses, params := songFilterClauses(filter)
	res, err := m.run(ctx, fmt.Sprintf(ListSongsQuery, clauses), params)
	if err != nil {
		return nil, err
	}

	songs := make([]model.SongLyrics, 0, len(res.Records))
	for _, rec := range res.Records {
		songs = append(songs, model.SongLyrics{
			Song: model.Song{
				ID:            recordString(rec, "id"),
				Title:         recordString(rec, "title"),
				Artist:        recordString(rec, "artist"),
				Year:          recordIntPtr(rec, "year"),
				BillboardRank: recordIntPtr(rec, "billboard_rank"),
				Genre:         recordStringPtr(rec, "genre"),
			},
			Lyrics: recordString(rec, "lyrics"),
		})
	}
	return songs, nil
}

func (m *MemgraphStore) Facets(ctx context.Context) (model.Facets, error) {
	res, err := m.run(ctx, FacetsQuery, nil)
	if err != nil {
		return model.Facets{}, err
	}

	facets := model.Facets{Genres: []string{}, Years: []int{}, Artists: []string{}}
	if len(res.Records) == 0 {
		return facets, nil
	}
	rec := res.Records[0]
	facets.Genres = recordStrings(rec, "genres")
	facets.Artists = recordStrings(rec, "artists")
	facets.Years = recordInts(rec, "years")

	sort.Strings(facets.Genres)
	sort.Strings(facets.Artists)
	sort.Sort(sort.Reverse(sort.IntSlice(facets.Years)))
	return facets, nil
}

func (m *MemgraphStore) SaveSong(ctx context.Context, song model.SongLyrics) error {
	params := map[string]interface{}{
		"id":             song.ID,
		"title":          song.Title,
		"artist":         song.Artist,
		"year":           intPtrParam(song.Year),
		"billboard_rank": intPtrParam(song.BillboardRank),
		"genre":          stringPtrParam(song.Genre),
		"lyrics":         nilIfEmpty(song.Lyrics),
	}
	_, err := m.run(ctx, SaveSongQuery, params)
	return err
}

func (m *MemgraphStore) SaveRhymePair(ctx context.Context, edge model.RhymeEdge) error {
	params := map[string]interface{}{
		"word":             model.Normalize(edge.Word),
		"rhymes_with":      model.Normalize(edge.RhymesWith),
		"rhyme_type":       string(edge.RhymeType),
		"song_id":          edge.SongID,
		"word_line":        int64(edge.WordLine),
		"rhymes_with_line": int64(edge.RhymesWithLine),
		"seq":              time.Now().UnixNano(),
	}
	_, err := m.run(ctx, SaveRhymePairQuery, params)
	return err
}

func (m *MemgraphStore) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Word(name);",
		"CREATE INDEX ON :Song(id);",
		"CREATE INDEX ON :Song(year);",
	}

	for _, q := range queries {
		if _, err := m.run(ctx, q, nil); err != nil {
			// index may already exist
			m.logger.Warn("failed to create index", zap.String("query", q), zap.Error(err))
		}
	}
	return nil
}
