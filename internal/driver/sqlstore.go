package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// SQLStore serves the same edge and lyrics queries from a relational
// songs/rhyme_pairs schema.
type SQLStore struct {
	db      *sql.DB
	timeout time.Duration
	logger  *zap.Logger
}

// OpenSQLite opens (or creates) a sqlite database and applies the schema.
func OpenSQLite(ctx context.Context, path string, timeout time.Duration, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	store := NewSQLStore(db, timeout, logger)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrStoreUnavailable, err)
	}
	store.logger.Info("Opened sqlite store", zap.String("path", path))
	return store, nil
}

// NewSQLStore wraps an existing handle. The schema is assumed to exist.
func NewSQLStore(db *sql.DB, timeout time.Duration, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, timeout: timeout, logger: logger}
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *SQLStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLStore) BuildIndices(ctx context.Context) error {
	for _, q := range sqliteIndices {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%w: build indices: %v", ErrStoreUnavailable, err)
		}
	}
	return nil
}

func (s *SQLStore) FetchEdges(ctx context.Context, frontier []string, filter model.EdgeFilter) ([]model.RhymeEdge, error) {
	if len(frontier) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	marks := placeholders(len(frontier))
	args := make([]interface{}, 0, 2*len(frontier))
	for pass := 0; pass < 2; pass++ {
		for _, w := range frontier {
			args = append(args, model.Normalize(w))
		}
	}

	var clauses []string
	if len(filter.RhymeTypes) > 0 {
		clauses = append(clauses, "rp.rhyme_type IN ("+placeholders(len(filter.RhymeTypes))+")")
		for _, t := range filter.RhymeTypes {
			args = append(args, string(t))
		}
	}
	songClauses, songArgs := songDimensionClauses(filter.Genres, filter.Years, filter.MinRank, filter.MaxRank, filter.Artists)
	clauses = append(clauses, songClauses...)
	args = append(args, songArgs...)

	query := fmt.Sprintf(edgeSelect, marks, joinClauses(clauses))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch edges: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var edges []model.RhymeEdge
	for rows.Next() {
		var (
			e          model.RhymeEdge
			rhymeType  string
			year, rank sql.NullInt64
			genre      sql.NullString
		)
		if err := rows.Scan(&e.Word, &e.RhymesWith, &rhymeType, &e.SongID, &e.WordLine, &e.RhymesWithLine,
			&e.Song.Title, &e.Song.Artist, &year, &rank, &genre); err != nil {
			return nil, fmt.Errorf("%w: scan edge: %v", ErrStoreUnavailable, err)
		}
		e.RhymeType = model.RhymeType(rhymeType)
		e.Song.ID = e.SongID
		e.Song.Year = nullIntPtr(year)
		e.Song.BillboardRank = nullIntPtr(rank)
		e.Song.Genre = nullStringPtr(genre)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: fetch edges: %v", ErrStoreUnavailable, err)
	}
	return edges, nil
}

func (s *SQLStore) Lyrics(ctx context.Context, songID string) (string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var lyrics sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT lyrics_raw FROM songs WHERE id = ?`, songID).Scan(&lyrics)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: lyrics: %v", ErrStoreUnavailable, err)
	}
	if !lyrics.Valid {
		return "", false, nil
	}
	return lyrics.String, true, nil
}

func (s *SQLStore) Songs(ctx context.Context, filter model.SongFilter) ([]model.SongLyrics, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	clauses, args := songDimensionClauses(filter.Genres, filter.Years, filter.MinRank, filter.MaxRank, filter.Artists)
	limit := noLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(songSelect, joinClauses(clauses)), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list songs: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var songs []model.SongLyrics
	for rows.Next() {
		var (
			song       model.SongLyrics
			year, rank sql.NullInt64
			genre      sql.NullString
		)
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &year, &rank, &genre, &song.Lyrics); err != nil {
			return nil, fmt.Errorf("%w: scan song: %v", ErrStoreUnavailable, err)
		}
		song.Year = nullIntPtr(year)
		song.BillboardRank = nullIntPtr(rank)
		song.Genre = nullStringPtr(genre)
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list songs: %v", ErrStoreUnavailable, err)
	}
	return songs, nil
}

func (s *SQLStore) Facets(ctx context.Context) (model.Facets, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	facets := model.Facets{Genres: []string{}, Years: []int{}, Artists: []string{}}

	genres, err := s.distinctStrings(ctx, `SELECT DISTINCT genre FROM songs WHERE genre IS NOT NULL AND genre != '' ORDER BY genre`)
	if err != nil {
		return facets, err
	}
	artists, err := s.distinctStrings(ctx, `SELECT DISTINCT artist FROM songs WHERE artist != '' ORDER BY artist`)
	if err != nil {
		return facets, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM songs WHERE year IS NOT NULL ORDER BY year DESC`)
	if err != nil {
		return facets, fmt.Errorf("%w: facets: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return facets, fmt.Errorf("%w: facets: %v", ErrStoreUnavailable, err)
		}
		facets.Years = append(facets.Years, y)
	}

	facets.Genres = genres
	facets.Artists = artists
	return facets, rows.Err()
}

func (s *SQLStore) distinctStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: facets: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: facets: %v", ErrStoreUnavailable, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveSong(ctx context.Context, song model.SongLyrics) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var lyrics interface{}
	if song.Lyrics != "" {
		lyrics = song.Lyrics
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist, year, billboard_rank, genre, lyrics_raw)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			year = excluded.year,
			billboard_rank = excluded.billboard_rank,
			genre = excluded.genre,
			lyrics_raw = excluded.lyrics_raw`,
		song.ID, song.Title, song.Artist, intPtrParam(song.Year), intPtrParam(song.BillboardRank), stringPtrParam(song.Genre), lyrics)
	if err != nil {
		return fmt.Errorf("%w: save song: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLStore) SaveRhymePair(ctx context.Context, edge model.RhymeEdge) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rhyme_pairs (song_id, word, rhymes_with, rhyme_type, word_line, rhymes_with_line)
		VALUES (?, ?, ?, ?, ?, ?)`,
		edge.SongID, model.Normalize(edge.Word), model.Normalize(edge.RhymesWith), string(edge.RhymeType), edge.WordLine, edge.RhymesWithLine)
	if err != nil {
		return fmt.Errorf("%w: save rhyme pair: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func songDimensionClauses(genres []string, years []int, minRank, maxRank *int, artists []string) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(genres) > 0 {
		clauses = append(clauses, "s.genre IN ("+placeholders(len(genres))+")")
		for _, g := range genres {
			args = append(args, g)
		}
	}
	if len(years) > 0 {
		clauses = append(clauses, "s.year IN ("+placeholders(len(years))+")")
		for _, y := range years {
			args = append(args, y)
		}
	}
	if minRank != nil {
		clauses = append(clauses, "s.billboard_rank >= ?")
		args = append(args, *minRank)
	}
	if maxRank != nil {
		clauses = append(clauses, "s.billboard_rank <= ?")
		args = append(args, *maxRank)
	}
	if len(artists) > 0 {
		clauses = append(clauses, "s.artist IN ("+placeholders(len(artists))+")")
		for _, a := range artists {
			args = append(args, a)
		}
	}
	return clauses, args
}

func joinClauses(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(clauses, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
