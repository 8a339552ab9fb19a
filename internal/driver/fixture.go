package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// Fixture is the seed file format: songs with their annotated rhyme pairs.
type Fixture struct {
	Songs []FixtureSong `json:"songs"`
}

type FixtureSong struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Artist        string         `json:"artist"`
	Year          *int           `json:"year,omitempty"`
	BillboardRank *int           `json:"billboard_rank,omitempty"`
	Genre         *string        `json:"genre,omitempty"`
	Lyrics        string         `json:"lyrics,omitempty"`
	Rhymes        []FixtureRhyme `json:"rhymes"`
}

type FixtureRhyme struct {
	Word           string          `json:"word"`
	RhymesWith     string          `json:"rhymes_with"`
	RhymeType      model.RhymeType `json:"rhyme_type"`
	WordLine       int             `json:"word_line"`
	RhymesWithLine int             `json:"rhymes_with_line"`
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

func LoadFixtureFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture '%s': %w", path, err)
	}
	defer file.Close()
	return LoadFixture(file)
}

// Apply writes every song and rhyme pair. Songs without an id get one.
// It returns the number of songs and pairs written.
func (f *Fixture) Apply(ctx context.Context, w Writer) (int, int, error) {
	var pairs int
	for i := range f.Songs {
		song := &f.Songs[i]
		if song.ID == "" {
			song.ID = uuid.NewString()
		}

		err := w.SaveSong(ctx, model.SongLyrics{
			Song: model.Song{
				ID:            song.ID,
				Title:         song.Title,
				Artist:        song.Artist,
				Year:          song.Year,
				BillboardRank: song.BillboardRank,
				Genre:         song.Genre,
			},
			Lyrics: song.Lyrics,
		})
		if err != nil {
			return i, pairs, fmt.Errorf("save song %q: %w", song.Title, err)
		}

		for _, r := range song.Rhymes {
			err := w.SaveRhymePair(ctx, model.RhymeEdge{
				Word:           r.Word,
				RhymesWith:     r.RhymesWith,
				RhymeType:      r.RhymeType,
				SongID:         song.ID,
				WordLine:       r.WordLine,
				RhymesWithLine: r.RhymesWithLine,
			})
			if err != nil {
				return i, pairs, fmt.Errorf("save rhyme %s/%s: %w", r.Word, r.RhymesWith, err)
			}
			pairs++
		}
	}
	return len(f.Songs), pairs, nil
}
