package model

import "strings"

// Normalize lowercases and trims a word so it can be used as a graph key.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// NoRank is used in place of a missing Billboard rank when comparing ranks.
const NoRank = 999

type Song struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Year          *int    `json:"year"`
	BillboardRank *int    `json:"billboard_rank"`
	Genre         *string `json:"genre"`
}

func (s Song) YearOrZero() int {
	if s.Year == nil {
		return 0
	}
	return *s.Year
}

func (s Song) Rank() int {
	if s.BillboardRank == nil {
		return NoRank
	}
	return *s.BillboardRank
}

func (s Song) GenreOrEmpty() string {
	if s.Genre == nil {
		return ""
	}
	return *s.Genre
}

// SongLyrics is a song together with its raw lyric text.
type SongLyrics struct {
	Song
	Lyrics string `json:"lyrics,omitempty"`
}
