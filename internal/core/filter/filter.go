// Package filter applies a FilterSet to network records or simple-search lines.
// Filters never fail: values that cannot match simply drop the record.
package filter

import (
	"github.com/agenthands/rhymenet/internal/core/model"
)

// Network keeps records passing every active field. Song fields pass when
// at least one of the record's connections matches.
func Network(records []model.SortableRecord, f model.FilterSet) []model.SortableRecord {
	out := make([]model.SortableRecord, 0, len(records))
	for _, rec := range records {
		if matchRecord(rec, f) {
			out = append(out, rec)
		}
	}
	return out
}

// Simple keeps line results whose song passes the song fields. Depth, rhyme
// type and frequency do not apply to lines.
func Simple(results []model.SimpleResult, f model.FilterSet) []model.SimpleResult {
	out := make([]model.SimpleResult, 0, len(results))
	for _, r := range results {
		if matchSong(r.Song, f) {
			out = append(out, r)
		}
	}
	return out
}

func matchRecord(rec model.SortableRecord, f model.FilterSet) bool {
	if len(f.Depths) > 0 && !contains(f.Depths, rec.Depth) {
		return false
	}
	if len(f.RhymeTypes) > 0 && !contains(f.RhymeTypes, rec.RhymeType) {
		return false
	}
	if f.MinFrequency != nil && rec.Frequency < *f.MinFrequency {
		return false
	}

	if len(f.Genres) > 0 && !anyConnection(rec, func(s model.Song) bool { return contains(f.Genres, s.GenreOrEmpty()) }) {
		return false
	}
	if len(f.Years) > 0 && !anyConnection(rec, func(s model.Song) bool { return contains(f.Years, s.YearOrZero()) }) {
		return false
	}
	if len(f.Artists) > 0 && !anyConnection(rec, func(s model.Song) bool { return contains(f.Artists, s.Artist) }) {
		return false
	}
	// both bounds must hold on the same connection
	if (f.MinRank != nil || f.MaxRank != nil) && !anyConnection(rec, func(s model.Song) bool { return inRank(s, f) }) {
		return false
	}
	return true
}

func matchSong(s model.Song, f model.FilterSet) bool {
	if len(f.Genres) > 0 && !contains(f.Genres, s.GenreOrEmpty()) {
		return false
	}
	if len(f.Years) > 0 && !contains(f.Years, s.YearOrZero()) {
		return false
	}
	if len(f.Artists) > 0 && !contains(f.Artists, s.Artist) {
		return false
	}
	if (f.MinRank != nil || f.MaxRank != nil) && !inRank(s, f) {
		return false
	}
	return true
}

func inRank(s model.Song, f model.FilterSet) bool {
	rank := s.Rank()
	if f.MinRank != nil && rank < *f.MinRank {
		return false
	}
	if f.MaxRank != nil && rank > *f.MaxRank {
		return false
	}
	return true
}

func anyConnection(rec model.SortableRecord, pred func(model.Song) bool) bool {
	for _, c := range rec.Connections {
		if pred(c.Song) {
			return true
		}
	}
	return false
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
