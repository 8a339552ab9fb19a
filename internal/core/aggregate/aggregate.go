// Package aggregate flattens a layered network into one record per word.
package aggregate

import (
	"github.com/agenthands/rhymenet/internal/core/model"
)

// Aggregate returns one record per discovered word in first-seen order.
// Frequency counts every connection reaching the word; Connections keeps
// the first one per song.
func Aggregate(result *model.NetworkResult) []model.SortableRecord {
	if result == nil {
		return []model.SortableRecord{}
	}

	records := []model.SortableRecord{}
	index := make(map[string]int)
	songs := make(map[string]map[string]bool)

	for _, layer := range result.Layers {
		for _, conn := range layer.Connections {
			word := conn.ToWord
			if word == result.SeedWord {
				continue
			}

			i, ok := index[word]
			if !ok {
				i = len(records)
				index[word] = i
				songs[word] = make(map[string]bool)
				records = append(records, model.SortableRecord{
					Word:        word,
					Depth:       layer.Depth,
					RhymeType:   conn.RhymeType,
					Connections: []model.Connection{},
				})
			}

			rec := &records[i]
			rec.Frequency++
			if !songs[word][conn.Song.ID] {
				songs[word][conn.Song.ID] = true
				rec.Connections = append(rec.Connections, conn)
			}
			if conn.RhymeType.Priority() < rec.RhymeType.Priority() {
				rec.RhymeType = conn.RhymeType
			}
		}
	}
	return records
}
