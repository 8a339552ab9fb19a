// Package sorting orders records by a user-editable chain of criteria.
package sorting

import (
	"sort"
	"strings"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// Sort returns a stably sorted copy of records. The first criterion that
// tells two records apart decides their order.
func Sort(records []model.SortableRecord, order model.SortOrder) []model.SortableRecord {
	out := make([]model.SortableRecord, len(records))
	copy(out, records)
	if len(order) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return compareChain(out[i], out[j], order) < 0
	})
	return out
}

func compareChain(a, b model.SortableRecord, order model.SortOrder) int {
	for _, c := range order {
		cmp := compareField(a, b, c.Field)
		if c.Direction == model.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareField(a, b model.SortableRecord, field model.SortField) int {
	switch field {
	case model.SortByDepth:
		return compareInt(a.Depth, b.Depth)
	case model.SortByRhymeType:
		return compareInt(a.RhymeType.Priority(), b.RhymeType.Priority())
	case model.SortByFrequency:
		return compareInt(a.Frequency, b.Frequency)
	case model.SortByAlphabetical:
		return strings.Compare(a.Word, b.Word)
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
