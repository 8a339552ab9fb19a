package model

type SortField string

const (
	SortByDepth        SortField = "depth"
	SortByRhymeType    SortField = "rhyme_type"
	SortByFrequency    SortField = "frequency"
	SortByAlphabetical SortField = "alphabetical"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == Asc {
		return Desc
	}
	return Asc
}

type SortCriterion struct {
	ID        string        `json:"id"`
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// SortOrder lists criteria by priority, first wins.
type SortOrder []SortCriterion
