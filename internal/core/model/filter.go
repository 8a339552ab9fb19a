package model

// EdgeFilter narrows the rows an edge store returns. Empty fields do not constrain.
type EdgeFilter struct {
	RhymeTypes []RhymeType `json:"rhyme_types,omitempty"`
	Genres     []string    `json:"genres,omitempty"`
	Years      []int       `json:"years,omitempty"`
	MinRank    *int        `json:"min_rank,omitempty"`
	MaxRank    *int        `json:"max_rank,omitempty"`
	Artists    []string    `json:"artists,omitempty"`
}

// FilterSet is the live client-side filter over derived results.
// Values within a field are OR'd, fields are AND'd, absent fields pass.
type FilterSet struct {
	RhymeTypes   []RhymeType `json:"rhyme_types,omitempty"`
	Genres       []string    `json:"genres,omitempty"`
	Years        []int       `json:"years,omitempty"`
	MinRank      *int        `json:"min_rank,omitempty"`
	MaxRank      *int        `json:"max_rank,omitempty"`
	Depths       []int       `json:"depths,omitempty"`
	Artists      []string    `json:"artists,omitempty"`
	MinFrequency *int        `json:"min_frequency,omitempty"`
}

// Active counts the selected values, used for filter badges. Each bound
// that is set counts once.
func (f FilterSet) Active() int {
	n := len(f.RhymeTypes) + len(f.Genres) + len(f.Years) + len(f.Depths) + len(f.Artists)
	for _, bound := range []*int{f.MinRank, f.MaxRank, f.MinFrequency} {
		if bound != nil {
			n++
		}
	}
	return n
}

// SongFilter narrows a lyrics scan.
type SongFilter struct {
	Genres  []string `json:"genres,omitempty"`
	Years   []int    `json:"years,omitempty"`
	MinRank *int     `json:"min_rank,omitempty"`
	MaxRank *int     `json:"max_rank,omitempty"`
	Artists []string `json:"artists,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// Facets are the distinct values available to filter on.
type Facets struct {
	Genres  []string `json:"genres"`
	Years   []int    `json:"years"`
	Artists []string `json:"artists"`
}
