package model

// RhymeType tags the phonetic similarity of a rhyme pair.
type RhymeType string

const (
	Perfect    RhymeType = "perfect"
	Multi      RhymeType = "multi"
	Compound   RhymeType = "compound"
	Assonance  RhymeType = "assonance"
	Consonance RhymeType = "consonance"
	Slant      RhymeType = "slant"
	Embedded   RhymeType = "embedded"
)

// UnknownPriority is the priority of any rhyme type not in the table.
const UnknownPriority = 99

var rhymeTypePriority = map[RhymeType]int{
	Perfect:    1,
	Multi:      2,
	Compound:   3,
	Assonance:  4,
	Consonance: 5,
	Slant:      6,
	Embedded:   7,
}

// Priority returns the fixed rank of the type, lower is stronger.
func (t RhymeType) Priority() int {
	if p, ok := rhymeTypePriority[t]; ok {
		return p
	}
	return UnknownPriority
}

// Known reports whether t is one of the tabled rhyme types.
func (t RhymeType) Known() bool {
	_, ok := rhymeTypePriority[t]
	return ok
}

// RhymeEdge is one stored rhyme pair occurrence in a song.
// Word and RhymesWith are unordered in meaning.
type RhymeEdge struct {
	Word           string    `json:"word"`
	RhymesWith     string    `json:"rhymes_with"`
	RhymeType      RhymeType `json:"rhyme_type"`
	SongID         string    `json:"song_id"`
	WordLine       int       `json:"word_line"`
	RhymesWithLine int       `json:"rhymes_with_line"`
	Song           Song      `json:"song"`
}

// Connection is a rhyme edge oriented away from the frontier word that reached it.
type Connection struct {
	FromWord  string    `json:"from_word"`
	ToWord    string    `json:"to_word"`
	RhymeType RhymeType `json:"rhyme_type"`
	Song      Song      `json:"song"`
	FromLine  int       `json:"from_line"`
	ToLine    int       `json:"to_line"`
	Path      []string  `json:"path"`
}
