package model

// SimpleResult is a line ending in the searched word, with surrounding lines.
type SimpleResult struct {
	Word        string   `json:"word"`
	LinesBefore []string `json:"lines_before"`
	MatchLine   string   `json:"match_line"`
	LinesAfter  []string `json:"lines_after"`
	LineNumber  int      `json:"line_number"`
	Song        Song     `json:"song"`
}

// FigurativeResult is a line containing a figurative keyword such as "like".
type FigurativeResult struct {
	SongID     string   `json:"song_id"`
	SongTitle  string   `json:"song_title"`
	Artist     string   `json:"artist"`
	Line       string   `json:"line"`
	LineNumber int      `json:"line_number"`
	Context    []string `json:"context"`
	Keyword    string   `json:"keyword"`
}

// LineContext is a matched line with its non-blank neighbours.
type LineContext struct {
	LinesBefore []string `json:"lines_before"`
	MatchLine   string   `json:"match_line"`
	LinesAfter  []string `json:"lines_after"`
	LineNumber  int      `json:"line_number"`
}
