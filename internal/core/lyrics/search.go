package lyrics

import (
	"regexp"
	"strings"

	"github.com/agenthands/rhymenet/internal/core/model"
)

var (
	lastWordPunct = strings.NewReplacer(".", "", ",", "", "!", "", "?", "", ";", "", ":", "", `"`, "", "'", "", "(", "", ")", "", "[", "", "]", "")
	linePunct     = regexp.MustCompile(`[.,!?;:()"']`)
	spaces        = regexp.MustCompile(`\s+`)
)

// SimileKeywords and MetaphorKeywords are the stock figurative markers.
var (
	SimileKeywords   = []string{"like", "as", "than"}
	MetaphorKeywords = []string{"is a", "is the", "was a", "are the", "am a"}
)

// LastWord returns the lowercased final word of a line with punctuation removed.
func LastWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(lastWordPunct.Replace(fields[len(fields)-1]))
}

// Simple finds lines ending in word. Unless allMatches is set, each song
// (by title and artist) contributes only its first matching line.
func Simple(songs []model.SongLyrics, word string, allMatches bool, size int) []model.SimpleResult {
	word = model.Normalize(word)
	results := []model.SimpleResult{}
	if word == "" {
		return results
	}

	seen := make(map[string]bool)
	for _, song := range songs {
		key := strings.ToLower(song.Title) + "|" + strings.ToLower(song.Artist)
		if seen[key] && !allMatches {
			continue
		}

		lines := SplitLines(song.Lyrics)
		matched := false
		for i, line := range lines {
			if strings.TrimSpace(line) == "" || LastWord(line) != word {
				continue
			}

			ctx := Context(lines, i, size)
			results = append(results, model.SimpleResult{
				Word:        word,
				LinesBefore: ctx.LinesBefore,
				MatchLine:   ctx.MatchLine,
				LinesAfter:  ctx.LinesAfter,
				LineNumber:  ctx.LineNumber,
				Song:        song.Song,
			})
			matched = true
			if !allMatches {
				break
			}
		}
		if matched {
			seen[key] = true
		}
	}
	return results
}

// FigurativeOptions narrows figurative scans by case-insensitive substring
// on genre and artist.
type FigurativeOptions struct {
	Genres  []string
	Artists []string
	Context int
}

type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
	phrase  string
}

func newMatcher(keyword string) keywordMatcher {
	lower := strings.ToLower(keyword)
	if strings.Contains(lower, " ") {
		return keywordMatcher{keyword: keyword, phrase: lower}
	}
	return keywordMatcher{keyword: keyword, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`)}
}

func (m keywordMatcher) match(lineLower string) bool {
	if m.re != nil {
		return m.re.MatchString(lineLower)
	}
	return strings.Contains(lineLower, m.phrase)
}

// Figurative finds lines containing any keyword. Single words must match on
// a word boundary, phrases anywhere. A line is reported once, for the first
// keyword it contains, and repeated lines across songs are dropped.
func Figurative(songs []model.SongLyrics, keywords []string, opts FigurativeOptions) []model.FigurativeResult {
	results := []model.FigurativeResult{}

	matchers := make([]keywordMatcher, 0, len(keywords))
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			matchers = append(matchers, newMatcher(strings.TrimSpace(k)))
		}
	}
	if len(matchers) == 0 {
		return results
	}

	size := opts.Context
	if size <= 0 {
		size = DefaultContext
	}

	seen := make(map[string]bool)
	for _, song := range songs {
		if song.Lyrics == "" {
			continue
		}
		if len(opts.Genres) > 0 && (song.Genre == nil || !containsFold(opts.Genres, *song.Genre)) {
			continue
		}
		if len(opts.Artists) > 0 && !containsFold(opts.Artists, song.Artist) {
			continue
		}

		lines := SplitLines(song.Lyrics)
		for i, line := range lines {
			lower := strings.ToLower(line)
			for _, m := range matchers {
				if !m.match(lower) {
					continue
				}

				key := NormalizeLine(line)
				if !seen[key] {
					seen[key] = true
					pre, post := Window(lines, i, size, size)
					context := append(append(pre, strings.TrimSpace(line)), post...)
					results = append(results, model.FigurativeResult{
						SongID:     song.ID,
						SongTitle:  song.Title,
						Artist:     song.Artist,
						Line:       strings.TrimSpace(line),
						LineNumber: i + 1,
						Context:    context,
						Keyword:    m.keyword,
					})
				}
				break
			}
		}
	}
	return results
}

// NormalizeLine lowercases, strips common punctuation and collapses spaces.
func NormalizeLine(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	s = linePunct.ReplaceAllString(s, "")
	return spaces.ReplaceAllString(s, " ")
}

// containsFold reports whether v contains any needle, ignoring case.
func containsFold(needles []string, v string) bool {
	v = strings.ToLower(v)
	for _, n := range needles {
		if strings.Contains(v, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
