// Package lyrics finds lines in song lyrics and cuts context windows around them.
package lyrics

import (
	"strings"

	"github.com/agenthands/rhymenet/internal/core/model"
)

// DefaultContext is the number of non-blank lines kept on each side of a match.
const DefaultContext = 4

// SplitLines splits raw lyrics on newlines, keeping blank lines so line
// numbers stay aligned with the source text.
func SplitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// Window returns up to before/after non-blank lines around lines[match].
// Blank lines are neither counted nor returned; returned lines are trimmed.
func Window(lines []string, match, before, after int) (pre, post []string) {
	pre, post = []string{}, []string{}
	if match < 0 || match >= len(lines) {
		return pre, post
	}

	for i := match - 1; i >= 0 && len(pre) < before; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			pre = append(pre, l)
		}
	}
	reverse(pre)

	for i := match + 1; i < len(lines) && len(post) < after; i++ {
		if l := strings.TrimSpace(lines[i]); l != "" {
			post = append(post, l)
		}
	}
	return pre, post
}

// Context wraps Window into a LineContext with a 1-based line number.
func Context(lines []string, match, size int) model.LineContext {
	pre, post := Window(lines, match, size, size)
	return model.LineContext{
		LinesBefore: pre,
		MatchLine:   strings.TrimSpace(lines[match]),
		LinesAfter:  post,
		LineNumber:  match + 1,
	}
}

// Highlight returns a context for every non-blank line containing any of
// words, case-insensitively.
func Highlight(raw string, words []string, size int) []model.LineContext {
	needles := make([]string, 0, len(words))
	for _, w := range words {
		if w = model.Normalize(w); w != "" {
			needles = append(needles, w)
		}
	}

	contexts := []model.LineContext{}
	if len(needles) == 0 {
		return contexts
	}

	lines := SplitLines(raw)
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if trimmed == "" {
			continue
		}
		for _, n := range needles {
			if strings.Contains(trimmed, n) {
				contexts = append(contexts, Context(lines, i, size))
				break
			}
		}
	}
	return contexts
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
