package compose

import (
	"regexp"
	"strings"
)

var (
	nonLetters  = regexp.MustCompile(`[^a-z\s'-]`)
	vowelGroups = regexp.MustCompile(`[aeiouy]+`)
)

// CountSyllables estimates syllables as vowel groups, minus a silent final e,
// but never less than one per word.
func CountSyllables(text string) int {
	text = nonLetters.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
	if strings.TrimSpace(text) == "" {
		return 0
	}

	count := len(vowelGroups.FindAllString(text, -1))
	words := strings.Fields(text)
	for _, w := range words {
		if len(w) > 2 && strings.HasSuffix(w, "e") && !strings.ContainsRune("aeiouy", rune(w[len(w)-2])) {
			count--
		}
	}

	if count < len(words) {
		return len(words)
	}
	return count
}
