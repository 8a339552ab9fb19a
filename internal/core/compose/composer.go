// Package compose drafts candidate next lines for a song with an LLM and
// ranks them by how close they land to a syllable target.
package compose

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/core/common"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/llm"
)

const (
	maxRhymeOptions    = 20
	promptRhymeOptions = 15
	defaultSyllables   = 10
	requestedLines     = 20
)

var ErrNoLLM = errors.New("compose: no llm client configured")

// RhymeSource expands a word into its rhyme network.
type RhymeSource interface {
	Expand(ctx context.Context, seed string, maxDepth int, filter model.EdgeFilter) (*model.NetworkResult, error)
}

type LineType string

const (
	LineRegular  LineType = "regular"
	LineMetaphor LineType = "metaphor"
	LineSimile   LineType = "simile"
)

type Request struct {
	Concept           string          `json:"concept"`
	ExistingLyrics    string          `json:"existing_lyrics"`
	SyllableCount     int             `json:"syllable_count"`
	RhymeTarget       string          `json:"rhyme_target"`
	RhymePosition     string          `json:"rhyme_position"`
	RhymeType         model.RhymeType `json:"rhyme_type"`
	LineMeaning       string          `json:"line_meaning"`
	SpecificRhymeWord string          `json:"specific_rhyme_word"`
	PartialLine       string          `json:"partial_line"`
	LineType          LineType        `json:"line_type"`
	WordsToAvoid      []string        `json:"words_to_avoid"`
}

type Suggestion struct {
	Line      string `json:"line"`
	Syllables int    `json:"syllables"`
	Diff      int    `json:"diff"`
}

type Result struct {
	Suggestions     []Suggestion `json:"suggestions"`
	TotalGenerated  int          `json:"total_generated"`
	ExactMatches    int          `json:"exact_matches"`
	TargetSyllables int          `json:"target_syllables"`
	RhymeOptions    []string     `json:"rhyme_options"`
}

type Composer struct {
	llm    llm.LLMClient
	rhymes RhymeSource
	logger *zap.Logger
}

func NewComposer(client llm.LLMClient, rhymes RhymeSource, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{llm: client, rhymes: rhymes, logger: logger}
}

// NextLine asks the LLM for candidate lines and sorts them exact syllable
// matches first, then by distance from the target, then alphabetically.
func (c *Composer) NextLine(ctx context.Context, req Request) (*Result, error) {
	if c.llm == nil {
		return nil, ErrNoLLM
	}
	if req.SyllableCount <= 0 {
		req.SyllableCount = defaultSyllables
	}
	if req.RhymePosition == "" {
		req.RhymePosition = "end"
	}

	options := c.rhymeOptions(ctx, req.RhymeTarget, req.RhymeType)

	response, err := c.llm.Generate(ctx, buildPrompt(req, options))
	if err != nil {
		return nil, fmt.Errorf("failed to generate lines: %w", err)
	}

	lines, err := common.ParseJSONArray[[]string](response)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Suggestions:     make([]Suggestion, 0, len(lines)),
		TotalGenerated:  len(lines),
		TargetSyllables: req.SyllableCount,
		RhymeOptions:    options,
	}
	for _, line := range lines {
		n := CountSyllables(line)
		diff := n - req.SyllableCount
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			res.ExactMatches++
		}
		res.Suggestions = append(res.Suggestions, Suggestion{Line: line, Syllables: n, Diff: diff})
	}

	sort.SliceStable(res.Suggestions, func(i, j int) bool {
		a, b := res.Suggestions[i], res.Suggestions[j]
		if a.Diff != b.Diff {
			return a.Diff < b.Diff
		}
		return a.Line < b.Line
	})

	c.logger.Debug("generated next lines",
		zap.Int("total", res.TotalGenerated),
		zap.Int("exact", res.ExactMatches),
		zap.Int("target", res.TargetSyllables))
	return res, nil
}

// rhymeOptions returns the direct rhymes of target, excluding target itself.
// A failed lookup yields no options rather than an error.
func (c *Composer) rhymeOptions(ctx context.Context, target string, rhymeType model.RhymeType) []string {
	options := []string{}
	target = model.Normalize(target)
	if target == "" || c.rhymes == nil {
		return options
	}

	var filter model.EdgeFilter
	if rhymeType != "" && rhymeType != "any" {
		filter.RhymeTypes = []model.RhymeType{rhymeType}
	}

	network, err := c.rhymes.Expand(ctx, target, 1, filter)
	if err != nil || len(network.Layers) == 0 {
		if err != nil {
			c.logger.Warn("rhyme option lookup failed", zap.String("target", target), zap.Error(err))
		}
		return options
	}

	for _, w := range network.Layers[0].DiscoveredWords {
		if w == target {
			continue
		}
		options = append(options, w)
		if len(options) == maxRhymeOptions {
			break
		}
	}
	return options
}

func buildPrompt(req Request, options []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert songwriter with precise syllable counting.\n\n")
	fmt.Fprintf(&b, "Every line MUST have EXACTLY %d syllables.\n", req.SyllableCount)

	switch req.LineType {
	case LineMetaphor:
		b.WriteString("\nLINE TYPE: METAPHOR\n- Each line is a direct comparison WITHOUT 'like' or 'as'.\n")
	case LineSimile:
		b.WriteString("\nLINE TYPE: SIMILE\n- Each line is a comparison USING 'like' or 'as'.\n")
	}

	fmt.Fprintf(&b, "\nSONG CONCEPT:\n%s\n", req.Concept)
	existing := req.ExistingLyrics
	if existing == "" {
		existing = "(Starting fresh)"
	}
	fmt.Fprintf(&b, "\nEXISTING LYRICS:\n%s\n", existing)

	if req.SpecificRhymeWord != "" {
		fmt.Fprintf(&b, "\nMUST use this specific rhyme word: '%s'\n", req.SpecificRhymeWord)
	} else if len(options) > 0 {
		shown := options
		if len(shown) > promptRhymeOptions {
			shown = shown[:promptRhymeOptions]
		}
		fmt.Fprintf(&b, "\nRhyme options for '%s': %s\n", req.RhymeTarget, strings.Join(shown, ", "))
	}

	b.WriteString("\nCONSTRAINTS:\n")
	fmt.Fprintf(&b, "- Syllable count: exactly %d per line\n", req.SyllableCount)
	fmt.Fprintf(&b, "- Rhyme position: %s of line\n", req.RhymePosition)
	if req.RhymeTarget != "" && req.SpecificRhymeWord == "" {
		fmt.Fprintf(&b, "- Must rhyme with '%s' but not use '%s' itself\n", req.RhymeTarget, req.RhymeTarget)
	}
	if req.RhymeType != "" && req.RhymeType != "any" {
		fmt.Fprintf(&b, "- Rhyme type: %s\n", req.RhymeType)
	}
	if req.LineMeaning != "" {
		fmt.Fprintf(&b, "- Line should convey: %s\n", req.LineMeaning)
	}
	if req.SpecificRhymeWord != "" {
		fmt.Fprintf(&b, "- MUST end with the word '%s' (at %s)\n", req.SpecificRhymeWord, req.RhymePosition)
	}
	if req.PartialLine != "" {
		fmt.Fprintf(&b, "- Complete this partial line: '%s...'\n", req.PartialLine)
	}
	if avoid := cleanWords(req.WordsToAvoid); len(avoid) > 0 {
		fmt.Fprintf(&b, "- DO NOT use these words: %s\n", strings.Join(avoid, ", "))
	}

	fmt.Fprintf(&b, "\nGenerate EXACTLY %d lines. Return ONLY a JSON array of line strings.\n", requestedLines)
	b.WriteString(`Example: ["Line one here", "Line two here"]`)
	return b.String()
}

func cleanWords(words []string) []string {
	var out []string
	for _, w := range words {
		if w = model.Normalize(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
