package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/core/common"
)

// MinRelevance is the lowest score a line needs to be kept.
const MinRelevance = 5

var ErrMissingInput = errors.New("llm: lines and desired meaning are required")

type CandidateLine struct {
	Line    string `json:"line"`
	Song    string `json:"song"`
	Keyword string `json:"keyword,omitempty"`
}

type RankedLine struct {
	Line      string `json:"line"`
	Relevance int    `json:"relevance"`
	Reasoning string `json:"reasoning"`
}

// MeaningRanker asks an LLM which figurative lines convey a desired meaning.
type MeaningRanker struct {
	LLM    LLMClient
	logger *zap.Logger
}

func NewMeaningRanker(client LLMClient, logger *zap.Logger) *MeaningRanker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeaningRanker{LLM: client, logger: logger}
}

// Rank returns the lines scoring at least MinRelevance, best first. If the
// LLM fails the candidates come back unscored in their original order.
func (r *MeaningRanker) Rank(ctx context.Context, meaning string, lines []CandidateLine) ([]RankedLine, error) {
	meaning = strings.TrimSpace(meaning)
	if meaning == "" || len(lines) == 0 {
		return nil, ErrMissingInput
	}
	if r.LLM == nil {
		return fallback(lines), nil
	}

	resp, err := r.LLM.Generate(ctx, rankPrompt(meaning, lines))
	if err != nil {
		r.logger.Warn("meaning ranking failed, keeping original order", zap.Error(err))
		return fallback(lines), nil
	}

	ranked, err := common.ParseJSONArray[[]RankedLine](resp)
	if err != nil {
		r.logger.Warn("unparseable ranking response, keeping original order", zap.Error(err))
		return fallback(lines), nil
	}

	kept := make([]RankedLine, 0, len(ranked))
	for _, l := range ranked {
		if l.Relevance >= MinRelevance && strings.TrimSpace(l.Line) != "" {
			kept = append(kept, l)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Relevance > kept[j].Relevance
	})
	return kept, nil
}

func fallback(lines []CandidateLine) []RankedLine {
	out := make([]RankedLine, len(lines))
	for i, l := range lines {
		out[i] = RankedLine{Line: l.Line}
	}
	return out
}

func rankPrompt(meaning string, lines []CandidateLine) string {
	var list strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&list, "%d. %q (from %s)\n", i+1, l.Line, l.Song)
	}

	return fmt.Sprintf(`You are an expert in figurative language and poetry analysis.

DESIRED MEANING:
%q

FIGURATIVE EXPRESSIONS TO ANALYZE:
%s
Find ALL expressions that match the desired meaning with relevance %d or higher, considering the
imagery, emotional tone and how well the comparison conveys the meaning.

Return a JSON array ordered by relevance (best first). Each item has:
- "line": the exact line text
- "relevance": a score from 1-10
- "reasoning": one sentence on why it matches

Return ONLY the JSON array, no other text.`, meaning, list.String(), MinRelevance)
}
