package llm

import (
	"context"
)

// systemPrompt frames every request; callers put the task in the prompt.
const systemPrompt = "You are a songwriting assistant. Answer with JSON only, no commentary."

// LLMClient generates a completion for a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
