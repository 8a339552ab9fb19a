package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/config"
)

// ErrNoProvider means the config leaves generation features switched off.
var ErrNoProvider = errors.New("llm: no provider configured")

var defaultModels = map[string]string{
	"openai": "gpt-4o-mini",
	"gemini": "gemini-1.5-flash",
	"claude": "claude-sonnet-4-5",
	"ollama": "llama3.1",
}

func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	switch provider {
	case "":
		return nil, ErrNoProvider

	case "openai":
		return NewOpenAIClient(cfg.APIKey, model, cfg.BaseURL), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, model, cfg.BaseURL), nil

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		logger.Info("Initializing Ollama via OpenAI-compatible API", zap.String("base_url", baseURL))

		// the key is ignored by Ollama but the client requires one
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
