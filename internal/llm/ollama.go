package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/tbourn/go-tutor-backend/internal/config"
)

// NewOllamaChatModel builds an eino ChatModel against Ollama's
// OpenAI-compatible endpoint.
func NewOllamaChatModel(ctx context.Context, cfg config.LLMConfig) (*openai.ChatModel, error) {
	mc := &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.OpenAIBaseURL(),
		Model:       cfg.Model,
		Temperature: ptrFloat32(float32(cfg.Temperature)),
		Timeout:     cfg.Timeout,
	}
	if cfg.MaxTokens > 0 {
		mc.MaxTokens = &cfg.MaxTokens
	}
	m, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("create chat model %s: %w", cfg.Model, err)
	}
	return m, nil
}

// NewGenerator picks the teacher for cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "mock":
		return NewCannedTeacher(), nil
	case "ollama", "":
		m, err := NewOllamaChatModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewTeacher(m, float32(cfg.Temperature)), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func ptrFloat32(f float32) *float32 { return &f }
