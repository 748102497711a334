package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
)

// Model implements Generator on top of a langchaingo chat model.
type Model struct {
	llm         llms.Model
	modelName   string
	temperature float64
	maxTokens   int
	log         *slog.Logger
}

// NewModel creates a Generator for the configured provider.
func NewModel(cfg common.LLMConfig, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var model llms.Model
	var err error

	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case "ollama":
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return &Model{
		llm:         model,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         logger,
	}, nil
}

// Generate runs one chat completion with an optional system prompt.
func (m *Model) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	response, err := m.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(m.temperature),
		llms.WithMaxTokens(m.maxTokens),
	)
	if err != nil {
		m.log.Warn("llm.generate.failed", "model", m.modelName, "error", err)
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// IsAvailable probes the model with a minimal completion.
func (m *Model) IsAvailable(ctx context.Context) bool {
	response, err := m.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "test")},
		llms.WithMaxTokens(5),
	)
	if err != nil {
		return false
	}
	return len(response.Choices) > 0 && strings.TrimSpace(response.Choices[0].Content) != ""
}

// ModelName returns the configured model identifier.
func (m *Model) ModelName() string {
	return m.modelName
}
