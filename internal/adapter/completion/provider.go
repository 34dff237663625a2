package completion

import (
	"context"
	"fmt"
	"net/http"

	"history-quiz/internal/config"

	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewCaller builds the langchaingo model for the configured provider.
// It returns (nil, nil) when the provider's credential is absent so the
// client can report CONFIGURATION_MISSING per request.
func NewCaller(ctx context.Context, cfg *config.Config) (Caller, error) {
	if !cfg.HasLLMCredential() {
		return nil, nil
	}

	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}

	switch cfg.LLM.Provider {
	case "openai", "fireworks", "":
		opts := []openai.Option{
			openai.WithToken(cfg.LLM.APIKey),
			openai.WithModel(cfg.LLM.Model),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai-compatible client: %w", err)
		}
		return llm, nil

	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.LLM.ServerURL),
			ollama.WithModel(cfg.LLM.Model),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return llm, nil

	case "googleai", "gemini":
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.LLM.APIKey),
			googleai.WithDefaultModel(cfg.LLM.Model),
			googleai.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create googleai client: %w", err)
		}
		return llm, nil

	case "anthropic":
		llm, err := anthropic.New(
			anthropic.WithToken(cfg.LLM.APIKey),
			anthropic.WithModel(cfg.LLM.Model),
			anthropic.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		return llm, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
}

// OptionsFromConfig maps the llm config section onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}
}
