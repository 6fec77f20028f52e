// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	ollamaembed "github.com/secondbrain-labs/brain/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/secondbrain-labs/brain/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/secondbrain-labs/brain/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/secondbrain-labs/brain/internal/adapters/driven/llm/ollama"
	openaillm "github.com/secondbrain-labs/brain/internal/adapters/driven/llm/openai"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding service selected by settings.
// The service is not contacted; call Ping to check connectivity.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrEmbeddingUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		svc, err := createOpenAIEmbedding(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrEmbeddingUnavailable)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}
}

// CreateLLMService creates the LLM service selected by settings.
// The service is not contacted; call Ping to check connectivity.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no LLM settings", domain.ErrLLMUnavailable)
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrLLMUnavailable, settings.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		MaxRetries: retries(settings.MaxRetries),
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		MaxRetries: retries(settings.MaxRetries),
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		MaxRetries: retries(settings.MaxRetries),
	})
}

// retries maps a configured max_retries of 0 ("no retries") onto the
// transport's convention, where 0 means "use the default".
func retries(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}
