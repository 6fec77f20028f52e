package driven

import "github.com/secondbrain-labs/brain/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding builds the configured embedding provider and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM builds the configured LLM provider and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
