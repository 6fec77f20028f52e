package domain

import "time"

const unknownDescription = "Unknown"

// Default settings values.
const (
	DefaultDBPath         = "./db"
	DefaultCollection     = "my_documents"
	DefaultChunkSize      = 1000
	DefaultOllamaHost     = "http://localhost:11434"
	DefaultLLMTimeout     = 120 * time.Second
	DefaultLLMMaxRetries  = 3
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultLLMModel       = "llama3.2"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI or any OpenAI-compatible API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if this provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StoreSettings locates the persistent index.
type StoreSettings struct {
	// DBPath is the directory holding the index database.
	DBPath string

	// Collection is the collection that init writes to and ask reads from.
	Collection string
}

// ChunkingSettings controls how extracted text is split.
type ChunkingSettings struct {
	// ChunkSize is the soft upper bound on chunk length, in runes.
	ChunkSize int
}

// QuerySettings controls retrieval.
type QuerySettings struct {
	// TopK is how many chunks are retrieved per question.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Timeout bounds each request to the backend.
	Timeout time.Duration

	// MaxRetries is how many times a failed request is retried.
	MaxRetries int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	Store     StoreSettings
	Chunking  ChunkingSettings
	Query     QuerySettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

// DefaultAppSettings returns settings that work against a local Ollama.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			DBPath:     DefaultDBPath,
			Collection: DefaultCollection,
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
		},
		Query: QuerySettings{
			TopK: DefaultTopK,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
			BaseURL:  DefaultOllamaHost,
		},
		LLM: LLMSettings{
			Provider:   AIProviderOllama,
			Model:      DefaultLLMModel,
			BaseURL:    DefaultOllamaHost,
			Timeout:    DefaultLLMTimeout,
			MaxRetries: DefaultLLMMaxRetries,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: DefaultEmbeddingModel,
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    DefaultLLMModel,
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
