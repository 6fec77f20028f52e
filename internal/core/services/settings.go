package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
	"github.com/secondbrain-labs/brain/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDBPath        = "store.db_path"
	KeyCollection    = "store.collection"
	KeyChunkSize     = "chunking.chunk_size"
	KeyTopK          = "query.top_k"
	KeyEmbedProvider = "embedding.provider"
	KeyEmbedModel    = "embedding.model"
	KeyEmbedBaseURL  = "embedding.base_url"
	KeyEmbedAPIKey   = "embedding.api_key"
	KeyLLMProvider   = "llm.provider"
	KeyLLMModel      = "llm.model"
	KeyLLMBaseURL    = "llm.base_url"
	KeyLLMAPIKey     = "llm.api_key"
	KeyLLMTimeout    = "llm.timeout_seconds"
	KeyLLMMaxRetries = "llm.max_retries"
)

// settingKind is how a key's string value is parsed by Set.
type settingKind int

const (
	kindString settingKind = iota
	kindNonEmpty
	kindPositiveInt
	kindNonNegativeInt
	kindEmbedProvider
	kindLLMProvider
)

var settingKinds = map[string]settingKind{
	KeyDBPath:        kindNonEmpty,
	KeyCollection:    kindNonEmpty,
	KeyChunkSize:     kindPositiveInt,
	KeyTopK:          kindPositiveInt,
	KeyEmbedProvider: kindEmbedProvider,
	KeyEmbedModel:    kindString,
	KeyEmbedBaseURL:  kindString,
	KeyEmbedAPIKey:   kindString,
	KeyLLMProvider:   kindLLMProvider,
	KeyLLMModel:      kindString,
	KeyLLMBaseURL:    kindString,
	KeyLLMAPIKey:     kindString,
	KeyLLMTimeout:    kindPositiveInt,
	KeyLLMMaxRetries: kindNonNegativeInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults. Models and base URLs default per provider.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider)
	if !embedProvider.SupportsEmbeddings() {
		embedProvider = defaults.Embedding.Provider
	}
	llmProvider := s.getProvider(KeyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			DBPath:     s.getString(KeyDBPath, defaults.Store.DBPath),
			Collection: s.getString(KeyCollection, defaults.Store.Collection),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(KeyChunkSize, defaults.Chunking.ChunkSize),
		},
		Query: domain.QuerySettings{
			TopK: s.getInt(KeyTopK, defaults.Query.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.getString(KeyEmbedBaseURL, defaultBaseURL(embedProvider)),
			APIKey:   s.configStore.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:   llmProvider,
			Model:      s.getString(KeyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:    s.getString(KeyLLMBaseURL, defaultBaseURL(llmProvider)),
			APIKey:     s.configStore.GetString(KeyLLMAPIKey),
			Timeout:    time.Duration(s.getInt(KeyLLMTimeout, int(defaults.LLM.Timeout/time.Second))) * time.Second,
			MaxRetries: defaults.LLM.MaxRetries,
		},
	}
	if _, ok := s.configStore.Get(KeyLLMMaxRetries); ok {
		if n := s.configStore.GetInt(KeyLLMMaxRetries); n >= 0 {
			settings.LLM.MaxRetries = n
		}
	}

	return settings, nil
}

// Save persists application settings. Empty API keys are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	type setting struct {
		key   string
		value any
	}
	values := []setting{
		{KeyDBPath, settings.Store.DBPath},
		{KeyCollection, settings.Store.Collection},
		{KeyChunkSize, settings.Chunking.ChunkSize},
		{KeyTopK, settings.Query.TopK},
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMTimeout, int(settings.LLM.Timeout / time.Second)},
		{KeyLLMMaxRetries, settings.LLM.MaxRetries},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, setting{KeyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, setting{KeyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set validates and persists one setting given as a string.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (valid: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value

	case kindNonEmpty:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, key)
		}
		parsed = value

	case kindPositiveInt, kindNonNegativeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if n < 0 || (n == 0 && kind == kindPositiveInt) {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
		parsed = n

	case kindEmbedProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidInput, value)
		}
		if !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, p)
		}
		parsed = p.String()

	case kindLLMProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: invalid LLM provider %q", domain.ErrInvalidInput, value)
		}
		parsed = p.String()
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable config key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// defaultBaseURL returns the endpoint used when none is configured.
// Cloud providers leave it empty so their adapters use the public API.
func defaultBaseURL(p domain.AIProvider) string {
	if p.IsLocal() {
		return domain.DefaultOllamaHost
	}
	return ""
}
