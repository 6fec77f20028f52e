// Package app assembles the brain components from settings.
//
// An App is built once per process. The CLI and MCP adapters take their
// services from it; tests build their own services instead.
package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/secondbrain-labs/brain/internal/adapters/driven/ai"
	"github.com/secondbrain-labs/brain/internal/adapters/driven/config/file"
	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/memory"
	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/sqlite"
	"github.com/secondbrain-labs/brain/internal/chunker"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
	"github.com/secondbrain-labs/brain/internal/core/services"
	"github.com/secondbrain-labs/brain/internal/extractors"
	"github.com/secondbrain-labs/brain/internal/logger"
)

// MemoryDBPath selects a non-persistent index.
const MemoryDBPath = ":memory:"

// Options are per-invocation overrides. Zero values keep the configured
// setting.
type Options struct {
	// ConfigDir holds config.toml and prompts/. Empty means ~/.brain.
	ConfigDir string

	DBPath     string
	Collection string
	ChunkSize  int
	TopK       int

	// OllamaHost replaces the base URL of every Ollama-backed provider.
	OllamaHost string
}

// App holds the assembled components.
type App struct {
	Settings *domain.AppSettings

	SettingsService *services.SettingsService
	Ingest          *services.IngestService
	Query           *services.QueryService
	Inspect         *services.InspectService

	Store    driven.CollectionStore
	Embedder driven.EmbeddingService
	LLM      driven.LLMService
	Prompts  driven.PromptStore
}

// NewSettingsService opens the config file under configDir.
func NewSettingsService(configDir string) (*services.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// New resolves settings, applies opts and builds every component.
// Providers are not contacted; use SettingsService to validate them.
func New(opts Options) (*App, error) {
	settingsService, err := NewSettingsService(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	opts.Apply(settings)

	a := &App{
		Settings:        settings,
		SettingsService: settingsService,
	}

	if err := a.build(opts.ConfigDir); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Apply overlays non-zero options onto settings.
func (o Options) Apply(settings *domain.AppSettings) {
	if o.DBPath != "" {
		settings.Store.DBPath = o.DBPath
	}
	if o.Collection != "" {
		settings.Store.Collection = o.Collection
	}
	if o.ChunkSize > 0 {
		settings.Chunking.ChunkSize = o.ChunkSize
	}
	if o.TopK > 0 {
		settings.Query.TopK = o.TopK
	}
	if o.OllamaHost != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama {
			settings.Embedding.BaseURL = o.OllamaHost
		}
		if settings.LLM.Provider == domain.AIProviderOllama {
			settings.LLM.BaseURL = o.OllamaHost
		}
	}
}

func (a *App) build(configDir string) error {
	s := a.Settings
	logger.Debug("Store: %s (collection %q)", s.Store.DBPath, s.Store.Collection)
	logger.Debug("Embedding: %s/%s, LLM: %s/%s",
		s.Embedding.Provider, s.Embedding.Model, s.LLM.Provider, s.LLM.Model)

	store, err := openStore(s.Store.DBPath)
	if err != nil {
		return err
	}
	a.Store = store

	embedder, err := ai.CreateEmbeddingService(&s.Embedding)
	if err != nil {
		return err
	}
	a.Embedder = embedder

	llm, err := ai.CreateLLMService(&s.LLM)
	if err != nil {
		return err
	}
	a.LLM = llm

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}
	a.Prompts = prompts

	ch, err := chunker.New(chunker.WithChunkSize(s.Chunking.ChunkSize))
	if err != nil {
		return fmt.Errorf("load sentence tokenizer: %w", err)
	}

	a.Ingest = services.NewIngestService(
		extractors.DefaultRegistry(), ch, embedder, store, s.Store.Collection, s.Chunking.ChunkSize)
	a.Query = services.NewQueryService(embedder, llm, store, prompts, s.Store.Collection, s.Query.TopK)
	a.Inspect = services.NewInspectService(store, s.Store.Collection)
	return nil
}

func openStore(dbPath string) (driven.CollectionStore, error) {
	if dbPath == MemoryDBPath {
		return memory.NewCollectionStore(), nil
	}
	return sqlite.NewStore(dbPath)
}

// Close releases the store and AI clients.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Embedder != nil {
		errs = append(errs, a.Embedder.Close())
	}
	if a.LLM != nil {
		errs = append(errs, a.LLM.Close())
	}
	return errors.Join(errs...)
}
