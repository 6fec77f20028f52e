package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/memory"
	"github.com/secondbrain-labs/brain/internal/app"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/services"
)

// --- Mock implementations ---

type mockIngestService struct {
	report  *domain.IngestReport
	err     error
	lastDir string
}

func (m *mockIngestService) Ingest(_ context.Context, dir string) (*domain.IngestReport, error) {
	m.lastDir = dir
	if m.report == nil {
		return &domain.IngestReport{Directory: dir, Collection: domain.DefaultCollection}, m.err
	}
	return m.report, m.err
}

type mockQueryService struct {
	answer       *domain.Answer
	results      []domain.QueryResult
	err          error
	lastQuestion string
	lastTopK     int
}

func (m *mockQueryService) Ask(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuery
	}
	return m.answer, nil
}

func (m *mockQueryService) Search(_ context.Context, question string, topK int) ([]domain.QueryResult, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	return m.results, m.err
}

type mockInspectService struct {
	dump        *domain.CollectionDump
	collections []domain.Collection
	err         error
}

func (m *mockInspectService) Dump(_ context.Context) (*domain.CollectionDump, error) {
	return m.dump, m.err
}

func (m *mockInspectService) Collections(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

// mockAIValidator fails when err is set.
type mockAIValidator struct {
	err error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return m.err }
func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error { return m.err }

var testSources = []domain.QueryResult{
	{
		ID:       "chunk-1",
		Text:     "The launch moved to March.",
		Metadata: map[string]any{domain.MetaSource: "notes.txt", domain.MetaChunkIndex: 0},
		Distance: 0.1234,
	},
	{
		ID:       "chunk-2",
		Text:     "Budget was approved.",
		Metadata: map[string]any{domain.MetaSource: "minutes.docx", domain.MetaChunkIndex: 3},
		Distance: 0.4,
	},
}

// Shared mocks, reachable from tests after setupTestServices.
var (
	testIngest    *mockIngestService
	testQuery     *mockQueryService
	testInspect   *mockInspectService
	testValidator *mockAIValidator
)

// setupTestServices injects mocks for every service and returns a
// function restoring the previous state, including flag values.
func setupTestServices() func() {
	oldIngest, oldQuery, oldInspect, oldSettings := ingestService, queryService, inspectService, settingsService
	oldNewApp, oldCheckPDF, oldInput := newApp, checkPDF, configInput

	testIngest = &mockIngestService{}
	testQuery = &mockQueryService{
		answer:  &domain.Answer{Question: "q", Text: "In March.", Sources: testSources},
		results: testSources,
	}
	testInspect = &mockInspectService{
		dump: &domain.CollectionDump{
			IDs:        []string{"chunk-1"},
			Texts:      []string{"The launch moved to March."},
			Metadatas:  []map[string]any{{domain.MetaSource: "notes.txt", domain.MetaChunkIndex: 0}},
			Embeddings: [][]float32{{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}},
		},
		collections: []domain.Collection{{Name: domain.DefaultCollection, Dimension: 7, ChunkCount: 1}},
	}
	testValidator = &mockAIValidator{}

	SetServices(testIngest, testQuery, testInspect,
		services.NewSettingsService(memory.NewConfigStore(), testValidator))
	newApp = func(app.Options) (*app.App, error) {
		return nil, errors.New("unexpected app construction in test")
	}
	checkPDF = func() error { return nil }

	return func() {
		SetServices(oldIngest, oldQuery, oldInspect, oldSettings)
		newApp, checkPDF, configInput = oldNewApp, oldCheckPDF, oldInput
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
