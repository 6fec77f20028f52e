package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockChunker splits on "|" and records the size it was asked for.
type mockChunker struct {
	lastMaxSize int
}

func (m *mockChunker) Chunk(text string, maxSize int) []string {
	m.lastMaxSize = maxSize
	var out []string
	for _, p := range strings.Split(text, "|") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mockEmbeddingService returns a deterministic vector derived from the text.
// Texts containing failOn return err.
type mockEmbeddingService struct {
	mu     sync.Mutex
	failOn string
	err    error
	calls  []string
	vector []float32 // fixed vector if set
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.failOn != "" && strings.Contains(text, m.failOn) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, errors.New("embedding backend exploded")
	}
	if m.vector != nil {
		return m.vector, nil
	}
	return textVector(text), nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// textVector maps text onto a 3-dimensional vector: length, vowel count, 1.
func textVector(text string) []float32 {
	var vowels float32
	for _, r := range strings.ToLower(text) {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		}
	}
	return []float32{float32(len(text)), vowels, 1}
}

// mockLLMService records the messages it receives.
type mockLLMService struct {
	reply    string
	err      error
	calls    int
	messages []driven.ChatMessage
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswer: "Context:\n%s\n\nQuestion: %s",
		driven.PromptSystem: "system prompt",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// failingStore wraps a CollectionStore and fails Add after n successful calls.
type failingStore struct {
	driven.CollectionStore
	allow int
	err   error
}

func (f *failingStore) Add(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if f.allow <= 0 {
		return f.err
	}
	f.allow--
	return f.CollectionStore.Add(ctx, collection, chunks)
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embedErr   error
	llmErr     error
	embedCalls []domain.EmbeddingSettings
	llmCalls   []domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedCalls = append(m.embedCalls, *cfg)
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llmCalls = append(m.llmCalls, *cfg)
	return m.llmErr
}
