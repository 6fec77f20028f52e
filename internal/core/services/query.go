package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
	"github.com/secondbrain-labs/brain/internal/core/ports/driving"
	"github.com/secondbrain-labs/brain/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions from the indexed collection.
type QueryService struct {
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	store      driven.CollectionStore
	prompts    driven.PromptStore
	collection string
	topK       int
}

// NewQueryService creates a new query service reading from collection.
// topK <= 0 uses domain.DefaultTopK.
func NewQueryService(
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	store driven.CollectionStore,
	prompts driven.PromptStore,
	collection string,
	topK int,
) *QueryService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		embedder:   embedder,
		llm:        llm,
		store:      store,
		prompts:    prompts,
		collection: collection,
		topK:       topK,
	}
}

// Search embeds question and returns the topK closest chunks.
func (s *QueryService) Search(ctx context.Context, question string, topK int) ([]domain.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.topK
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Query(ctx, s.collection, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", s.collection, err)
	}
	logger.Debug("Retrieved %d chunks from %q", len(results), s.collection)
	return results, nil
}

// Ask retrieves topK chunks of context for question and returns the
// model's reply verbatim. topK <= 0 uses the service default. An empty
// collection still produces a model call with an empty context.
func (s *QueryService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	results, err := s.Search(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	prompt, err := s.buildPrompt(question, results)
	if err != nil {
		return nil, err
	}

	var messages []driven.ChatMessage
	if system, err := s.prompts.Load(driven.PromptSystem); err == nil && system != "" {
		messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: prompt})

	done := logger.Timed("llm " + s.llm.ModelName())
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{})
	done()
	if err != nil {
		if !errors.Is(err, domain.ErrLLMUnavailable) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question: question,
		Text:     reply,
		Sources:  results,
		Prompt:   prompt,
	}, nil
}

// buildPrompt renders the answer template with the retrieved texts, in
// rank order and joined by newlines, followed by the question.
func (s *QueryService) buildPrompt(question string, results []domain.QueryResult) (string, error) {
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}
	// The template is user text: only the two %s markers are substituted,
	// any other % is literal.
	parts := strings.Split(tmpl, "%s")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: answer prompt must contain exactly two %%s placeholders (context, question)",
			domain.ErrInvalidInput)
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return parts[0] + strings.Join(texts, "\n") + parts[1] + question + parts[2], nil
}
