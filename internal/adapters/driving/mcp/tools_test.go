package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

var testResults = []domain.QueryResult{
	{
		ID:       "chunk-1",
		Text:     "The launch moved to March.",
		Metadata: map[string]any{domain.MetaSource: "notes.txt"},
		Distance: 0.12,
	},
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockQuery := &mockQueryService{results: testResults}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		input := SearchInput{Query: "launch", TopK: 3}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 3, mockQuery.lastTopK)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "chunk-1", output.Results[0].ChunkID)
		assert.Equal(t, "notes.txt", output.Results[0].Source)
		assert.Equal(t, 0.12, output.Results[0].Distance)
		assert.Equal(t, "The launch moved to March.", output.Results[0].Text)
	})

	t.Run("zero top_k is passed through for the service default", func(t *testing.T) {
		mockQuery := &mockQueryService{}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, mockQuery.lastTopK)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockQuery := &mockQueryService{err: domain.ErrEmptyQuery}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{})

		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		mockQuery := &mockQueryService{
			answer: &domain.Answer{
				Question: "when is the launch?",
				Text:     "In March.",
				Sources:  testResults,
			},
		}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "when is the launch?", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, mockQuery.lastTopK)
		assert.Equal(t, "In March.", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "notes.txt", output.Sources[0].Source)
	})

	t.Run("returns error on LLM failure", func(t *testing.T) {
		mockQuery := &mockQueryService{
			err: errors.Join(domain.ErrLLMUnavailable, errors.New("connection refused")),
		}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
