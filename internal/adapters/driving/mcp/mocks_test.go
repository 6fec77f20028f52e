package mcp

import (
	"context"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	results  []domain.QueryResult
	answer   *domain.Answer
	err      error
	lastTopK int
}

func (m *mockQueryService) Ask(_ context.Context, _ string, topK int) (*domain.Answer, error) {
	m.lastTopK = topK
	return m.answer, m.err
}

func (m *mockQueryService) Search(_ context.Context, _ string, topK int) ([]domain.QueryResult, error) {
	m.lastTopK = topK
	return m.results, m.err
}

// mockInspectService is a mock implementation of driving.InspectService.
type mockInspectService struct {
	collections []domain.Collection
	dump        *domain.CollectionDump
	err         error
}

func (m *mockInspectService) Dump(_ context.Context) (*domain.CollectionDump, error) {
	return m.dump, m.err
}

func (m *mockInspectService) Collections(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}
