package driven

import (
	"context"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

// CollectionStore persists chunks in named collections and answers
// nearest-neighbour queries against them.
type CollectionStore interface {
	// GetOrCreateCollection returns the named collection, creating it if absent.
	GetOrCreateCollection(ctx context.Context, name string) (*domain.Collection, error)

	// Add inserts chunks into the collection.
	// A duplicate id returns domain.ErrAlreadyExists and a vector whose
	// length differs from the collection's returns domain.ErrDimensionMismatch.
	// Nothing from a failing batch is stored.
	Add(ctx context.Context, collection string, chunks []domain.Chunk) error

	// Query returns up to topK chunks ordered by ascending distance.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]domain.QueryResult, error)

	// GetAll returns every chunk in insertion order.
	GetAll(ctx context.Context, collection string) (*domain.CollectionDump, error)

	// ListCollections returns all collections sorted by name.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// Close releases resources.
	Close() error
}
