package services

import (
	"context"
	"fmt"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
	"github.com/secondbrain-labs/brain/internal/core/ports/driving"
)

// Ensure InspectService implements the interface.
var _ driving.InspectService = (*InspectService)(nil)

// InspectService exposes stored chunks for debugging.
type InspectService struct {
	store      driven.CollectionStore
	collection string
}

// NewInspectService creates a new inspect service for collection.
func NewInspectService(store driven.CollectionStore, collection string) *InspectService {
	return &InspectService{store: store, collection: collection}
}

// Dump returns every chunk in the collection in insertion order.
func (s *InspectService) Dump(ctx context.Context) (*domain.CollectionDump, error) {
	dump, err := s.store.GetAll(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("dump collection %s: %w", s.collection, err)
	}
	return dump, nil
}

// Collections lists all collections.
func (s *InspectService) Collections(ctx context.Context) ([]domain.Collection, error) {
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}
