package driving

import (
	"context"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

// InspectService exposes the raw index for debugging.
type InspectService interface {
	// Dump returns every chunk in the active collection.
	Dump(ctx context.Context) (*domain.CollectionDump, error)

	// Collections lists all collections in the store.
	Collections(ctx context.Context) ([]domain.Collection, error)
}
