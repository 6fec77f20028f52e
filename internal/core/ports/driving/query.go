package driving

import (
	"context"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

// QueryService answers questions against the indexed collection.
type QueryService interface {
	// Ask retrieves topK chunks of context for question and asks the
	// language model. topK <= 0 uses the configured default.
	// Returns domain.ErrEmptyQuery for a blank question.
	Ask(ctx context.Context, question string, topK int) (*domain.Answer, error)

	// Search retrieves the topK chunks closest to question without
	// calling the language model. topK <= 0 uses the configured default.
	Search(ctx context.Context, question string, topK int) ([]domain.QueryResult, error)
}
