package driving

import (
	"context"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

// IngestService indexes a directory of documents into a collection.
type IngestService interface {
	// Ingest extracts, chunks, embeds and stores every supported file
	// directly inside dir. Per-file failures are recorded in the report
	// rather than returned. Returns domain.ErrDirectoryNotFound if dir
	// does not exist.
	Ingest(ctx context.Context, dir string) (*domain.IngestReport, error)
}
