package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
	"github.com/secondbrain-labs/brain/internal/core/ports/driving"
	"github.com/secondbrain-labs/brain/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns a directory of documents into indexed chunks.
type IngestService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	store      driven.CollectionStore
	collection string
	chunkSize  int
	newID      func() string
}

// NewIngestService creates a new ingestion service writing to collection.
// chunkSize <= 0 uses domain.DefaultChunkSize.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.CollectionStore,
	collection string,
	chunkSize int,
) *IngestService {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	return &IngestService{
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		collection: collection,
		chunkSize:  chunkSize,
		newID:      uuid.NewString,
	}
}

// Ingest indexes every supported regular file directly inside dir, in
// lexical order. A failing file is recorded in the report and the run
// continues with the next one. Chunks already stored for a failing file
// are kept.
func (s *IngestService) Ingest(ctx context.Context, dir string) (*domain.IngestReport, error) {
	start := time.Now()
	report := &domain.IngestReport{
		Directory:  dir,
		Collection: s.collection,
	}
	defer func() { report.Duration = time.Since(start) }()

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, dir)
		}
		return report, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%w: %s is not a directory", domain.ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("read directory %s: %w", dir, err)
	}

	if _, err := s.store.GetOrCreateCollection(ctx, s.collection); err != nil {
		return report, fmt.Errorf("open collection %s: %w", s.collection, err)
	}

	logger.Section("Ingest")
	logger.Info("Indexing %s into collection %q (chunk size %d)", dir, s.collection, s.chunkSize)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := filepath.Join(dir, entry.Name())
		// Follow symlinks so linked documents are indexed like regular ones.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		report.FilesSeen++

		extractor, ok := s.extractors.Lookup(path)
		if !ok {
			report.FilesSkipped++
			logger.Debug("Skipping %s: unsupported type", entry.Name())
			continue
		}

		added, err := s.ingestFile(ctx, extractor, path)
		report.ChunksAdded += added
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			report.Failures = append(report.Failures, domain.FileFailure{
				File:        entry.Name(),
				Kind:        domain.KindOf(err),
				Err:         err,
				ChunksAdded: added,
			})
			logger.Warn("Failed to index %s: %v", entry.Name(), err)
			continue
		}
		report.FilesIndexed++
	}

	logger.Info("Indexed %d of %d files (%d chunks, %d skipped, %d failed)",
		report.FilesIndexed, report.FilesSeen, report.ChunksAdded, report.FilesSkipped, len(report.Failures))
	return report, nil
}

// ingestFile extracts, chunks, embeds and stores one file, one chunk at a
// time. It returns how many chunks were stored, including on failure.
func (s *IngestService) ingestFile(ctx context.Context, extractor driven.Extractor, path string) (int, error) {
	name := filepath.Base(path)
	done := logger.Timed("ingest " + name)
	defer done()

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) {
			err = fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		return 0, err
	}

	pieces := s.chunker.Chunk(text, s.chunkSize)
	logger.Debug("%s: %d runes, %d chunks", name, len([]rune(text)), len(pieces))

	ext := strings.ToLower(filepath.Ext(name))
	added := 0
	for i, piece := range pieces {
		vec, err := s.embedder.Embed(ctx, piece)
		if err != nil {
			if !errors.Is(err, domain.ErrEmbeddingUnavailable) && ctx.Err() == nil {
				err = fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
			}
			return added, fmt.Errorf("embed chunk %d: %w", i, err)
		}

		chunk := domain.Chunk{
			ID:        s.newID(),
			Text:      piece,
			Embedding: vec,
			Metadata: map[string]any{
				domain.MetaSource:     name,
				domain.MetaChunkIndex: i,
				domain.MetaExtension:  ext,
			},
		}
		if err := s.store.Add(ctx, s.collection, []domain.Chunk{chunk}); err != nil {
			return added, fmt.Errorf("store chunk %d: %w", i, err)
		}
		added++
	}
	return added, nil
}
