package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/similarity"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

type collection struct {
	dimension int
	createdAt time.Time
	chunks    []domain.Chunk
	ids       map[string]struct{}
}

// CollectionStore is an in-memory implementation of driven.CollectionStore.
// It mirrors the SQLite store's semantics and is used for tests and --db-path=:memory:.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]*collection),
	}
}

// GetOrCreateCollection returns the named collection, creating it if absent.
func (s *CollectionStore) GetOrCreateCollection(_ context.Context, name string) (*domain.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensure(name)
	out := toDomain(name, c)
	return &out, nil
}

func (s *CollectionStore) ensure(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{
			createdAt: time.Now(),
			ids:       make(map[string]struct{}),
		}
		s.collections[name] = c
	}
	return c
}

// Add inserts chunks. The batch is validated in full before anything is stored.
func (s *CollectionStore) Add(_ context.Context, name string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.ensure(name)
	dimension := c.dimension
	seen := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		ch := &chunks[i]
		if ch.ID == "" {
			return fmt.Errorf("%w: chunk id is empty", domain.ErrInvalidInput)
		}
		if len(ch.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, ch.ID)
		}
		if dimension == 0 {
			dimension = len(ch.Embedding)
		}
		if len(ch.Embedding) != dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, ch.ID, len(ch.Embedding), dimension)
		}
		if _, dup := c.ids[ch.ID]; dup {
			return fmt.Errorf("%w: chunk %s", domain.ErrAlreadyExists, ch.ID)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("%w: chunk %s", domain.ErrAlreadyExists, ch.ID)
		}
		seen[ch.ID] = struct{}{}
	}

	c.dimension = dimension
	for _, ch := range chunks {
		c.chunks = append(c.chunks, cloneChunk(ch))
		c.ids[ch.ID] = struct{}{}
	}
	return nil
}

// Query returns up to topK chunks ordered by ascending cosine distance.
func (s *CollectionStore) Query(
	_ context.Context,
	name string,
	embedding []float32,
	topK int,
) ([]domain.QueryResult, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: query embedding is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok || len(c.chunks) == 0 {
		return []domain.QueryResult{}, nil
	}
	if len(embedding) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(embedding), c.dimension)
	}

	distances := make([]float64, len(c.chunks))
	for i, ch := range c.chunks {
		distances[i] = similarity.CosineDistance(embedding, ch.Embedding)
	}

	ranked := similarity.Rank(distances, topK)
	results := make([]domain.QueryResult, 0, len(ranked))
	for _, i := range ranked {
		ch := c.chunks[i]
		results = append(results, domain.QueryResult{
			ID:       ch.ID,
			Text:     ch.Text,
			Metadata: copyMetadata(ch.Metadata),
			Distance: distances[i],
		})
	}
	return results, nil
}

// GetAll returns every chunk in insertion order.
func (s *CollectionStore) GetAll(_ context.Context, name string) (*domain.CollectionDump, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dump := &domain.CollectionDump{}
	c, ok := s.collections[name]
	if !ok {
		return dump, nil
	}
	for _, ch := range c.chunks {
		dump.IDs = append(dump.IDs, ch.ID)
		dump.Texts = append(dump.Texts, ch.Text)
		dump.Metadatas = append(dump.Metadatas, copyMetadata(ch.Metadata))
		dump.Embeddings = append(dump.Embeddings, append([]float32(nil), ch.Embedding...))
	}
	return dump, nil
}

// ListCollections returns all collections sorted by name.
func (s *CollectionStore) ListCollections(_ context.Context) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Collection, 0, len(s.collections))
	for name, c := range s.collections {
		out = append(out, toDomain(name, c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op for the memory store.
func (s *CollectionStore) Close() error {
	return nil
}

func toDomain(name string, c *collection) domain.Collection {
	return domain.Collection{
		Name:       name,
		Dimension:  c.dimension,
		ChunkCount: len(c.chunks),
		CreatedAt:  c.createdAt,
	}
}

func cloneChunk(ch domain.Chunk) domain.Chunk {
	ch.Embedding = append([]float32(nil), ch.Embedding...)
	ch.Metadata = copyMetadata(ch.Metadata)
	return ch
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
