package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

func testChunk(id string, embedding ...float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Text:      "text " + id,
		Embedding: embedding,
		Metadata:  map[string]any{domain.MetaSource: id + ".txt", domain.MetaChunkIndex: 0},
	}
}

func TestNewCollectionStore(t *testing.T) {
	store := NewCollectionStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.collections)
	assert.NoError(t, store.Close())
}

func TestCollectionStore_GetOrCreate_Idempotent(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	first, err := store.GetOrCreateCollection(ctx, "docs")
	require.NoError(t, err)
	second, err := store.GetOrCreateCollection(ctx, "docs")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	all, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCollectionStore_GetOrCreate_EmptyName(t *testing.T) {
	store := NewCollectionStore()
	_, err := store.GetOrCreateCollection(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCollectionStore_Add_Duplicate(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "docs", []domain.Chunk{testChunk("a", 1, 0)}))
	err := store.Add(ctx, "docs", []domain.Chunk{testChunk("b", 0, 1), testChunk("a", 1, 1)})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// The failing batch stores nothing.
	dump, err := store.GetAll(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, dump.IDs)
}

func TestCollectionStore_Add_DimensionMismatch(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "docs", []domain.Chunk{testChunk("a", 1, 0, 0)}))
	err := store.Add(ctx, "docs", []domain.Chunk{testChunk("b", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestCollectionStore_Add_Invalid(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Add(ctx, "docs", []domain.Chunk{testChunk("", 1)}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Add(ctx, "docs", []domain.Chunk{testChunk("a")}), domain.ErrInvalidInput)
	assert.NoError(t, store.Add(ctx, "docs", nil))
}

func TestCollectionStore_Add_CopiesInput(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	c := testChunk("a", 1, 0)
	require.NoError(t, store.Add(ctx, "docs", []domain.Chunk{c}))
	c.Embedding[0] = 42
	c.Metadata[domain.MetaSource] = "changed"

	dump, err := store.GetAll(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, dump.Embeddings[0])
	assert.Equal(t, "a.txt", dump.Metadatas[0][domain.MetaSource])
}

func TestCollectionStore_Query_Ranking(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "docs", []domain.Chunk{
		testChunk("orthogonal", 0, 1),
		testChunk("exact", 1, 0),
		testChunk("close", 1, 0.1),
	}))

	results, err := store.Query(ctx, "docs", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, 0.0, results[0].Distance)
	assert.Equal(t, "close", results[1].ID)
	assert.Equal(t, "close.txt", results[1].Source())
}

func TestCollectionStore_Query_MissingCollection(t *testing.T) {
	store := NewCollectionStore()

	results, err := store.Query(context.Background(), "missing", []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollectionStore_Query_Errors(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, "docs", []domain.Chunk{testChunk("a", 1, 0)}))

	_, err := store.Query(ctx, "docs", nil, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Query(ctx, "docs", []float32{1, 0, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestCollectionStore_ListCollections_Sorted(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "b", []domain.Chunk{testChunk("x", 1)}))
	_, err := store.GetOrCreateCollection(ctx, "a")
	require.NoError(t, err)

	all, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, 0, all[0].ChunkCount)
	assert.Equal(t, "b", all[1].Name)
	assert.Equal(t, 1, all[1].ChunkCount)
	assert.Equal(t, 1, all[1].Dimension)
}

func TestCollectionStore_ConcurrentAdd(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			assert.NoError(t, store.Add(ctx, "docs", []domain.Chunk{testChunk(id, 1, float32(i))}))
		}(i)
	}
	wg.Wait()

	dump, err := store.GetAll(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 50, dump.Len())
}
