package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/memory"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/extractors"
	"github.com/secondbrain-labs/brain/internal/extractors/plaintext"
)

const testCollection = "test_docs"

type ingestFixture struct {
	svc      *IngestService
	store    *memory.CollectionStore
	embedder *mockEmbeddingService
	chunker  *mockChunker
	dir      string
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())

	f := &ingestFixture{
		store:    memory.NewCollectionStore(),
		embedder: &mockEmbeddingService{},
		chunker:  &mockChunker{},
		dir:      t.TempDir(),
	}
	f.svc = NewIngestService(registry, f.chunker, f.embedder, f.store, testCollection, 0)
	return f
}

func (f *ingestFixture) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0600))
}

func TestIngest_EmptyDirectory(t *testing.T) {
	f := newIngestFixture(t)

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 0, report.FilesSeen)
	assert.Equal(t, 0, report.ChunksAdded)
	assert.False(t, report.HasFailures())

	// The collection exists even though nothing was added.
	collections, err := f.store.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, testCollection, collections[0].Name)
	assert.Equal(t, 0, collections[0].ChunkCount)
}

func TestIngest_DirectoryNotFound(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Ingest(context.Background(), filepath.Join(f.dir, "missing"))
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
	assert.Equal(t, domain.KindUserInput, domain.KindOf(err))
}

func TestIngest_PathIsFile(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "a.txt", "hello")

	_, err := f.svc.Ingest(context.Background(), filepath.Join(f.dir, "a.txt"))
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestIngest_SkipsUnsupportedAndSubdirectories(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "notes.txt", "one|two")
	f.write(t, "data.csv", "a,b,c")
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "nested"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "nested", "deep.txt"), []byte("deep"), 0600))

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesSeen)
	assert.Equal(t, 1, report.FilesIndexed)
	assert.Equal(t, 1, report.FilesSkipped)
	assert.Equal(t, 2, report.ChunksAdded)
	assert.False(t, report.HasFailures())
	assert.NotContains(t, f.embedder.calls, "a,b,c")
	assert.NotContains(t, f.embedder.calls, "deep")
}

func TestIngest_ChunkMetadataAndUniqueIDs(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "b.TXT", "first|second|third")
	f.write(t, "a.txt", "alpha|beta")

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 5, report.ChunksAdded)
	assert.Equal(t, domain.DefaultChunkSize, f.chunker.lastMaxSize)

	dump, err := f.store.GetAll(context.Background(), testCollection)
	require.NoError(t, err)
	require.Equal(t, 5, dump.Len())

	// Files are processed in lexical order and chunk order is preserved.
	assert.Equal(t, []string{"alpha", "beta", "first", "second", "third"}, dump.Texts)

	seen := map[string]bool{}
	for i, id := range dump.IDs {
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Equal(t, textVector(dump.Texts[i]), dump.Embeddings[i])
	}

	assert.Equal(t, "a.txt", dump.Metadatas[0][domain.MetaSource])
	assert.Equal(t, 1, dump.Metadatas[1][domain.MetaChunkIndex])
	assert.Equal(t, "b.TXT", dump.Metadatas[4][domain.MetaSource])
	assert.Equal(t, 2, dump.Metadatas[4][domain.MetaChunkIndex])
	assert.Equal(t, ".txt", dump.Metadatas[4][domain.MetaExtension])
}

func TestIngest_ReingestAddsDuplicates(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "a.txt", "same")

	for i := 0; i < 2; i++ {
		_, err := f.svc.Ingest(context.Background(), f.dir)
		require.NoError(t, err)
	}

	dump, err := f.store.GetAll(context.Background(), testCollection)
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "same"}, dump.Texts)
	assert.NotEqual(t, dump.IDs[0], dump.IDs[1])
}

func TestIngest_ExtractionFailureIsolated(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "a.txt", "good")
	f.write(t, "b.txt", string([]byte{0xff, 0xfe, 0xfd}))
	f.write(t, "c.txt", "also good")

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesIndexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "b.txt", report.Failures[0].File)
	assert.Equal(t, domain.KindExtraction, report.Failures[0].Kind)
	assert.ErrorIs(t, report.Failures[0].Err, domain.ErrExtraction)
	assert.Equal(t, 2, report.ChunksAdded)
}

func TestIngest_EmbeddingFailureKeepsEarlierChunks(t *testing.T) {
	f := newIngestFixture(t)
	f.embedder.failOn = "boom"
	f.write(t, "a.txt", "one|two|boom|four")
	f.write(t, "b.txt", "other")

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, "a.txt", failure.File)
	assert.Equal(t, domain.KindEmbedding, failure.Kind)
	assert.Equal(t, 2, failure.ChunksAdded)
	assert.Contains(t, failure.Err.Error(), "embed chunk 2")

	dump, err := f.store.GetAll(context.Background(), testCollection)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "other"}, dump.Texts)
	assert.Equal(t, 3, report.ChunksAdded)
	assert.Equal(t, 1, report.FilesIndexed)
}

func TestIngest_StoreFailureIsolated(t *testing.T) {
	f := newIngestFixture(t)
	f.svc.store = &failingStore{
		CollectionStore: f.store,
		allow:           1,
		err:             domain.ErrStoreUnavailable,
	}
	f.write(t, "a.txt", "one|two")

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, domain.KindStore, report.Failures[0].Kind)
	assert.Equal(t, 1, report.Failures[0].ChunksAdded)
}

func TestIngest_EmptyFileIndexesNothing(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "empty.txt", "")

	report, err := f.svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesIndexed)
	assert.Equal(t, 0, report.ChunksAdded)
}

func TestIngest_ContextCancelled(t *testing.T) {
	f := newIngestFixture(t)
	f.write(t, "a.txt", "one")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.Ingest(ctx, f.dir)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	assert.Equal(t, 0, report.ChunksAdded)
}

func TestNewIngestService_ChunkSize(t *testing.T) {
	f := newIngestFixture(t)
	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	svc := NewIngestService(registry, f.chunker, f.embedder, f.store, testCollection, 250)
	assert.Equal(t, 250, svc.chunkSize)

	f.write(t, "a.txt", "x")
	_, err := svc.Ingest(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 250, f.chunker.lastMaxSize)
}
