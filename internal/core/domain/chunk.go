package domain

import "time"

// Metadata keys written by the ingestion pipeline.
const (
	// MetaSource is the base name of the file a chunk came from.
	MetaSource = "source"

	// MetaChunkIndex is the chunk's ordinal position within its file.
	MetaChunkIndex = "chunk_index"

	// MetaExtension is the lowercased extension of the source file.
	MetaExtension = "extension"
)

// Chunk is the atomic unit of indexed content.
// Chunks are created once during ingestion and never modified.
type Chunk struct {
	// ID is globally unique, generated at ingestion time.
	ID string

	// Text is the chunk's raw text. Never empty.
	Text string

	// Embedding is the vector produced by the embedder.
	Embedding []float32

	// Metadata always carries MetaSource.
	Metadata map[string]any
}

// Source returns the originating file's base name, or "" if absent.
func (c Chunk) Source() string {
	s, _ := c.Metadata[MetaSource].(string)
	return s
}

// Collection is a named, persistent container of chunks.
type Collection struct {
	// Name addresses the collection across process restarts.
	Name string

	// Dimension is the vector length shared by all chunks.
	// Zero until the first chunk is added.
	Dimension int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// CreatedAt is when the collection was first created.
	CreatedAt time.Time
}

// CollectionDump is the full contents of a collection in insertion order.
// The slices are parallel: index i of each describes the same chunk.
type CollectionDump struct {
	IDs        []string
	Texts      []string
	Metadatas  []map[string]any
	Embeddings [][]float32
}

// Len returns the number of chunks in the dump.
func (d *CollectionDump) Len() int {
	if d == nil {
		return 0
	}
	return len(d.IDs)
}
