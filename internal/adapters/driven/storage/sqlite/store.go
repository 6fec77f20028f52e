package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/similarity"
	"github.com/secondbrain-labs/brain/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// DBFileName is the database file created inside the db path.
const DBFileName = "index.db"

// Store is a SQLite-backed CollectionStore.
type Store struct {
	db   *sqlx.DB
	path string
}

// collectionRow maps the collections table plus a chunk count.
type collectionRow struct {
	Name       string    `db:"name"`
	Dimension  int       `db:"dimension"`
	CreatedAt  time.Time `db:"created_at"`
	ChunkCount int       `db:"chunk_count"`
}

// chunkRow maps the chunks table.
type chunkRow struct {
	ID        string `db:"id"`
	Text      string `db:"text"`
	Embedding []byte `db:"embedding"`
	Metadata  string `db:"metadata"`
}

// NewStore opens (or creates) the index database inside dbPath.
// If dbPath is empty, defaults to ./db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = domain.DefaultDBPath
	}

	// Ensure directory exists
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating db directory: %w", domain.ErrStoreUnavailable, err)
	}

	file := filepath.Join(dbPath, DBFileName)

	// Open database with WAL mode for better concurrency
	dsn := file + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreUnavailable, err)
	}

	return newStore(db, file)
}

// NewInMemoryStore opens a private in-memory database.
// Contents are lost when the store is closed.
func NewInMemoryStore() (*Store, error) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreUnavailable, err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return newStore(db, ":memory:")
}

func newStore(db *sqlx.DB, path string) (*Store, error) {
	s := &Store{
		db:   db,
		path: path,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStoreUnavailable, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	if err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_collections.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// GetOrCreateCollection returns the named collection, creating it if absent.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (*domain.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	if err := ensureCollection(ctx, s.db, name); err != nil {
		return nil, err
	}

	return s.getCollection(ctx, name)
}

// ensureCollection inserts the collection row if it does not exist.
func ensureCollection(ctx context.Context, db sqlx.ExecerContext, name string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO collections (name, dimension, created_at)
		VALUES (?, 0, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

func (s *Store) getCollection(ctx context.Context, name string) (*domain.Collection, error) {
	var row collectionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT c.name, c.dimension, c.created_at,
			(SELECT COUNT(*) FROM chunks WHERE collection = c.name) AS chunk_count
		FROM collections c WHERE c.name = ?
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	c := row.toDomain()
	return &c, nil
}

// ListCollections returns all collections sorted by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var rows []collectionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.name, c.dimension, c.created_at,
			(SELECT COUNT(*) FROM chunks WHERE collection = c.name) AS chunk_count
		FROM collections c ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	collections := make([]domain.Collection, len(rows))
	for i := range rows {
		collections[i] = rows[i].toDomain()
	}
	return collections, nil
}

// Add inserts chunks in one transaction. The collection is created if absent
// and its dimension is fixed by the first chunk ever added.
func (s *Store) Add(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ensureCollection(ctx, tx, collection); err != nil {
		return err
	}

	var dimension int
	if err := tx.GetContext(ctx, &dimension, "SELECT dimension FROM collections WHERE name = ?", collection); err != nil {
		return fmt.Errorf("querying dimension: %w", err)
	}

	if dimension == 0 {
		dimension = len(chunks[0].Embedding)
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET dimension = ? WHERE name = ?", dimension, collection); err != nil {
			return fmt.Errorf("setting dimension: %w", err)
		}
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO chunks (collection, id, text, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		chunk := &chunks[i]

		if err := validateChunk(chunk, dimension); err != nil {
			return err
		}

		if _, dup := seen[chunk.ID]; dup {
			return fmt.Errorf("%w: chunk id %q repeated in batch", domain.ErrAlreadyExists, chunk.ID)
		}
		seen[chunk.ID] = struct{}{}

		var exists int
		if err := tx.GetContext(ctx, &exists,
			"SELECT COUNT(*) FROM chunks WHERE collection = ? AND id = ?", collection, chunk.ID); err != nil {
			return fmt.Errorf("checking chunk id: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: chunk id %q", domain.ErrAlreadyExists, chunk.ID)
		}

		metadataJSON, err := marshalMetadata(chunk.Metadata)
		if err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx, collection, chunk.ID, chunk.Text,
			float32SliceToBytes(chunk.Embedding), metadataJSON); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query scores every chunk in the collection by cosine distance and returns
// the closest topK. A missing or empty collection yields no results.
func (s *Store) Query(
	ctx context.Context,
	collection string,
	embedding []float32,
	topK int,
) ([]domain.QueryResult, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: query embedding is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	var dimension int
	err := s.db.GetContext(ctx, &dimension, "SELECT dimension FROM collections WHERE name = ?", collection)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.QueryResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying dimension: %w", err)
	}
	if dimension != 0 && dimension != len(embedding) {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %q has %d",
			domain.ErrDimensionMismatch, len(embedding), collection, dimension)
	}

	rows, err := s.selectChunks(ctx, collection)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(rows))
	for i := range rows {
		distances[i] = similarity.CosineDistance(embedding, bytesToFloat32Slice(rows[i].Embedding))
	}

	ranked := similarity.Rank(distances, topK)
	results := make([]domain.QueryResult, 0, len(ranked))
	for _, i := range ranked {
		metadata, err := unmarshalMetadata(rows[i].Metadata)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.QueryResult{
			ID:       rows[i].ID,
			Text:     rows[i].Text,
			Metadata: metadata,
			Distance: distances[i],
		})
	}

	return results, nil
}

// GetAll returns every chunk of the collection in insertion order.
func (s *Store) GetAll(ctx context.Context, collection string) (*domain.CollectionDump, error) {
	rows, err := s.selectChunks(ctx, collection)
	if err != nil {
		return nil, err
	}

	dump := &domain.CollectionDump{
		IDs:        make([]string, len(rows)),
		Texts:      make([]string, len(rows)),
		Metadatas:  make([]map[string]any, len(rows)),
		Embeddings: make([][]float32, len(rows)),
	}

	for i := range rows {
		metadata, err := unmarshalMetadata(rows[i].Metadata)
		if err != nil {
			return nil, err
		}
		dump.IDs[i] = rows[i].ID
		dump.Texts[i] = rows[i].Text
		dump.Metadatas[i] = metadata
		dump.Embeddings[i] = bytesToFloat32Slice(rows[i].Embedding)
	}

	return dump, nil
}

func (s *Store) selectChunks(ctx context.Context, collection string) ([]chunkRow, error) {
	var rows []chunkRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, text, embedding, metadata
		FROM chunks WHERE collection = ?
		ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	return rows, nil
}

// ==================== Helper Functions ====================

func (r collectionRow) toDomain() domain.Collection {
	return domain.Collection{
		Name:       r.Name,
		Dimension:  r.Dimension,
		ChunkCount: r.ChunkCount,
		CreatedAt:  r.CreatedAt,
	}
}

func validateChunk(chunk *domain.Chunk, dimension int) error {
	if chunk.ID == "" {
		return fmt.Errorf("%w: chunk id is empty", domain.ErrInvalidInput)
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("%w: chunk %q has no embedding", domain.ErrInvalidInput, chunk.ID)
	}
	if len(chunk.Embedding) != dimension {
		return fmt.Errorf("%w: chunk %q has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), dimension)
	}
	return nil
}

func marshalMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMetadata(s string) (map[string]any, error) {
	metadata := make(map[string]any)
	if s == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(s), &metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	return metadata, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
