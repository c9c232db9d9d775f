package storage

import (
	"context"

	"github.com/poiesic/verbata/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds document chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing document chunks.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more document chunks to storage.
	// For chunks with ID=0, derives content-based IDs from the chunk's
	// content key, so re-adding a chunk from the same source file and
	// position overwrites the previous version.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.DocumentChunk) ([]*core.DocumentChunk, error)

	// UpdateChunks updates existing document chunks.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.DocumentChunk) ([]*core.DocumentChunk, error)

	// DeleteChunks removes document chunks by their IDs.
	// Also removes associated source file index entries.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// GetChunk retrieves a single document chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.DocumentChunk, error)

	// GetChunks retrieves multiple document chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.DocumentChunk, error)

	// GetChunksBySource retrieves all chunks originating from a source file,
	// ordered by chunk index ascending.
	GetChunksBySource(ctx context.Context, sourceFile string) ([]*core.DocumentChunk, error)

	// DeleteChunksBySource removes all chunks originating from a source file.
	// Returns the number of chunks removed. Removing an unknown source is
	// not an error and returns zero.
	DeleteChunksBySource(ctx context.Context, sourceFile string) (int, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// ListSources returns the distinct source files with stored chunks,
	// sorted lexicographically.
	ListSources(ctx context.Context) ([]string, error)
}
