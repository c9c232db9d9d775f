package badger

import (
	"context"
	"testing"

	"github.com/poiesic/verbata/core"
	"github.com/poiesic/verbata/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestBackendClosed_OperationsFail(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	repo := NewChunkRepository(backend)
	require.NoError(t, backend.Close())

	_, err = backend.FindSimilar(context.Background(), []float32{1, 0}, 0, 10)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = repo.GetChunk(context.Background(), core.ID(1))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFindSimilar_NoChunks(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	vector := []float32{0.1, 0.2, 0.3}

	results, err := backend.FindSimilar(ctx, vector, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_WithChunks(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// Create chunks with different vectors
	chunks := []*core.DocumentChunk{
		{
			Text:        "First chunk",
			SourceFile:  "a.txt",
			FileType:    core.FileTypeText,
			ChunkIndex:  0,
			TotalChunks: 3,
			Vector:      []float32{1.0, 0.0, 0.0}, // Very similar to query
		},
		{
			Text:        "Second chunk",
			SourceFile:  "a.txt",
			FileType:    core.FileTypeText,
			ChunkIndex:  1,
			TotalChunks: 3,
			Vector:      []float32{0.9, 0.1, 0.0}, // Somewhat similar
		},
		{
			Text:        "Third chunk",
			SourceFile:  "a.txt",
			FileType:    core.FileTypeText,
			ChunkIndex:  2,
			TotalChunks: 3,
			Vector:      []float32{0.0, 0.0, 1.0}, // Not similar
		},
	}

	_, err = repo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	query := []float32{1.0, 0.0, 0.0}

	results, err := backend.FindSimilar(ctx, query, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Ordered by similarity descending
	assert.Equal(t, "First chunk", results[0].Chunk.Text)
	assert.Equal(t, "Second chunk", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilar_RespectsLimit(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.AddChunks(ctx, &core.DocumentChunk{
			Text:        "chunk",
			SourceFile:  "b.txt",
			FileType:    core.FileTypeText,
			ChunkIndex:  i,
			TotalChunks: 5,
			Vector:      []float32{1.0, 0.0, float32(i) / 10},
		})
		require.NoError(t, err)
	}

	results, err := backend.FindSimilar(ctx, []float32{1.0, 0.0, 0.0}, 0.0, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindSimilar_SkipsChunksWithoutVectors(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, err = repo.AddChunks(ctx,
		&core.DocumentChunk{
			Text:        "embedded",
			SourceFile:  "c.txt",
			FileType:    core.FileTypeText,
			ChunkIndex:  0,
			TotalChunks: 2,
			Vector:      []float32{1.0, 0.0, 0.0},
		},
		&core.DocumentChunk{
			Text:        "not yet embedded",
			SourceFile:  "c.txt",
			FileType:    core.FileTypeText,
			ChunkIndex:  1,
			TotalChunks: 2,
		},
	)
	require.NoError(t, err)

	results, err := backend.FindSimilar(ctx, []float32{1.0, 0.0, 0.0}, 0.0, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "embedded", results[0].Chunk.Text)
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical unit vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal vectors", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0},
		{"opposite vectors", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0},
		{"mismatched lengths use shorter", []float32{1, 1}, []float32{1, 1, 1}, 2.0},
		{"empty vectors", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dotProduct(tt.a, tt.b), 1e-6)
		})
	}
}
