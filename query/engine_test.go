package query

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/verbata/ai/mock"
	"github.com/poiesic/verbata/core"
	"github.com/poiesic/verbata/storage"
	"github.com/poiesic/verbata/storage/badger"
	"github.com/poiesic/verbata/verbatim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

// fixedVectorProvider returns a mock provider whose embedder maps known
// texts to fixed vectors so similarity is fully controlled by the test.
func fixedVectorProvider(vectors map[string][]float32) *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 1}, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			if v, ok := vectors[text]; ok {
				out[i] = v
			} else {
				out[i] = []float32{0, 0, 1}
			}
		}
		return out, nil
	}
	return mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator()).(*mock.MockProvider)
}

func seedChunks(t *testing.T, repo storage.ChunkRepository, chunks ...*core.DocumentChunk) {
	t.Helper()
	_, err := repo.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
}

func TestNewEngine_Validation(t *testing.T) {
	repo := newTestRepo(t)

	_, err := NewEngine(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewEngine(repo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	e, err := NewEngine(repo, mock.NewMockProvider())
	require.NoError(t, err)
	assert.Equal(t, defaultTopK, e.topK)
	assert.Equal(t, float32(defaultMinScore), e.minScore)
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("what did participants say?"))
	assert.ErrorIs(t, ValidateQuery(""), ErrEmptyQuery)
	assert.ErrorIs(t, ValidateQuery("   \n\t"), ErrEmptyQuery)
	assert.ErrorIs(t, ValidateQuery(strings.Repeat("q", maxQueryLength+1)), ErrQueryTooLong)

	// The limit is in characters, so multi-byte text at the limit passes.
	assert.NoError(t, ValidateQuery(strings.Repeat("é", maxQueryLength)))
	assert.ErrorIs(t, ValidateQuery(strings.Repeat("é", maxQueryLength+1)), ErrQueryTooLong)
}

func TestRetrieve(t *testing.T) {
	repo := newTestRepo(t)
	provider := fixedVectorProvider(map[string][]float32{
		"pricing feedback": {1, 0, 0},
		"close match":      {0.95, 0.05, 0},
		"far match":        {0.3, 0.7, 0},
		"unrelated":        {0, 1, 0},
	})

	seedChunks(t, repo,
		&core.DocumentChunk{Text: "close match", SourceFile: "a.txt", FileType: core.FileTypeText, TotalChunks: 1, Vector: []float32{0.95, 0.05, 0}},
		&core.DocumentChunk{Text: "far match", SourceFile: "b.txt", FileType: core.FileTypeText, TotalChunks: 1, Vector: []float32{0.3, 0.7, 0}},
		&core.DocumentChunk{Text: "unrelated", SourceFile: "c.txt", FileType: core.FileTypeText, TotalChunks: 1, Vector: []float32{0, 1, 0}},
	)

	e, err := NewEngine(repo, provider)
	require.NoError(t, err)

	hits, err := e.Retrieve(context.Background(), "pricing feedback", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "close match", hits[0].Chunk.Text)

	// Lower threshold admits the weaker hit, ranked second
	hits, err = e.Retrieve(context.Background(), "pricing feedback", 10, 0.2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "close match", hits[0].Chunk.Text)
	assert.Equal(t, "far match", hits[1].Chunk.Text)
}

func TestRetrieve_InvalidQuery(t *testing.T) {
	e, err := NewEngine(newTestRepo(t), mock.NewMockProvider())
	require.NoError(t, err)

	_, err = e.Retrieve(context.Background(), "", 5, 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestAnswer(t *testing.T) {
	repo := newTestRepo(t)
	provider := fixedVectorProvider(map[string][]float32{
		"what about pricing?": {1, 0, 0},
		"Pricing was considered fair by most participants.": {0.9, 0.1, 0},
	})
	gen := provider.GetMockGenerator()
	gen.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "Participants found pricing fair (Document 1).", nil
	}

	seedChunks(t, repo, &core.DocumentChunk{
		Text:       "Pricing was considered fair by most participants.",
		SourceFile: "sessions/group1.txt",
		FileType:   core.FileTypeText, TotalChunks: 1,
		Vector: []float32{0.9, 0.1, 0},
	})

	e, err := NewEngine(repo, provider)
	require.NoError(t, err)

	result, err := e.Answer(context.Background(), "what about pricing?")
	require.NoError(t, err)

	assert.Equal(t, "what about pricing?", result.Query)
	assert.Equal(t, "Participants found pricing fair (Document 1).", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.False(t, result.ProcessedAt.IsZero())

	// The model saw numbered context with the source file name
	_, user := gen.LastPrompts()
	assert.Contains(t, user, "Document 1 [Source: group1.txt]")
	assert.Contains(t, user, "Pricing was considered fair")
	assert.Contains(t, user, "Query: what about pricing?")
}

func TestAnswer_NoHits(t *testing.T) {
	repo := newTestRepo(t)
	provider := mock.NewMockProvider().(*mock.MockProvider)

	e, err := NewEngine(repo, provider)
	require.NoError(t, err)

	result, err := e.Answer(context.Background(), "anything at all")
	require.NoError(t, err)

	assert.Equal(t, noAnswerResponse, result.Answer)
	assert.Empty(t, result.Sources)
	// Model is not called when there is no context
	assert.Zero(t, provider.GetMockGenerator().CallCount())
}

func TestExtractVerbatims(t *testing.T) {
	repo := newTestRepo(t)
	transcript := "Jane, F, 25-34, NYC [00:03]: The new checkout flow saved me a lot of time.\n"
	provider := fixedVectorProvider(map[string][]float32{
		"checkout feedback": {1, 0, 0},
		transcript:          {0.85, 0.15, 0},
	})

	seedChunks(t, repo, &core.DocumentChunk{
		Text:       transcript,
		SourceFile: "sessions/group2.txt",
		FileType:   core.FileTypeText, TotalChunks: 1,
		Vector: []float32{0.85, 0.15, 0},
	})

	e, err := NewEngine(repo, provider)
	require.NoError(t, err)

	verbatims, err := e.ExtractVerbatims(context.Background(), "checkout feedback", 10, verbatim.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, verbatims, 1)

	v := verbatims[0]
	assert.Equal(t, "Jane", v.Speaker.Name)
	assert.Equal(t, "The new checkout flow saved me a lot of time", v.CleanedQuote)
	assert.InDelta(t, 0.85, float64(v.RelevanceScore), 1e-3)
}

func TestExtractVerbatims_InvalidBounds(t *testing.T) {
	e, err := NewEngine(newTestRepo(t), mock.NewMockProvider())
	require.NoError(t, err)

	_, err = e.ExtractVerbatims(context.Background(), "query", 5, verbatim.Options{MinLength: 50, MaxLength: 10})
	assert.ErrorIs(t, err, verbatim.ErrInvalidLengthBounds)
}
