package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/verbata/core"
	"github.com/poiesic/verbata/query"
	"github.com/poiesic/verbata/verbatim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)
	w.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return w, dir
}

func sampleResult() *query.Result {
	return &query.Result{
		Query:  "what did participants think of pricing?",
		Answer: "Most participants found pricing fair (Document 1).",
		Sources: []*core.SearchResult{
			{
				Chunk: &core.DocumentChunk{
					Text:        "Pricing was considered fair by most participants in the session.",
					SourceFile:  "sessions/group1.txt",
					FileType:    core.FileTypeText,
					ChunkIndex:  2,
					TotalChunks: 4,
				},
				Score: 0.873,
			},
		},
		ProcessedAt: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestNewWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")

	_, err := NewWriter(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveText(t *testing.T) {
	w, dir := newTestWriter(t)

	path, err := w.SaveText(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260315103000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "QUERY: what did participants think of pricing?")
	assert.Contains(t, content, "ANSWER:\nMost participants found pricing fair (Document 1).")
	assert.Contains(t, content, "1. group1.txt (chunk 3/4) - Relevance: 0.873")
	assert.Contains(t, content, "Path: sessions/group1.txt")
	assert.Contains(t, content, "Type: text")
	assert.Contains(t, content, "Preview: Pricing was considered fair")
}

func TestSaveText_NoSources(t *testing.T) {
	w, _ := newTestWriter(t)

	result := sampleResult()
	result.Sources = nil

	path, err := w.SaveText(result)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No relevant source documents found.")
}

func TestSaveText_TruncatesPreview(t *testing.T) {
	w, _ := newTestWriter(t)

	result := sampleResult()
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	result.Sources[0].Chunk.Text = string(long)

	path, err := w.SaveText(result)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), string(long[:previewLength])+"...")
	assert.NotContains(t, string(data), string(long))
}

func TestSaveJSON(t *testing.T) {
	w, dir := newTestWriter(t)

	path, err := w.SaveJSON(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260315103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc resultDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "what did participants think of pricing?", doc.Query)
	assert.Equal(t, "Most participants found pricing fair (Document 1).", doc.Answer)
	require.Len(t, doc.Sources, 1)
	assert.Equal(t, "sessions/group1.txt", doc.Sources[0].SourceFile)
	assert.Equal(t, "text", doc.Sources[0].FileType)
	assert.Equal(t, 2, doc.Sources[0].ChunkIndex)
	assert.InDelta(t, 0.873, doc.Sources[0].Score, 1e-6)
}

func TestSaveVerbatims(t *testing.T) {
	w, dir := newTestWriter(t)

	verbatims := []verbatim.Verbatim{
		{
			CleanedQuote:   "The checkout flow saved me time",
			Speaker:        verbatim.SpeakerInfo{Name: "Jane", Demographics: "F, 25-34", Location: "NYC"},
			RelevanceScore: 0.8,
			WordCount:      6,
		},
	}

	path, err := w.SaveVerbatims("checkout feedback", verbatims, verbatim.FormatResearch)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "verbatims_20260315103000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Query: checkout feedback")
	assert.Contains(t, content, "Verbatims: 1")
	assert.Contains(t, content, `1. "The checkout flow saved me time" - Jane, NYC, F, 25-34`)
}

func TestExportCSV(t *testing.T) {
	w, dir := newTestWriter(t)

	verbatims := []verbatim.Verbatim{
		{CleanedQuote: "Quote one", Speaker: verbatim.SpeakerInfo{Name: "Bob"}, RelevanceScore: 0.5, WordCount: 2},
	}

	t.Run("relative path resolves to output dir", func(t *testing.T) {
		path, err := w.ExportCSV(verbatims, "export.csv")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "export.csv"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Quote,Speaker,Demographics,Location,Relevance_Score,Word_Count,Timestamp")
		assert.Contains(t, string(data), "Quote one,Bob,,,0.500,2,")
	})

	t.Run("absolute path used as is", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "custom.csv")
		path, err := w.ExportCSV(verbatims, abs)
		require.NoError(t, err)
		assert.Equal(t, abs, path)

		_, err = os.Stat(abs)
		assert.NoError(t, err)
	})
}
