// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/verbata/query"
	"github.com/poiesic/verbata/verbatim"
)

// previewLength bounds the source text shown in plain-text reports.
const previewLength = 150

// Writer saves query results and verbatims under an output directory.
type Writer struct {
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
	}
}

// NewWriter creates a writer rooted at outputDir, creating the directory
// if needed.
func NewWriter(outputDir string, opts ...Option) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	w := &Writer{
		outputDir: outputDir,
		logger:    slog.Default().With("component", "report-writer"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// timestamp returns the filename timestamp for the current time.
func (w *Writer) timestamp() string {
	return w.now().Format("20060102150405")
}

// SaveText writes a plain-text report of the result and returns its path.
func (w *Writer) SaveText(result *query.Result) (string, error) {
	path := filepath.Join(w.outputDir, w.timestamp()+".txt")

	if err := os.WriteFile(path, []byte(w.formatResult(result)), 0644); err != nil {
		return "", err
	}
	w.logger.Info("results saved", "path", path)
	return path, nil
}

// formatResult renders a result the way the plain-text report presents it.
func (w *Writer) formatResult(result *query.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Timestamp: %s\n\n", result.ProcessedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "QUERY: %s\n\n", result.Query)
	fmt.Fprintf(&sb, "ANSWER:\n%s\n\n", result.Answer)

	if len(result.Sources) == 0 {
		sb.WriteString("No relevant source documents found.\n")
		return sb.String()
	}

	sb.WriteString("SOURCE DOCUMENTS:\n")
	for i, source := range result.Sources {
		chunk := source.Chunk
		preview := chunk.Text
		truncated := false
		if len(preview) > previewLength {
			preview = preview[:previewLength]
			truncated = true
		}

		fmt.Fprintf(&sb, "%d. %s (chunk %d/%d) - Relevance: %.3f\n",
			i+1, filepath.Base(chunk.SourceFile), chunk.ChunkIndex+1, chunk.TotalChunks, source.Score)
		fmt.Fprintf(&sb, "   Path: %s\n", chunk.SourceFile)
		fmt.Fprintf(&sb, "   Type: %s\n", chunk.FileType)
		fmt.Fprintf(&sb, "   Preview: %s", preview)
		if truncated {
			sb.WriteString("...")
		}
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// resultDocument is the JSON report shape.
type resultDocument struct {
	Timestamp string           `json:"timestamp"`
	Query     string           `json:"query"`
	Answer    string           `json:"answer"`
	Sources   []sourceDocument `json:"sources"`
}

type sourceDocument struct {
	SourceFile  string  `json:"source_file"`
	FileType    string  `json:"file_type"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
	Score       float32 `json:"score"`
	Text        string  `json:"text"`
}

// SaveJSON writes a JSON report of the result and returns its path.
func (w *Writer) SaveJSON(result *query.Result) (string, error) {
	path := filepath.Join(w.outputDir, w.timestamp()+".json")

	doc := resultDocument{
		Timestamp: result.ProcessedAt.Format(time.RFC3339),
		Query:     result.Query,
		Answer:    result.Answer,
		Sources:   make([]sourceDocument, 0, len(result.Sources)),
	}
	for _, source := range result.Sources {
		chunk := source.Chunk
		doc.Sources = append(doc.Sources, sourceDocument{
			SourceFile:  chunk.SourceFile,
			FileType:    chunk.FileType.String(),
			ChunkIndex:  chunk.ChunkIndex,
			TotalChunks: chunk.TotalChunks,
			Score:       source.Score,
			Text:        chunk.Text,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	w.logger.Info("JSON results saved", "path", path)
	return path, nil
}

// SaveVerbatims writes rendered verbatims as a numbered plain-text file
// and returns its path.
func (w *Writer) SaveVerbatims(queryText string, verbatims []verbatim.Verbatim, format verbatim.Format) (string, error) {
	path := filepath.Join(w.outputDir, "verbatims_"+w.timestamp()+".txt")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n", queryText)
	fmt.Fprintf(&sb, "Generated: %s\n", w.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Verbatims: %d\n\n", len(verbatims))

	for i, line := range verbatim.Render(verbatims, format) {
		fmt.Fprintf(&sb, "%d. %s\n\n", i+1, line)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", err
	}
	w.logger.Info("verbatims saved", "path", path, "count", len(verbatims))
	return path, nil
}

// ExportCSV writes verbatims as CSV to the given path. A relative path is
// resolved against the output directory.
func (w *Writer) ExportCSV(verbatims []verbatim.Verbatim, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.outputDir, path)
	}

	content, err := verbatim.ExportCSV(verbatims)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	w.logger.Info("CSV export saved", "path", path, "count", len(verbatims))
	return path, nil
}
