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


package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/verbata/ai"
	"github.com/poiesic/verbata/core"
	"github.com/poiesic/verbata/storage"
	"github.com/poiesic/verbata/verbatim"
)

const (
	// maxQueryLength bounds accepted query text.
	maxQueryLength = 10000

	defaultTopK     = 5
	defaultMinScore = 0.1
)

// Result is the outcome of an answered query.
type Result struct {
	Query       string
	Answer      string
	Sources     []*core.SearchResult
	ProcessedAt time.Time
}

// Engine performs retrieval and answer synthesis over indexed chunks.
type Engine struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	generator       ai.Generator
	extractor       *verbatim.Extractor
	topK            int
	minScore        float32
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTopK sets the default number of chunks retrieved per query.
// Default is 5.
func WithTopK(topK int) Option {
	return func(e *Engine) error {
		if topK < 1 {
			topK = 1
		}
		e.topK = topK
		return nil
	}
}

// WithMinScore sets the default minimum similarity score for retrieval.
// Default is 0.1.
func WithMinScore(minScore float32) Option {
	return func(e *Engine) error {
		e.minScore = minScore
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a new query engine.
func NewEngine(
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		generator:       provider.Generator(),
		extractor:       verbatim.NewExtractor(),
		topK:            defaultTopK,
		minScore:        defaultMinScore,
		logger:          slog.Default().With("component", "query-engine"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ValidateQuery checks query text against the engine's input rules.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	if n := utf8.RuneCountInString(query); n > maxQueryLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrQueryTooLong, n, maxQueryLength)
	}
	return nil
}

// Retrieve embeds the query and returns the most similar stored chunks.
// topK and minScore override the engine defaults when positive.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int, minScore float32) ([]*core.SearchResult, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	if topK < 1 {
		topK = e.topK
	}
	if minScore <= 0 {
		minScore = e.minScore
	}

	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	hits, err := e.chunkRepository.FindSimilar(ctx, embedding, minScore, topK)
	if err != nil {
		e.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	e.logger.Debug("retrieved chunks", "query_length", len(query), "hits", len(hits))
	return hits, nil
}

// Answer retrieves context for the query and synthesizes an answer with the
// chat model. When retrieval finds nothing, a canned response is returned
// without calling the model.
func (e *Engine) Answer(ctx context.Context, query string) (*Result, error) {
	hits, err := e.Retrieve(ctx, query, 0, 0)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Query:       query,
		Sources:     hits,
		ProcessedAt: time.Now().UTC(),
	}

	contextText := buildContext(hits)
	if contextText == "" {
		result.Answer = noAnswerResponse
		return result, nil
	}

	answer, err := e.generator.Complete(ctx, answerSystemPrompt, buildUserPrompt(query, contextText))
	if err != nil {
		e.logger.Error("error generating answer", "err", err)
		return nil, err
	}

	result.Answer = answer
	return result, nil
}

// ExtractVerbatims retrieves passages for the query and runs verbatim
// extraction over them. topK overrides the engine default when positive.
func (e *Engine) ExtractVerbatims(ctx context.Context, query string, topK int, opts verbatim.Options) ([]verbatim.Verbatim, error) {
	hits, err := e.Retrieve(ctx, query, topK, 0)
	if err != nil {
		return nil, err
	}

	passages := make([]verbatim.Passage, len(hits))
	for i, hit := range hits {
		passages[i] = verbatim.Passage{
			Text:  hit.Chunk.Text,
			Score: hit.Score,
		}
	}

	return e.extractor.Extract(query, passages, opts)
}
