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

package verbata

import (
	"log/slog"

	"github.com/poiesic/verbata/ai"
	"github.com/poiesic/verbata/ai/openai"
	"github.com/poiesic/verbata/ingestion"
	"github.com/poiesic/verbata/query"
	"github.com/poiesic/verbata/report"
	"github.com/poiesic/verbata/storage"
	"github.com/poiesic/verbata/storage/badger"
)

// System bundles the storage backend, chunk repository and AI provider
// behind a single lifecycle. Pipelines, query engines and report writers
// are created from it so they share one set of connections.
type System struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.AIProvider
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies an already-constructed provider instead of
// building one from configuration.
func WithAIProvider(provider ai.AIProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &System{
		backend:   backend,
		chunkRepo: chunkRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *System) ChunkRepository() storage.ChunkRepository {
	return s.chunkRepo
}

func (s *System) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.chunkRepo, s.provider.Embedder(), opts...)
}

func (s *System) NewQueryEngine(opts ...query.Option) (*query.Engine, error) {
	return query.NewEngine(s.chunkRepo, s.provider, opts...)
}

func (s *System) NewReportWriter(outputDir string, opts ...report.Option) (*report.Writer, error) {
	return report.NewWriter(outputDir, opts...)
}
