package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/verbata/ai"
	"github.com/poiesic/verbata/chunk"
	"github.com/poiesic/verbata/core"
	"github.com/poiesic/verbata/storage"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultMaxFileSize  = 10 << 20 // 10 MiB
	defaultBatchSize    = 100
)

// Stats summarizes one indexing run.
type Stats struct {
	FilesProcessed int
	FilesFailed    int
	ChunksIndexed  int
	Duration       time.Duration
}

// Pipeline orchestrates the discovery, chunking, embedding, and storage of
// documents. Files are processed concurrently on a worker pool.
type Pipeline struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	splitter        *chunk.Splitter
	pool            *ants.Pool
	chunkSize       int
	chunkOverlap    int
	maxFileSize     int64
	batchSize       int
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithChunkSize sets the maximum chunk size in bytes.
// Default is 1000.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		p.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between consecutive chunks in bytes.
// Default is 200.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		p.chunkOverlap = overlap
		return nil
	}
}

// WithMaxFileSize sets the per-file size cap in bytes. Files larger than
// this are counted as failed. Zero disables the cap.
// Default is 10 MiB.
func WithMaxFileSize(size int64) Option {
	return func(p *Pipeline) error {
		p.maxFileSize = size
		return nil
	}
}

// WithBatchSize sets how many chunk texts are embedded per request.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent file processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		pool:            pool,
		chunkSize:       defaultChunkSize,
		chunkOverlap:    defaultChunkOverlap,
		maxFileSize:     defaultMaxFileSize,
		batchSize:       defaultBatchSize,
		logger:          slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create splitter after options are applied (so it gets final config)
	splitter, err := chunk.New(p.chunkSize, p.chunkOverlap)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.splitter = splitter

	return p, nil
}

// IngestDirectory discovers all supported files under root and indexes
// them. Per-file failures are logged and counted but do not abort the run.
func (p *Pipeline) IngestDirectory(ctx context.Context, root string) (*Stats, error) {
	started := time.Now()

	paths, err := DiscoverFiles(root)
	if err != nil {
		return nil, err
	}

	p.logger.Info("indexing files", "root", root, "count", len(paths))

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats Stats
	)

	for _, path := range paths {
		path := path
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			indexed, err := p.IngestFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.FilesFailed++
				p.logger.Error("failed to index file", "path", path, "err", err)
				return
			}
			stats.FilesProcessed++
			stats.ChunksIndexed += indexed
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			stats.FilesFailed++
			mu.Unlock()
			p.logger.Error("failed to submit file", "path", path, "err", submitErr)
		}
	}

	wg.Wait()

	stats.Duration = time.Since(started)
	p.logger.Info("indexing complete",
		"processed", stats.FilesProcessed,
		"failed", stats.FilesFailed,
		"chunks", stats.ChunksIndexed,
		"duration", stats.Duration)

	return &stats, nil
}

// IngestFile reads, chunks, embeds, and stores a single file.
// Returns the number of chunks indexed.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	text, fileType, fileSize, err := ReadDocument(path, p.maxFileSize)
	if err != nil {
		return 0, err
	}

	if strings.TrimSpace(text) == "" {
		p.logger.Debug("no indexable content", "path", path)
		return 0, nil
	}

	// Short texts come back as a single untrimmed segment, so blank
	// segments are still possible here.
	segments := p.splitter.Split(text)
	chunks := make([]*core.DocumentChunk, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		chunks = append(chunks, &core.DocumentChunk{
			Text:        seg.Text,
			SourceFile:  path,
			FileType:    fileType,
			ChunkIndex:  len(chunks),
			TotalChunks: 0,
			StartOffset: seg.Start,
			EndOffset:   seg.End,
			FileSize:    fileSize,
		})
	}
	if len(chunks) == 0 {
		p.logger.Debug("no indexable content", "path", path)
		return 0, nil
	}
	for _, c := range chunks {
		c.TotalChunks = len(chunks)
	}

	if err := p.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}

	if _, err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return 0, err
	}

	p.logger.Debug("indexed file", "path", path, "chunks", len(chunks))
	return len(chunks), nil
}

// embedChunks populates embedding vectors in batches.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.DocumentChunk) error {
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}

		for i := range batch {
			if i < len(vectors) {
				batch[i].Vector = vectors[i]
			}
		}
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
