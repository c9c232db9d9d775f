package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrFileTooLarge is returned when a file exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFile is returned when a file's extension is not indexable.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
