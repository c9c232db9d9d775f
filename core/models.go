package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FileType classifies source files for processing.
type FileType int

const (
	// FileTypeText represents plain text files.
	FileTypeText FileType = iota + 1
	// FileTypeMarkdown represents markdown files.
	FileTypeMarkdown
	// FileTypeCode represents source code files.
	FileTypeCode
	// FileTypeJSON represents JSON files.
	FileTypeJSON
	// FileTypeOther represents any other supported file.
	FileTypeOther
)

// String returns the lowercase name of the file type.
func (ft FileType) String() string {
	switch ft {
	case FileTypeText:
		return "text"
	case FileTypeMarkdown:
		return "markdown"
	case FileTypeCode:
		return "code"
	case FileTypeJSON:
		return "json"
	case FileTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// SupportedExtensions maps file extensions (lowercase, with dot) to file types.
var SupportedExtensions = map[string]FileType{
	".txt":      FileTypeText,
	".md":       FileTypeMarkdown,
	".markdown": FileTypeMarkdown,
	".py":       FileTypeCode,
	".js":       FileTypeCode,
	".java":     FileTypeCode,
	".cpp":      FileTypeCode,
	".c":        FileTypeCode,
	".h":        FileTypeCode,
	".css":      FileTypeCode,
	".html":     FileTypeCode,
	".xml":      FileTypeCode,
	".json":     FileTypeJSON,
	".yml":      FileTypeCode,
	".yaml":     FileTypeCode,
	".sql":      FileTypeCode,
	".sh":       FileTypeCode,
	".bat":      FileTypeCode,
	".csv":      FileTypeText,
	".log":      FileTypeText,
	".conf":     FileTypeText,
	".cfg":      FileTypeText,
}

// DocumentChunk represents one chunk of a processed source document.
// It may be enriched with an embedding vector during ingestion.
type DocumentChunk struct {
	Id          ID
	Text        string
	SourceFile  string
	FileType    FileType
	ChunkIndex  int
	TotalChunks int
	StartOffset int // Offset of the chunk within the source text
	EndOffset   int // End offset (half-open) within the source text
	FileSize    int64
	Vector      []float32 // Embedding vector for semantic search (populated by the pipeline)
	InsertedAt  time.Time // When the chunk was inserted into the database
	UpdatedAt   time.Time // When the chunk was last updated
}

// ContentKey returns the string used for generating the chunk's deterministic ID.
func (c *DocumentChunk) ContentKey() string {
	return fmt.Sprintf("%s#%d", c.SourceFile, c.ChunkIndex)
}

// SearchResult represents a retrieval hit with the full chunk and relevance score.
type SearchResult struct {
	Chunk *DocumentChunk
	Score float32
}
