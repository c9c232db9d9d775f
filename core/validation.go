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


package core

import "fmt"

// ValidateDocumentChunk validates a DocumentChunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SourceFile must not be empty
//   - FileType must be valid
//   - ChunkIndex must be non-negative and less than TotalChunks when
//     TotalChunks is set
//   - StartOffset/EndOffset must form a half-open range
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding step runs)
//   - ID (0 is valid until content addressing assigns one)
func ValidateDocumentChunk(chunk *DocumentChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.SourceFile == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceFile)
	}

	if err := ValidateFileType(chunk.FileType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if chunk.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w: index %d", ErrInvalidChunk, ErrInvalidChunkIndex, chunk.ChunkIndex)
	}
	if chunk.TotalChunks > 0 && chunk.ChunkIndex >= chunk.TotalChunks {
		return fmt.Errorf("%w: %w: index %d of %d", ErrInvalidChunk, ErrInvalidChunkIndex, chunk.ChunkIndex, chunk.TotalChunks)
	}

	if chunk.StartOffset < 0 || chunk.EndOffset < chunk.StartOffset {
		return fmt.Errorf("%w: %w: [%d, %d)", ErrInvalidChunk, ErrInvalidOffsets, chunk.StartOffset, chunk.EndOffset)
	}

	return nil
}

// ValidateFileType validates that a FileType has a valid value.
func ValidateFileType(ft FileType) error {
	if ft < FileTypeText || ft > FileTypeOther {
		return fmt.Errorf("%w: value %d", ErrInvalidFileType, ft)
	}
	return nil
}
