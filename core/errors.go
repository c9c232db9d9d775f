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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a DocumentChunk failed validation.
	ErrInvalidChunk = errors.New("invalid document chunk")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptySourceFile indicates the SourceFile field is empty.
	ErrEmptySourceFile = errors.New("source file cannot be empty")

	// ErrInvalidFileType indicates an invalid FileType value.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrInvalidChunkIndex indicates a negative chunk index or an index
	// outside the declared total.
	ErrInvalidChunkIndex = errors.New("invalid chunk index")

	// ErrInvalidOffsets indicates StartOffset/EndOffset do not form a
	// half-open range.
	ErrInvalidOffsets = errors.New("invalid chunk offsets")
)
