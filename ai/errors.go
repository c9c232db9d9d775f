package ai

import "errors"

// Sentinel errors for AI service failures. Implementations wrap these so
// callers can classify failures with errors.Is.
var (
	// ErrEmbedding indicates an embedding request failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates a chat completion request failed.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyResponse indicates the model returned no usable content.
	ErrEmptyResponse = errors.New("empty model response")
)
