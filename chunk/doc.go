// Package chunk splits document text into overlapping segments suitable
// for embedding.
//
// The Splitter prefers natural language boundaries over hard cuts: it
// searches backward from the tentative cut point for a sentence terminator,
// then a paragraph break, then any newline, and only falls back to a hard
// cut when none is found. Consecutive segments overlap by a configurable
// amount to preserve cross-boundary context for retrieval.
//
// A Splitter holds only immutable configuration and is safe for concurrent
// use.
package chunk
