// Package ingestion provides the document indexing pipeline.
//
// The Pipeline type manages the indexing workflow for documents, including:
//   - Discovering supported files under a directory
//   - Splitting file contents into boundary-aware chunks
//   - Generating embeddings in batches
//   - Upserting chunks into storage
//
// Files are processed concurrently using a worker pool to maximize
// throughput. A file that fails to read or embed is counted and logged but
// does not abort the run.
package ingestion
