// Package query provides retrieval and answer synthesis over indexed
// documents.
//
// The Engine type embeds a query, retrieves the most similar stored chunks,
// and either returns them directly, synthesizes an answer from them with a
// chat model, or runs verbatim extraction over them.
package query
