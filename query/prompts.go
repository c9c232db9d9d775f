package query

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/verbata/core"
)

// answerSystemPrompt instructs the chat model to answer strictly from the
// retrieved context.
const answerSystemPrompt = `You are an expert assistant that provides comprehensive, accurate answers based on the provided context documents.

Instructions:
1. Use ONLY information from the provided context documents
2. Provide detailed, well-structured answers
3. When referencing information, cite the document number and source file
4. If the context doesn't contain enough information, clearly state this limitation
5. Synthesize information from multiple sources when relevant
6. Maintain a professional, informative tone
7. If you find contradictory information, acknowledge and explain the discrepancies`

// noAnswerResponse is returned without calling the model when retrieval
// finds nothing.
const noAnswerResponse = "I couldn't find any relevant information in the knowledge base to answer your question."

// buildContext renders retrieval hits as numbered context documents with
// source attribution. Hits with blank text are skipped.
func buildContext(hits []*core.SearchResult) string {
	parts := make([]string, 0, len(hits))
	validDocs := 0

	for _, hit := range hits {
		if strings.TrimSpace(hit.Chunk.Text) == "" {
			continue
		}
		validDocs++
		sourceInfo := fmt.Sprintf("[Source: %s]", filepath.Base(hit.Chunk.SourceFile))
		parts = append(parts, fmt.Sprintf("Document %d %s (Relevance: %.3f):\n%s",
			validDocs, sourceInfo, hit.Score, hit.Chunk.Text))
	}

	return strings.Join(parts, "\n\n")
}

// buildUserPrompt combines the context documents and the query.
func buildUserPrompt(query, context string) string {
	return fmt.Sprintf(`Context Documents:

%s

Query: %s

Please provide a comprehensive answer based on the context documents above. Remember to cite specific documents and source files when referencing information.`, context, query)
}
