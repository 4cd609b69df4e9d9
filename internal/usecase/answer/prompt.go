package answer

import (
	"strings"

	"github.com/futig/docqa-bot/internal/entity"
)

const promptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

{context}

Question: {question}
Helpful Answer:`

// BuildPrompt stuffs the retrieved chunks, in retrieval order, into the answer template
func BuildPrompt(question string, results []entity.SearchResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}

	return strings.NewReplacer(
		"{context}", strings.Join(texts, "\n\n"),
		"{question}", question,
	).Replace(promptTemplate)
}
