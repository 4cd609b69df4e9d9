package gemini

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockDimension is the size of vectors produced by MockConnector
const MockDimension = 256

// MockConnector works offline: embeddings are hashed bags of words and
// answers are the context sentence sharing the most words with the question.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) EmbeddingModel() string {
	return "mock-hash-256"
}

func (m *MockConnector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding documents", zap.Int("count", len(texts)))

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashEmbed(text)
	}
	return vectors, nil
}

func (m *MockConnector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding query")
	return hashEmbed(text), nil
}

func (m *MockConnector) Generate(ctx context.Context, prompt string, _ entity.GenerateOptions) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating answer")

	docs, question := splitPrompt(prompt)
	want := tokenSet(question)

	best, bestScore := "", 0
	for _, sentence := range sentences(docs) {
		score := 0
		for tok := range tokenSet(sentence) {
			if want[tok] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = sentence, score
		}
	}

	if best == "" {
		return "I don't know.", nil
	}
	return "According to the documents: " + best, nil
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, MockDimension)
	for _, tok := range tokens(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%MockDimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// keep the vector usable for cosine similarity
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokens(text) {
		set[tok] = true
	}
	return set
}

func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n' || r == '?' || r == '!'
	})

	out := parts[:0]
	for _, p := range parts {
		p = strings.Trim(p, " -\t()")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitPrompt separates the retrieved context from the question of a stuffed prompt.
// The instruction paragraph before the first blank line is dropped.
func splitPrompt(prompt string) (string, string) {
	idx := strings.LastIndex(prompt, "Question:")
	if idx < 0 {
		return prompt, prompt
	}

	question := prompt[idx+len("Question:"):]
	if end := strings.Index(question, "\n"); end >= 0 {
		question = question[:end]
	}

	docs := prompt[:idx]
	if start := strings.Index(docs, "\n\n"); start >= 0 {
		docs = docs[start+2:]
	}
	return docs, question
}
