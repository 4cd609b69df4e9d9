package entity

// Gemini REST payloads (generativelanguage.googleapis.com/v1beta)

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  GeminiContent `json:"content"`
	TaskType EmbeddingTask `json:"taskType,omitempty"`
}

type GeminiBatchEmbedRequest struct {
	Requests []GeminiEmbedRequest `json:"requests"`
}

type GeminiEmbedding struct {
	Values []float32 `json:"values"`
}

type GeminiBatchEmbedResponse struct {
	Embeddings []GeminiEmbedding `json:"embeddings"`
}

type GeminiGenerationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type GeminiGenerateRequest struct {
	Contents         []GeminiContent         `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type GeminiGenerateResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// Text joins the parts of the first candidate.
func (r *GeminiGenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}
