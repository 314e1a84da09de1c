package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ziadkadry99/helpdesk/internal/llm"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaEmbedder embeds knowledge entries with a local Ollama model.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// NewOllamaEmbedder creates an Ollama embedder. dimensions is a hint; it is
// replaced by the length of the first vector Ollama returns.
func NewOllamaEmbedder(model string, dimensions int, baseURL string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{},
	}
}

func (e *OllamaEmbedder) Name() string { return "ollama/" + e.model }

func (e *OllamaEmbedder) Dimensions() int { return e.dimensions }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed sends all texts in one /api/embed call.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out ollamaEmbedResponse
	in := ollamaEmbedRequest{Model: e.model, Input: texts}
	if err := llm.PostJSON(ctx, e.client, "ollama", e.baseURL+"/api/embed", nil, in, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(out.Embeddings), len(texts))
	}
	if n := len(out.Embeddings[0]); n > 0 {
		e.dimensions = n
	}
	return out.Embeddings, nil
}
