package embeddings

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGoogleModel is the Gemini embedding model used when none is configured.
const DefaultGoogleModel = "gemini-embedding-001"

// GoogleEmbedder generates embeddings with the Gemini API through the genai SDK.
type GoogleEmbedder struct {
	client *genai.Client
	model  string
}

// NewGoogleEmbedder creates a Gemini embedder. baseURL is empty outside tests.
func NewGoogleEmbedder(ctx context.Context, apiKey, model, baseURL string) (*GoogleEmbedder, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GoogleEmbedder{client: client, model: model}, nil
}

func (e *GoogleEmbedder) Name() string {
	return "google/" + e.model
}

// Dimensions reports the default output size of gemini-embedding-001.
func (e *GoogleEmbedder) Dimensions() int {
	return 3072
}

func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings, expected %d", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}
