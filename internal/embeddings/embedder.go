package embeddings

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// Fitter is implemented by embedders that derive their vector space from
// the corpus they will search, such as TF-IDF.
type Fitter interface {
	Fit(corpus []string) error
}

// ErrNotFitted is returned when a corpus-derived embedder is used before Fit.
var ErrNotFitted = errors.New("embedder has not been fitted to a corpus")

// Options selects and configures an embedder.
type Options struct {
	// Kind is one of "tfidf", "google", "openai", "ollama".
	Kind    string
	Model   string
	APIKey  string
	BaseURL string
}

var apiKeyEnv = map[string]string{
	"google": "GOOGLE_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// New creates the embedder described by opts.
func New(ctx context.Context, opts Options) (Embedder, error) {
	apiKey := opts.APIKey
	if env, ok := apiKeyEnv[opts.Kind]; ok && apiKey == "" {
		if apiKey = os.Getenv(env); apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", env)
		}
	}

	switch opts.Kind {
	case "", "tfidf":
		return NewTFIDF(), nil
	case "google":
		model := opts.Model
		if model == "" {
			model = DefaultGoogleModel
		}
		return NewGoogleEmbedder(ctx, apiKey, model, opts.BaseURL)
	case "openai":
		model := OpenAIModel(opts.Model)
		if model == "" {
			model = ModelTextEmbedding3Small
		}
		return NewOpenAIEmbedder(apiKey, model, opts.BaseURL), nil
	case "ollama":
		model := opts.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaEmbedder(model, 768, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedder: %s", opts.Kind)
	}
}
