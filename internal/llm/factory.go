package llm

import (
	"context"
	"fmt"
	"os"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	// APIKey overrides the provider's API key environment variable.
	APIKey string
	// BaseURL overrides the provider endpoint (Ollama host for "ollama").
	BaseURL string
}

// APIKeyEnvVar returns the environment variable holding the API key for a
// provider, or "" when the provider needs none.
func APIKeyEnvVar(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// NewProvider creates a new LLM provider.
// Supported provider types: "google", "anthropic", "openai", "ollama".
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	apiKey := opts.APIKey
	if env := APIKeyEnvVar(opts.Provider); env != "" && apiKey == "" {
		apiKey = os.Getenv(env)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", env)
		}
	}

	switch opts.Provider {
	case "google":
		return NewGeminiProvider(ctx, apiKey, opts.Model, opts.BaseURL)

	case "anthropic":
		return NewAnthropicProvider(apiKey, opts.Model, opts.BaseURL), nil

	case "openai":
		return NewOpenAIProvider(apiKey, opts.Model, opts.BaseURL), nil

	case "ollama":
		host := opts.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllamaProvider(host, opts.Model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}
}
