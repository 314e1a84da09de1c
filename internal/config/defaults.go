package config

import "path/filepath"

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = ".helpdesk.yml"

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model          string
	EmbeddingModel string
}

var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderGoogle: {
		QualityLite:   {Model: "gemini-2.5-flash-lite", EmbeddingModel: "gemini-embedding-001"},
		QualityNormal: {Model: "gemini-3-flash-preview", EmbeddingModel: "gemini-embedding-001"},
		QualityMax:    {Model: "gemini-2.5-pro", EmbeddingModel: "gemini-embedding-001"},
	},
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929"},
		QualityMax:    {Model: "claude-sonnet-4-5-20250929"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llama3.2", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llama3:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGoogle,
		Model:       "gemini-3-flash-preview",
		Quality:     QualityNormal,
		Institution: "Federal Urdu University of Arts, Science & Technology (FUUAST), Gulshan Campus",
		DataDir:     ".helpdesk",
		Retrieval:   RetrievalConfig{Limit: 3},
		Generation: GenerationConfig{
			Temperature:    0.1,
			TopK:           1,
			TopP:           0.1,
			MaxTokens:      1024,
			TimeoutSeconds: 30,
		},
		Search: SearchConfig{
			Embedder:  EmbedderTFIDF,
			TopK:      3,
			Threshold: 0.1,
		},
		Server: ServerConfig{
			Port:        8080,
			MaxSessions: 256,
		},
		Log: LogConfig{Level: "info"},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the normal Google preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}

// LogFilePath returns the configured log file or the default inside DataDir.
func (c *Config) LogFilePath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "helpdesk.log")
}

// DBPath returns the query log database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "helpdesk.db")
}

// IndexPath returns the persisted semantic index path.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "index.gob.gz")
}
