package config

// QualityTier selects a model preset: lite trades quality for speed and cost.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle    ProviderType = "google"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// EmbedderType selects how the semantic search index embeds text.
type EmbedderType string

const (
	EmbedderTFIDF  EmbedderType = "tfidf"
	EmbedderGoogle EmbedderType = "google"
	EmbedderOpenAI EmbedderType = "openai"
	EmbedderOllama EmbedderType = "ollama"
)

// Config is the top-level helpdesk configuration, corresponding to .helpdesk.yml.
type Config struct {
	Provider      ProviderType     `yaml:"provider" koanf:"provider"`
	Model         string           `yaml:"model" koanf:"model"`
	Quality       QualityTier      `yaml:"quality" koanf:"quality"`
	Institution   string           `yaml:"institution" koanf:"institution"`
	KnowledgePath string           `yaml:"knowledge_path" koanf:"knowledge_path"`
	DataDir       string           `yaml:"data_dir" koanf:"data_dir"`
	Retrieval     RetrievalConfig  `yaml:"retrieval" koanf:"retrieval"`
	Generation    GenerationConfig `yaml:"generation" koanf:"generation"`
	Search        SearchConfig     `yaml:"search" koanf:"search"`
	Server        ServerConfig     `yaml:"server" koanf:"server"`
	Log           LogConfig        `yaml:"log" koanf:"log"`
}

// RetrievalConfig controls keyword retrieval for the chat pipeline.
type RetrievalConfig struct {
	Limit int `yaml:"limit" koanf:"limit"`
}

// GenerationConfig holds the sampling parameters for the generation call.
type GenerationConfig struct {
	Temperature    float64 `yaml:"temperature" koanf:"temperature"`
	TopK           int     `yaml:"top_k" koanf:"top_k"`
	TopP           float64 `yaml:"top_p" koanf:"top_p"`
	MaxTokens      int     `yaml:"max_tokens" koanf:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RateLimitRPM   int     `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}

// SearchConfig configures the semantic search index.
type SearchConfig struct {
	Embedder       EmbedderType `yaml:"embedder" koanf:"embedder"`
	EmbeddingModel string       `yaml:"embedding_model" koanf:"embedding_model"`
	TopK           int          `yaml:"top_k" koanf:"top_k"`
	Threshold      float64      `yaml:"threshold" koanf:"threshold"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	MaxSessions     int  `yaml:"max_sessions" koanf:"max_sessions"`
}

// LogConfig configures the log file and level. An empty File logs to
// <data_dir>/helpdesk.log.
type LogConfig struct {
	File  string `yaml:"file" koanf:"file"`
	Level string `yaml:"level" koanf:"level"`
}
