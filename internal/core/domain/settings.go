package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is any OpenAI-compatible cloud API (OpenAI, Groq).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderHash is the deterministic offline embedder.
	// It needs no network and is meant for tests and air-gapped demos.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderHash:
		return "Hash (offline, deterministic)"
	default:
		return unknownDescription
	}
}

// Duration is a time.Duration that reads and writes as "15s" in config files.
type Duration time.Duration

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %w", ErrInvalidArgument, text, err)
	}
	*d = Duration(parsed)
	return nil
}

// NewsSettings configures the news search API.
type NewsSettings struct {
	APIKey   string   `toml:"api_key" yaml:"api_key"`
	BaseURL  string   `toml:"base_url" yaml:"base_url"`
	Language string   `toml:"language" yaml:"language"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`

	// RequestsPerSecond bounds calls to the API. Zero disables limiting.
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// ScrapeSettings configures article page downloads.
type ScrapeSettings struct {
	UserAgent string   `toml:"user_agent" yaml:"user_agent"`
	Timeout   Duration `toml:"timeout" yaml:"timeout"`

	// MinParagraphChars drops paragraphs at or below this length.
	MinParagraphChars int `toml:"min_paragraph_chars" yaml:"min_paragraph_chars"`

	// MaxBodyBytes caps how much of a page is read.
	MaxBodyBytes int64 `toml:"max_body_bytes" yaml:"max_body_bytes"`

	// RequestsPerSecond bounds page downloads. Zero disables limiting.
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`

	// Workers is the number of pages downloaded concurrently.
	Workers int `toml:"workers" yaml:"workers"`
}

// IngestSettings configures the ingestion pipeline.
type IngestSettings struct {
	ChunkSize    int `toml:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap" yaml:"chunk_overlap"`

	// MinArticleChars drops articles whose cleaned text is shorter.
	MinArticleChars int `toml:"min_article_chars" yaml:"min_article_chars"`

	// MaxArticles is the default fetch size when a caller gives none.
	MaxArticles int `toml:"max_articles" yaml:"max_articles"`

	// BlockedHosts are glob patterns (e.g. "*.paywalled.example") whose
	// articles are never scraped.
	BlockedHosts []string `toml:"blocked_hosts" yaml:"blocked_hosts"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider   AIProvider `toml:"provider" yaml:"provider"`
	Model      string     `toml:"model" yaml:"model"`
	BaseURL    string     `toml:"base_url" yaml:"base_url"`
	APIKey     string     `toml:"api_key" yaml:"api_key"`
	Dimensions int        `toml:"dimensions" yaml:"dimensions"`
	Timeout    Duration   `toml:"timeout" yaml:"timeout"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds chat completion configuration.
// Sampling temperature is fixed by the answer service and not configurable.
type LLMSettings struct {
	Model     string   `toml:"model" yaml:"model"`
	BaseURL   string   `toml:"base_url" yaml:"base_url"`
	APIKey    string   `toml:"api_key" yaml:"api_key"`
	MaxTokens int      `toml:"max_tokens" yaml:"max_tokens"`
	Timeout   Duration `toml:"timeout" yaml:"timeout"`
}

// IsConfigured returns true if the chat endpoint can be called.
func (l LLMSettings) IsConfigured() bool {
	return l.APIKey != "" && l.Model != ""
}

// InfoSettings configures the informational panels.
type InfoSettings struct {
	WikipediaBaseURL string   `toml:"wikipedia_base_url" yaml:"wikipedia_base_url"`
	StockBaseURL     string   `toml:"stock_base_url" yaml:"stock_base_url"`
	UserAgent        string   `toml:"user_agent" yaml:"user_agent"`
	Timeout          Duration `toml:"timeout" yaml:"timeout"`

	// CacheTTL is how long panel data is served from cache. Zero disables caching.
	CacheTTL Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// WatchSettings configures periodic reindexing of a company watchlist.
type WatchSettings struct {
	Companies []string `toml:"companies" yaml:"companies"`
	Interval  Duration `toml:"interval" yaml:"interval"`
}

// StorageSettings configures where data lives on disk.
type StorageSettings struct {
	// DataDir holds indexes, run history and caches.
	DataDir string `toml:"data_dir" yaml:"data_dir"`
}

// Config holds every application setting.
// It is built once at startup and passed to constructors.
type Config struct {
	News      NewsSettings      `toml:"news" yaml:"news"`
	Scrape    ScrapeSettings    `toml:"scrape" yaml:"scrape"`
	Ingest    IngestSettings    `toml:"ingest" yaml:"ingest"`
	Embedding EmbeddingSettings `toml:"embedding" yaml:"embedding"`
	LLM       LLMSettings       `toml:"llm" yaml:"llm"`
	Info      InfoSettings      `toml:"info" yaml:"info"`
	Watch     WatchSettings     `toml:"watch" yaml:"watch"`
	Storage   StorageSettings   `toml:"storage" yaml:"storage"`
}

// DefaultUserAgent is a browser-like identity for article downloads.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DefaultInfoUserAgent identifies the client to the encyclopedia API.
const DefaultInfoUserAgent = "CompanyIntelligenceBot/1.0 (contact@example.com)"

// DefaultConfig returns settings with sensible defaults.
// API keys are left empty; they come from the config file or environment.
func DefaultConfig() Config {
	return Config{
		News: NewsSettings{
			BaseURL:           "https://newsapi.org",
			Language:          "en",
			Timeout:           Duration(15 * time.Second),
			RequestsPerSecond: 1,
		},
		Scrape: ScrapeSettings{
			UserAgent:         DefaultUserAgent,
			Timeout:           Duration(15 * time.Second),
			MinParagraphChars: 40,
			MaxBodyBytes:      5 * 1024 * 1024,
			RequestsPerSecond: 4,
			Workers:           4,
		},
		Ingest: IngestSettings{
			ChunkSize:       1100,
			ChunkOverlap:    200,
			MinArticleChars: 300,
			MaxArticles:     DefaultMaxArticles,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-small",
			Timeout:  Duration(30 * time.Second),
		},
		LLM: LLMSettings{
			Model:     "llama3-70b-8192",
			BaseURL:   "https://api.groq.com/openai/v1",
			MaxTokens: 700,
			Timeout:   Duration(60 * time.Second),
		},
		Info: InfoSettings{
			WikipediaBaseURL: "https://en.wikipedia.org",
			StockBaseURL:     "https://query1.finance.yahoo.com",
			UserAgent:        DefaultInfoUserAgent,
			Timeout:          Duration(10 * time.Second),
			CacheTTL:         Duration(30 * time.Minute),
		},
		Watch: WatchSettings{
			Interval: Duration(6 * time.Hour),
		},
	}
}

// Validate checks settings that would otherwise fail deep in the pipeline.
func (c Config) Validate() error {
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("%w: ingest.chunk_size must be positive", ErrInvalidArgument)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("%w: ingest.chunk_overlap must be in [0, chunk_size)", ErrInvalidArgument)
	}
	if c.Embedding.Provider != "" && !c.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidArgument, c.Embedding.Provider)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderHash,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
		AIProviderHash:   "hash-256",
	}
}
