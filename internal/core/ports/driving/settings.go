package driving

import "github.com/custodia-labs/dossier/internal/core/domain"

// SettingsService manages the application configuration file.
type SettingsService interface {
	// Get returns the effective configuration: defaults, file, then env.
	Get() (*domain.Config, error)

	// Save validates and persists the configuration.
	Save(cfg *domain.Config) error

	// Path returns the configuration file location.
	Path() string

	// SetEmbeddingProvider switches the embedding provider, filling in the
	// provider's default model when model is empty.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the configuration and reports missing credentials.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Config

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured chat endpoint.
	ValidateLLMConfig() error
}
