package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Missing credential errors reported by Validate.
var (
	ErrMissingNewsKey      = errors.New("news api key not set (NEWS_API_KEY)")
	ErrMissingLLMKey       = errors.New("chat api key not set (GROQ_API_KEY)")
	ErrMissingEmbeddingKey = errors.New("embedding api key not set (OPENAI_API_KEY)")
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator is optional; without it the Validate*Config methods are no-ops.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Config, error) {
	cfg, err := s.configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Save persists application settings.
func (s *SettingsService) Save(cfg *domain.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", domain.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		names := make([]string, 0, 3)
		for _, p := range domain.AllEmbeddingProviders() {
			names = append(names, string(p))
		}
		return fmt.Errorf("%w: invalid embedding provider %q (want one of %s)",
			domain.ErrInvalidArgument, provider, strings.Join(names, ", "))
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidArgument, provider)
	}

	cfg, err := s.Get()
	if err != nil {
		return err
	}

	cfg.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		cfg.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		cfg.Embedding.Model = defaultModel
	}

	if provider == domain.AIProviderOllama && cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if provider != domain.AIProviderOllama {
		cfg.Embedding.BaseURL = ""
	}

	cfg.Embedding.APIKey = apiKey

	return s.Save(cfg)
}

// Validate checks the configuration and that every credential the
// pipeline needs is present. All missing credentials are reported together.
func (s *SettingsService) Validate() error {
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var errs []error
	if cfg.News.APIKey == "" {
		errs = append(errs, ErrMissingNewsKey)
	}
	if !cfg.LLM.IsConfigured() {
		errs = append(errs, ErrMissingLLMKey)
	}
	if !cfg.Embedding.IsConfigured() {
		errs = append(errs, ErrMissingEmbeddingKey)
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Config {
	return domain.DefaultConfig()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&cfg.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&cfg.LLM)
}
