package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultFileName is the config file created under the config directory.
const DefaultFileName = "config.toml"

// Environment variables that override file values when set.
const (
	EnvNewsAPIKey   = "NEWS_API_KEY"
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvDataDir      = "DOSSIER_DATA_DIR"
)

// ConfigStore reads and writes domain.Config as TOML, or YAML when the
// path ends in .yaml or .yml.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	getenv   func(string) string
}

// NewConfigStore creates a config store for path.
// If path is empty, defaults to ~/.dossier/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".dossier", DefaultFileName)
	}

	return &ConfigStore{
		filePath: path,
		getenv:   os.Getenv,
	}, nil
}

// Load returns the default config overlaid with the file (if present) and
// then with environment overrides.
func (s *ConfigStore) Load() (*domain.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file yet; defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := s.decode(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	}

	ApplyEnv(&cfg, s.getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", s.filePath, err)
	}
	return &cfg, nil
}

// Save writes cfg to the file with owner-only permissions.
func (s *ConfigStore) Save(cfg *domain.Config) error {
	if cfg == nil {
		return domain.ErrInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.encode(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Exists reports whether the config file is present.
func (s *ConfigStore) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

func (s *ConfigStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.filePath))
	return ext == ".yaml" || ext == ".yml"
}

func (s *ConfigStore) decode(data []byte, cfg *domain.Config) error {
	if s.isYAML() {
		return yaml.Unmarshal(data, cfg)
	}
	return toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
}

func (s *ConfigStore) encode(cfg *domain.Config) ([]byte, error) {
	if s.isYAML() {
		return yaml.Marshal(cfg)
	}
	return toml.Marshal(cfg)
}

// ApplyEnv copies non-empty environment overrides into cfg.
func ApplyEnv(cfg *domain.Config, getenv func(string) string) {
	if v := getenv(EnvNewsAPIKey); v != "" {
		cfg.News.APIKey = v
	}
	if v := getenv(EnvGroqAPIKey); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := getenv(EnvOpenAIAPIKey); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := getenv(EnvDataDir); v != "" {
		cfg.Storage.DataDir = v
	}
}
