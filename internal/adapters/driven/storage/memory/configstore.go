package memory

import (
	"sync"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg domain.Config
}

// NewConfigStore creates a config store holding cfg.
// A nil cfg starts from domain.DefaultConfig().
func NewConfigStore(cfg *domain.Config) *ConfigStore {
	if cfg == nil {
		def := domain.DefaultConfig()
		cfg = &def
	}
	return &ConfigStore{cfg: *cfg}
}

// Load returns a copy of the stored configuration.
func (s *ConfigStore) Load() (*domain.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	return &cfg, nil
}

// Save replaces the stored configuration.
func (s *ConfigStore) Save(cfg *domain.Config) error {
	if cfg == nil {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = *cfg
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
