// Package memory provides in-memory implementations of the driven ports.
// They back tests and dry runs; nothing survives the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/vectorset"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Create swaps the whole collection under the lock, so readers see either
// the old or the new version.
type IndexStore struct {
	mu          sync.RWMutex
	embedder    driven.EmbeddingService
	collections map[string]*vectorset.Set
}

// NewIndexStore creates an empty index store that embeds with embedder.
func NewIndexStore(embedder driven.EmbeddingService) *IndexStore {
	return &IndexStore{
		embedder:    embedder,
		collections: make(map[string]*vectorset.Set),
	}
}

// Create embeds chunks and replaces any prior collection with the same name.
func (s *IndexStore) Create(ctx context.Context, name string, chunks []domain.Chunk) (*domain.CollectionInfo, error) {
	set, err := vectorset.Build(ctx, s.embedder, name, chunks)
	if err != nil {
		return nil, err
	}

	info := set.Info()
	s.mu.Lock()
	s.collections[info.Name] = set
	s.mu.Unlock()

	return &info, nil
}

// Load returns the current snapshot of a collection.
func (s *IndexStore) Load(_ context.Context, name string) (driven.Collection, error) {
	canonical, err := vectorset.ValidateName(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	set, ok := s.collections[canonical]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrIndexNotFound
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if err := vectorset.CheckEmbedder(set.Info(), s.embedder.ModelName(), s.embedder.Dimensions()); err != nil {
		return nil, err
	}
	return set, nil
}

// List returns every collection sorted by name.
func (s *IndexStore) List(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(s.collections))
	for _, set := range s.collections {
		infos = append(infos, set.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close is a no-op.
func (s *IndexStore) Close() error {
	return nil
}
