package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// IndexStore persists embedded chunks in named collections, one per company.
// Collection names are lowercased company names.
type IndexStore interface {
	// Create embeds chunks and writes them as the named collection,
	// fully replacing any previous version. The replacement is atomic:
	// readers see either the old or the new collection, never a mix.
	// Returns domain.ErrEmptyInput for no chunks and
	// domain.ErrCollectionMismatch if a chunk's company differs from name.
	Create(ctx context.Context, name string, chunks []domain.Chunk) (*domain.CollectionInfo, error)

	// Load opens the named collection for searching.
	// Returns domain.ErrIndexNotFound if it does not exist.
	Load(ctx context.Context, name string) (Collection, error)

	// List returns information about every stored collection.
	List(ctx context.Context) ([]domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}

// Collection is a loaded, searchable snapshot of one named collection.
type Collection interface {
	// Info returns the collection summary.
	Info() domain.CollectionInfo

	// Search embeds the query and returns up to k entries passing filter,
	// ordered by descending cosine similarity. Ties keep insertion order.
	// Returns domain.ErrInvalidArgument if k <= 0.
	Search(ctx context.Context, query string, k int, filter domain.Filter) ([]domain.ScoredChunk, error)
}
