package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// RetrievalService provides filtered similarity search to external actors.
type RetrievalService interface {
	// Search returns up to k chunks from the company's collection that are
	// tagged for that company, most similar first.
	Search(ctx context.Context, company, query string, k int) ([]domain.ScoredChunk, error)

	// Collections lists every stored collection.
	Collections(ctx context.Context) ([]domain.CollectionInfo, error)
}
