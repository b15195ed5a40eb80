package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// IngestionService rebuilds a company's news index.
type IngestionService interface {
	// Ingest fetches, scrapes, chunks and indexes up to maxArticles articles.
	// maxArticles <= 0 uses the configured default.
	// Returns the finished run and domain.ErrNoUsableArticles if nothing
	// survived filtering, in which case no index is written.
	Ingest(ctx context.Context, company string, maxArticles int) (*domain.IngestRun, error)

	// Status returns a snapshot of the active run for a company,
	// or nil if none is active.
	Status(ctx context.Context, company string) (*domain.IngestRun, error)
}
