package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// RunHistoryService exposes past ingestion runs.
type RunHistoryService interface {
	// List returns recent runs newest first. An empty company lists all.
	List(ctx context.Context, company string, limit int) ([]domain.IngestRun, error)

	// Get returns one run by ID.
	Get(ctx context.Context, id string) (*domain.IngestRun, error)
}
