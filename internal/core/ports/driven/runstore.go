package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// RunStore persists ingestion run history.
type RunStore interface {
	// Save stores or updates a run by ID.
	Save(ctx context.Context, run *domain.IngestRun) error

	// Get retrieves a run by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.IngestRun, error)

	// List returns runs newest first. An empty company lists all companies.
	// limit <= 0 means no limit.
	List(ctx context.Context, company string, limit int) ([]domain.IngestRun, error)

	// Last returns the most recent run for a company.
	// Returns domain.ErrNotFound if the company has never been ingested.
	Last(ctx context.Context, company string) (*domain.IngestRun, error)
}
