package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ensure RunHistoryService implements the interface.
var _ driving.RunHistoryService = (*RunHistoryService)(nil)

// DefaultRunLimit bounds run listings when the caller gives no limit.
const DefaultRunLimit = 20

// RunHistoryService reads recorded ingestion runs.
type RunHistoryService struct {
	store driven.RunStore
}

// NewRunHistoryService creates a run history service.
func NewRunHistoryService(store driven.RunStore) *RunHistoryService {
	return &RunHistoryService{store: store}
}

// List returns recent runs newest first.
func (s *RunHistoryService) List(ctx context.Context, company string, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	runs, err := s.store.List(ctx, domain.CollectionName(company), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns a run by ID.
func (s *RunHistoryService) Get(ctx context.Context, id string) (*domain.IngestRun, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty run id", domain.ErrInvalidArgument)
	}
	run, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}
