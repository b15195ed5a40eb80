package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, company, state, started_at, ended_at,
	articles_fetched, articles_screened, articles_scraped, articles_usable, chunks_indexed, error`

// Save stores or updates a run.
func (s *runStore) Save(ctx context.Context, run *domain.IngestRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidArgument
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company = excluded.company,
			state = excluded.state,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			articles_fetched = excluded.articles_fetched,
			articles_screened = excluded.articles_screened,
			articles_scraped = excluded.articles_scraped,
			articles_usable = excluded.articles_usable,
			chunks_indexed = excluded.chunks_indexed,
			error = excluded.error
	`, run.ID, run.Company, string(run.State),
		formatTime(run.StartedAt), formatNullableTime(run.EndedAt),
		run.ArticlesFetched, run.ArticlesScreened, run.ArticlesScraped, run.ArticlesUsable,
		run.ChunksIndexed, nullString(run.Error))
	if err != nil {
		return fmt.Errorf("saving ingest run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.IngestRun, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM ingest_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs newest first, optionally for a single company.
func (s *runStore) List(ctx context.Context, company string, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if company = domain.CollectionName(company); company == "" {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT `+runColumns+` FROM ingest_runs
			ORDER BY started_at DESC, id DESC
			LIMIT ?
		`, limit)
	} else {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT `+runColumns+` FROM ingest_runs
			WHERE company = ?
			ORDER BY started_at DESC, id DESC
			LIMIT ?
		`, company, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest runs: %w", err)
	}

	return runs, nil
}

// Last returns the most recent run for a company.
func (s *runStore) Last(ctx context.Context, company string) (*domain.IngestRun, error) {
	if domain.CollectionName(company) == "" {
		return nil, domain.ErrInvalidArgument
	}
	runs, err := s.List(ctx, company, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &runs[0], nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.IngestRun, error) {
	var run domain.IngestRun
	var state, startedAt string
	var endedAt, errMsg sql.NullString

	if err := row.Scan(&run.ID, &run.Company, &state, &startedAt, &endedAt,
		&run.ArticlesFetched, &run.ArticlesScreened, &run.ArticlesScraped, &run.ArticlesUsable,
		&run.ChunksIndexed, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning ingest run: %w", err)
	}

	run.State = domain.RunState(state)
	run.StartedAt = parseTime(startedAt)
	run.EndedAt = parseNullableTime(endedAt)
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return &run, nil
}
