package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// DefaultWatchInterval is how often each watched company is reindexed.
const DefaultWatchInterval = 6 * time.Hour

// checkInterval is how often the scheduler looks for due companies.
const checkInterval = time.Minute

// Scheduler reindexes a watchlist of companies on a fixed interval.
// Due times come from the run history, so a restart does not trigger an
// immediate reindex of companies that were refreshed recently.
type Scheduler struct {
	ingest      driving.IngestionService
	runStore    driven.RunStore
	interval    time.Duration
	maxArticles int
	tick        time.Duration
	now         func() time.Time

	mu        sync.Mutex
	companies []string
	lastRun   map[string]time.Time
	inflight  map[string]bool
	running   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewScheduler creates a watchlist scheduler.
// runStore is optional; without it every company is due on start.
func NewScheduler(
	ingest driving.IngestionService,
	runStore driven.RunStore,
	companies []string,
	interval time.Duration,
	maxArticles int,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	s := &Scheduler{
		ingest:      ingest,
		runStore:    runStore,
		interval:    interval,
		maxArticles: maxArticles,
		tick:        checkInterval,
		now:         time.Now,
		lastRun:     make(map[string]time.Time),
		inflight:    make(map[string]bool),
	}
	s.SetCompanies(companies)
	return s
}

// SetCompanies replaces the watchlist. Names are normalised and deduplicated.
func (s *Scheduler) SetCompanies(companies []string) {
	seen := make(map[string]bool, len(companies))
	list := make([]string, 0, len(companies))
	for _, c := range companies {
		name := domain.CollectionName(c)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		list = append(list, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = list
	logger.Info("Watching %d companies", len(list))
}

// Companies returns the current watchlist.
func (s *Scheduler) Companies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.companies...)
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled, and waits for in-flight runs before returning.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	defer s.wg.Wait()

	s.checkAndRunDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDue(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for running ingests.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// checkAndRunDue starts an ingest for every company whose last run is
// older than the interval.
func (s *Scheduler) checkAndRunDue(ctx context.Context) {
	now := s.now()
	for _, company := range s.Companies() {
		if !s.due(ctx, company, now) {
			continue
		}
		s.runCompany(ctx, company)
	}
}

func (s *Scheduler) due(ctx context.Context, company string, now time.Time) bool {
	s.mu.Lock()
	last, known := s.lastRun[company]
	busy := s.inflight[company]
	s.mu.Unlock()

	if busy {
		return false
	}
	if !known && s.runStore != nil {
		run, err := s.runStore.Last(ctx, company)
		switch {
		case err == nil:
			last, known = run.StartedAt, true
			s.mu.Lock()
			s.lastRun[company] = last
			s.mu.Unlock()
		case !errors.Is(err, domain.ErrNotFound):
			logger.Warn("scheduler: last run for %s: %v", company, err)
		}
	}
	return !known || !now.Before(last.Add(s.interval))
}

// runCompany ingests one company in the background.
func (s *Scheduler) runCompany(ctx context.Context, company string) {
	s.mu.Lock()
	s.inflight[company] = true
	s.lastRun[company] = s.now()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, company)
			s.mu.Unlock()
		}()

		run, err := s.ingest.Ingest(ctx, company, s.maxArticles)
		switch {
		case err == nil:
			logger.Info("scheduler: reindexed %s with %d chunks", company, run.ChunksIndexed)
		case errors.Is(err, domain.ErrIngestInProgress):
			logger.Debug("scheduler: %s already ingesting", company)
		default:
			logger.Warn("scheduler: reindex %s: %v", company, err)
		}
	}()
}
