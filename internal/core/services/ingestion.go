package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultMinArticleChars is the shortest cleaned article text that is indexed.
const DefaultMinArticleChars = 300

// DefaultScrapeWorkers is the number of pages scraped concurrently.
const DefaultScrapeWorkers = 4

// IngestionService rebuilds a company's collection from fresh news.
type IngestionService struct {
	fetcher    driven.ArticleFetcher
	scraper    driven.Scraper
	normaliser driven.Normaliser
	splitter   driven.Splitter
	indexStore driven.IndexStore
	runStore   driven.RunStore

	minChars     int
	maxArticles  int
	blockedHosts []string
	workers      int

	now   func() time.Time
	newID func() string

	// Active runs keyed by collection name.
	mu     sync.RWMutex
	active map[string]*domain.IngestRun
}

// NewIngestionService creates an ingestion orchestrator.
// runStore is optional; when nil, runs are not recorded.
// Blocked host patterns are validated here so a bad glob fails at startup.
func NewIngestionService(
	fetcher driven.ArticleFetcher,
	scraper driven.Scraper,
	normaliser driven.Normaliser,
	splitter driven.Splitter,
	indexStore driven.IndexStore,
	runStore driven.RunStore,
	settings domain.IngestSettings,
	workers int,
) (*IngestionService, error) {
	for _, pattern := range settings.BlockedHosts {
		if !doublestar.ValidatePattern(strings.ToLower(pattern)) {
			return nil, fmt.Errorf("%w: blocked host pattern %q", domain.ErrInvalidArgument, pattern)
		}
	}

	s := &IngestionService{
		fetcher:      fetcher,
		scraper:      scraper,
		normaliser:   normaliser,
		splitter:     splitter,
		indexStore:   indexStore,
		runStore:     runStore,
		minChars:     settings.MinArticleChars,
		maxArticles:  settings.MaxArticles,
		blockedHosts: settings.BlockedHosts,
		workers:      workers,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
		active:       make(map[string]*domain.IngestRun),
	}
	if s.minChars <= 0 {
		s.minChars = DefaultMinArticleChars
	}
	if s.maxArticles <= 0 {
		s.maxArticles = domain.DefaultMaxArticles
	}
	if s.workers <= 0 {
		s.workers = DefaultScrapeWorkers
	}
	return s, nil
}

// Ingest runs the pipeline for one company. The returned run is always
// non-nil once the company name is valid, including on failure.
func (s *IngestionService) Ingest(ctx context.Context, company string, maxArticles int) (*domain.IngestRun, error) {
	name := domain.CollectionName(company)
	if name == "" {
		return nil, fmt.Errorf("%w: empty company name", domain.ErrInvalidArgument)
	}
	if maxArticles <= 0 {
		maxArticles = s.maxArticles
	}

	run, err := s.begin(name)
	if err != nil {
		return nil, err
	}
	defer s.end(name)

	logger.Section("Ingest " + name)
	s.record(ctx, run)

	// 1. Fetch
	s.transition(ctx, run, domain.RunFetching)
	articles, err := s.fetcher.Fetch(ctx, strings.TrimSpace(company), maxArticles)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("fetch articles: %w", err))
	}
	s.update(run, func(r *domain.IngestRun) { r.ArticlesFetched = len(articles) })
	logger.Info("Fetched %d articles for %s", len(articles), name)

	// 2. Scrape
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, run, err)
	}
	s.transition(ctx, run, domain.RunScraping)
	targets := s.screen(articles)
	s.update(run, func(r *domain.IngestRun) { r.ArticlesScreened = len(targets) })
	texts, err := s.scrapeAll(ctx, run, targets)
	if err != nil {
		return s.fail(ctx, run, err)
	}

	// 3. Filter
	s.transition(ctx, run, domain.RunFiltering)
	type usable struct {
		article domain.Article
		text    string
	}
	kept := make([]usable, 0, len(targets))
	for i, a := range targets {
		text := s.normaliser.Normalise(texts[i])
		if n := utf8.RuneCountInString(text); n < s.minChars {
			logger.Debug("Dropping %s: %d chars", a.URL, n)
			continue
		}
		kept = append(kept, usable{article: a, text: text})
	}
	s.update(run, func(r *domain.IngestRun) { r.ArticlesUsable = len(kept) })

	// 4. Chunk
	s.transition(ctx, run, domain.RunChunking)
	var chunks []domain.Chunk
	for _, u := range kept {
		chunks = append(chunks, s.splitter.Split(u.text, u.article.Metadata(name))...)
	}
	if len(chunks) == 0 {
		return s.fail(ctx, run, fmt.Errorf("%w: %s", domain.ErrNoUsableArticles, name))
	}

	// 5. Write
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, run, err)
	}
	s.transition(ctx, run, domain.RunWriting)
	info, err := s.indexStore.Create(ctx, name, chunks)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("write collection: %w", err))
	}

	s.update(run, func(r *domain.IngestRun) {
		r.ChunksIndexed = info.ChunkCount
		r.State = domain.RunSucceeded
		r.EndedAt = s.now().UTC()
	})
	s.record(ctx, run)

	logger.Info("Indexed %d chunks from %d articles for %s", info.ChunkCount, len(kept), name)
	return s.snapshot(run), nil
}

// Status returns a copy of the active run for a company, or nil.
func (s *IngestionService) Status(_ context.Context, company string) (*domain.IngestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.active[domain.CollectionName(company)]
	if !ok {
		return nil, nil
	}
	runCopy := *run
	return &runCopy, nil
}

// begin registers a new run, refusing a second concurrent run per company.
func (s *IngestionService) begin(name string) (*domain.IngestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[name]; busy {
		return nil, fmt.Errorf("%w: %s", domain.ErrIngestInProgress, name)
	}
	run := &domain.IngestRun{
		ID:        s.newID(),
		Company:   name,
		State:     domain.RunPending,
		StartedAt: s.now().UTC(),
	}
	s.active[name] = run
	return run, nil
}

func (s *IngestionService) end(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, name)
}

// update mutates a run under the lock so Status sees consistent snapshots.
func (s *IngestionService) update(run *domain.IngestRun, fn func(*domain.IngestRun)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(run)
}

func (s *IngestionService) snapshot(run *domain.IngestRun) *domain.IngestRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runCopy := *run
	return &runCopy
}

func (s *IngestionService) transition(ctx context.Context, run *domain.IngestRun, state domain.RunState) {
	s.update(run, func(r *domain.IngestRun) { r.State = state })
	logger.Debug("Run %s: %s", run.ID, state)
	s.record(ctx, run)
}

func (s *IngestionService) fail(ctx context.Context, run *domain.IngestRun, err error) (*domain.IngestRun, error) {
	s.update(run, func(r *domain.IngestRun) {
		r.State = domain.RunFailed
		r.Error = err.Error()
		r.EndedAt = s.now().UTC()
	})
	// Record even when the run was cancelled.
	s.record(context.WithoutCancel(ctx), run)
	logger.Warn("Ingest %s failed: %v", run.Company, err)
	return s.snapshot(run), err
}

// record saves the run. History is best effort and never fails a run.
func (s *IngestionService) record(ctx context.Context, run *domain.IngestRun) {
	if s.runStore == nil {
		return
	}
	if err := s.runStore.Save(ctx, s.snapshot(run)); err != nil {
		logger.Warn("Failed to record run %s: %v", run.ID, err)
	}
}

// screen drops articles that must not be scraped: empty or duplicate URLs
// and blocked hosts. Order is preserved.
func (s *IngestionService) screen(articles []domain.Article) []domain.Article {
	seen := make(map[string]bool, len(articles))
	targets := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		u := strings.TrimSpace(a.URL)
		switch {
		case u == "":
			logger.Debug("Dropping article without URL: %q", a.Title)
			continue
		case seen[u]:
			logger.Debug("Dropping duplicate %s", u)
			continue
		case s.blocked(u):
			logger.Debug("Dropping blocked host %s", u)
			continue
		}
		seen[u] = true
		a.URL = u
		targets = append(targets, a)
	}
	return targets
}

// blocked reports whether the URL's host matches a blocked pattern.
// Unparseable URLs count as blocked.
func (s *IngestionService) blocked(rawURL string) bool {
	if len(s.blockedHosts) == 0 {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return true
	}
	host := strings.ToLower(parsed.Hostname())
	for _, pattern := range s.blockedHosts {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), host); ok {
			return true
		}
	}
	return false
}

// scrapeAll scrapes every target with a bounded pool. texts[i] belongs to
// targets[i] regardless of completion order.
func (s *IngestionService) scrapeAll(
	ctx context.Context,
	run *domain.IngestRun,
	targets []domain.Article,
) ([]string, error) {
	texts := make([]string, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, a := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i] = s.scraper.Scrape(gctx, a.URL)
			s.update(run, func(r *domain.IngestRun) { r.ArticlesScraped++ })
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scrape articles: %w", err)
	}
	// Scrapers swallow cancellation and return "".
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scrape articles: %w", err)
	}
	return texts, nil
}
