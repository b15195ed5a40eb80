package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// ArticleFetcher finds recent news articles about a company.
type ArticleFetcher interface {
	// Fetch returns up to max articles, newest first.
	// Network and API failures are logged as domain.ErrFetchFailure and
	// yield an empty list with a nil error: no articles is not fatal here.
	Fetch(ctx context.Context, company string, max int) ([]domain.Article, error)
}

// Scraper extracts article body text from a web page.
type Scraper interface {
	// Scrape returns paragraph text joined by newlines.
	// Any failure is logged as domain.ErrScrapeFailure and yields "".
	Scrape(ctx context.Context, url string) string
}
