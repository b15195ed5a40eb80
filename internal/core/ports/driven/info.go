package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// SummaryProvider looks up an encyclopedia summary for a company.
type SummaryProvider interface {
	// Summary returns domain.ErrNotFound if no page exists.
	Summary(ctx context.Context, company string) (*domain.CompanySummary, error)
}

// QuoteProvider looks up trading data for a ticker symbol.
type QuoteProvider interface {
	// Quote returns domain.ErrNotFound if the ticker has no data.
	Quote(ctx context.Context, ticker string) (*domain.StockQuote, error)
}

// Cache stores small serialised values with an expiry.
type Cache interface {
	// Get returns the value and true if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value that expires after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases resources.
	Close() error
}
