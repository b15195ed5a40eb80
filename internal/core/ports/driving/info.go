package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// InfoService provides the non-retrieval company panels.
type InfoService interface {
	// Summary returns an encyclopedia summary for the company.
	Summary(ctx context.Context, company string) (*domain.CompanySummary, error)

	// Quote returns trading data for a ticker.
	Quote(ctx context.Context, ticker string) (*domain.StockQuote, error)
}
