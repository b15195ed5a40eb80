package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure InfoService implements the interface.
var _ driving.InfoService = (*InfoService)(nil)

// InfoService serves the company summary and stock panels through an
// optional cache.
type InfoService struct {
	summaries driven.SummaryProvider
	quotes    driven.QuoteProvider
	cache     driven.Cache
	ttl       time.Duration
}

// NewInfoService creates an info service. A nil cache or a zero ttl
// disables caching.
func NewInfoService(
	summaries driven.SummaryProvider,
	quotes driven.QuoteProvider,
	cache driven.Cache,
	ttl time.Duration,
) *InfoService {
	return &InfoService{
		summaries: summaries,
		quotes:    quotes,
		cache:     cache,
		ttl:       ttl,
	}
}

// Summary returns the encyclopedia summary for a company.
func (s *InfoService) Summary(ctx context.Context, company string) (*domain.CompanySummary, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, fmt.Errorf("%w: empty company name", domain.ErrInvalidArgument)
	}

	key := "summary:" + domain.CollectionName(company)
	var summary domain.CompanySummary
	if s.cached(ctx, key, &summary) {
		return &summary, nil
	}

	fresh, err := s.summaries.Summary(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("company summary: %w", err)
	}
	s.store(ctx, key, fresh)
	return fresh, nil
}

// Quote returns the stock quote for a ticker.
func (s *InfoService) Quote(ctx context.Context, ticker string) (*domain.StockQuote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", domain.ErrInvalidArgument)
	}

	key := "quote:" + ticker
	var quote domain.StockQuote
	if s.cached(ctx, key, &quote) {
		return &quote, nil
	}

	fresh, err := s.quotes.Quote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("stock quote: %w", err)
	}
	s.store(ctx, key, fresh)
	return fresh, nil
}

// cached decodes a cache hit into dst. Cache problems count as a miss.
func (s *InfoService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Debug("Discarding bad cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *InfoService) store(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		logger.Warn("Cache write %s: %v", key, err)
	}
}
