// Package stock reads ticker quotes from the Yahoo Finance chart API.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.QuoteProvider = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	DefaultTimeout = 10 * time.Second
	DefaultRange   = "3mo"
)

const maxErrorBody = 512

// Config holds configuration for the client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches chart data.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// chartResponse covers the fields of /v8/finance/chart consumed here.
// Series values are pointers because the API reports gaps as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string   `json:"currency"`
				Symbol               string   `json:"symbol"`
				RegularMarketPrice   *float64 `json:"regularMarketPrice"`
				PreviousClose        *float64 `json:"previousClose"`
				ChartPreviousClose   *float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  *int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewClient creates a quote client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// Quote returns the latest trading data and three months of daily closes.
// Unknown or delisted tickers return domain.ErrNotFound.
func (c *Client) Quote(ctx context.Context, ticker string) (*domain.StockQuote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", domain.ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("range", DefaultRange)
	q.Set("interval", "1d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v8/finance/chart/"+url.PathEscape(ticker)+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no data for ticker %q", domain.ErrNotFound, ticker)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ExternalAPIError{Service: "stock", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("%w: ticker %q: %s", domain.ErrNotFound, ticker, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no data for ticker %q", domain.ErrNotFound, ticker)
	}

	result := parsed.Chart.Result[0]
	meta := result.Meta

	quote := &domain.StockQuote{
		Ticker:        ticker,
		Currency:      meta.Currency,
		CurrentPrice:  deref(meta.RegularMarketPrice),
		PreviousClose: deref(meta.PreviousClose),
		DayHigh:       deref(meta.RegularMarketDayHigh),
		DayLow:        deref(meta.RegularMarketDayLow),
	}
	if quote.PreviousClose == 0 {
		quote.PreviousClose = deref(meta.ChartPreviousClose)
	}
	if meta.RegularMarketVolume != nil {
		quote.Volume = *meta.RegularMarketVolume
	}

	if len(result.Indicators.Quote) > 0 {
		series := result.Indicators.Quote[0]
		for i, ts := range result.Timestamp {
			if i >= len(series.Close) || series.Close[i] == nil {
				continue
			}
			quote.History = append(quote.History, domain.PricePoint{
				Date:  time.Unix(ts, 0).UTC(),
				Close: *series.Close[i],
			})
		}
		// The last bar is today's session.
		if last := len(result.Timestamp) - 1; last >= 0 {
			quote.Open = at(series.Open, last)
			if quote.DayHigh == 0 {
				quote.DayHigh = at(series.High, last)
			}
			if quote.DayLow == 0 {
				quote.DayLow = at(series.Low, last)
			}
		}
	}

	if quote.CurrentPrice == 0 && len(quote.History) == 0 {
		return nil, fmt.Errorf("%w: no data for ticker %q", domain.ErrNotFound, ticker)
	}
	if quote.CurrentPrice == 0 {
		quote.CurrentPrice = quote.History[len(quote.History)-1].Close
	}
	return quote, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func at(values []*float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return deref(values[i])
}
