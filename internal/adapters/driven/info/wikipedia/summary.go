// Package wikipedia looks up company summaries through the Wikipedia REST API.
package wikipedia

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
var _ driven.SummaryProvider = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://en.wikipedia.org"
	DefaultTimeout = 10 * time.Second

	// ExtractLimit is how many runes of the extract are kept.
	ExtractLimit = 700
)

const maxErrorBody = 512

// Config holds configuration for the client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches page summaries.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs *struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// NewClient creates a Wikipedia client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultInfoUserAgent
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

// Summary returns the first ExtractLimit runes of the company's page
// summary followed by "...". Missing pages return domain.ErrNotFound.
func (c *Client) Summary(ctx context.Context, company string) (*domain.CompanySummary, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, fmt.Errorf("%w: empty company name", domain.ErrInvalidArgument)
	}

	title := url.PathEscape(strings.ReplaceAll(company, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/rest_v1/page/summary/"+title+"?redirect=true", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no wikipedia page for %q", domain.ErrNotFound, company)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ExternalAPIError{Service: "wikipedia", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(parsed.Extract) == "" {
		return nil, fmt.Errorf("%w: no wikipedia summary for %q", domain.ErrNotFound, company)
	}

	summary := &domain.CompanySummary{
		Company: company,
		Title:   parsed.Title,
		Extract: Truncate(parsed.Extract, ExtractLimit),
	}
	if parsed.ContentURLs != nil {
		summary.URL = parsed.ContentURLs.Desktop.Page
	}
	return summary, nil
}

// Truncate keeps the first limit runes of s and appends "...".
// The suffix is added even when s is shorter than limit.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}
