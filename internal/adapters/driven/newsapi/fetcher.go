// Package newsapi fetches recent company news from the NewsAPI /v2/everything
// endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.ArticleFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://newsapi.org"
	DefaultLanguage = "en"
	DefaultTimeout  = 15 * time.Second
)

// maxErrorBody bounds how much of an error response is logged.
const maxErrorBody = 512

var log = logger.Named("newsapi")

// Config holds configuration for the fetcher.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration

	// RequestsPerSecond bounds API calls. Zero disables limiting.
	RequestsPerSecond float64
}

// Fetcher calls the news search API.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	limiter  *rate.Limiter
}

type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      *struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// NewFetcher creates a news fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		limiter:  limiter,
	}
}

// Fetch returns up to max articles about company, newest first.
// Failures are logged and produce an empty result with a nil error.
func (f *Fetcher) Fetch(ctx context.Context, company string, max int) ([]domain.Article, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, fmt.Errorf("%w: empty company name", domain.ErrInvalidArgument)
	}
	if max <= 0 {
		max = domain.DefaultMaxArticles
	}

	articles, err := f.fetch(ctx, company, max)
	if err != nil {
		log.Warn("%v", fmt.Errorf("%w: %s: %w", domain.ErrFetchFailure, company, err))
		return []domain.Article{}, nil
	}
	if len(articles) == 0 {
		log.Info("no articles found for %s", company)
	}
	return articles, nil
}

func (f *Fetcher) fetch(ctx context.Context, company string, max int) ([]domain.Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", company)
	q.Set("language", f.language)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(max))
	q.Set("apiKey", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/v2/everything?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, redactKey(err, f.apiKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ExternalAPIError{Service: "newsapi", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Status == "error" {
		return nil, &domain.ExternalAPIError{Service: "newsapi", StatusCode: resp.StatusCode, Body: parsed.Message}
	}

	articles := make([]domain.Article, 0, min(len(parsed.Articles), max))
	for _, a := range parsed.Articles {
		if len(articles) == max {
			break
		}
		article := domain.Article{
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		}
		if a.Source != nil {
			article.SourceName = a.Source.Name
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// redactKey keeps the API key out of logged transport errors, which
// include the request URL.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
