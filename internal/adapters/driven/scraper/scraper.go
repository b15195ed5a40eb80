// Package scraper downloads news pages and extracts their paragraph text.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure Scraper implements the interface.
var _ driven.Scraper = (*Scraper)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 15 * time.Second
	DefaultMinParagraphChars = 40
	DefaultMaxBodyBytes      = 5 << 20
)

var log = logger.Named("scraper")

// Config holds configuration for the scraper.
type Config struct {
	UserAgent string
	Timeout   time.Duration

	// MinParagraphChars drops paragraphs with this many runes or fewer.
	MinParagraphChars int

	// MaxBodyBytes caps how much of a page is parsed.
	MaxBodyBytes int64

	// RequestsPerSecond bounds page downloads. Zero disables limiting.
	RequestsPerSecond float64
}

// Scraper fetches article pages.
type Scraper struct {
	client       *http.Client
	userAgent    string
	minParagraph int
	maxBody      int64
	limiter      *rate.Limiter
}

// New creates a scraper.
func New(cfg Config) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinParagraphChars <= 0 {
		cfg.MinParagraphChars = DefaultMinParagraphChars
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Scraper{
		client:       &http.Client{Timeout: cfg.Timeout},
		userAgent:    cfg.UserAgent,
		minParagraph: cfg.MinParagraphChars,
		maxBody:      cfg.MaxBodyBytes,
		limiter:      limiter,
	}
}

// Scrape returns the page's substantial paragraphs joined by newlines.
// Any failure is logged and yields "".
func (s *Scraper) Scrape(ctx context.Context, url string) string {
	if strings.TrimSpace(url) == "" {
		log.Warn("%v", fmt.Errorf("%w: empty url", domain.ErrScrapeFailure))
		return ""
	}

	text, err := s.scrape(ctx, url)
	if err != nil {
		log.Warn("%v", fmt.Errorf("%w: %s: %w", domain.ErrScrapeFailure, url, err))
		return ""
	}
	if text == "" {
		log.Info("no substantial text at %s", url)
	}
	return text
}

func (s *Scraper) scrape(ctx context.Context, url string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return ExtractParagraphs(doc, s.minParagraph), nil
}

// ExtractParagraphs prefers paragraphs inside <article>, falling back to
// every <p>. Paragraphs of minChars runes or fewer are dropped.
func ExtractParagraphs(doc *goquery.Document, minChars int) string {
	candidates := doc.Find("article p")
	if candidates.Length() == 0 {
		candidates = doc.Find("p")
	}

	var kept []string
	candidates.Each(func(_ int, p *goquery.Selection) {
		text := paragraphText(p)
		if utf8.RuneCountInString(text) > minChars {
			kept = append(kept, text)
		}
	})
	return strings.Join(kept, "\n")
}

// paragraphText joins the trimmed text nodes under p with single spaces,
// so words either side of inline markup stay separate.
func paragraphText(p *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
			case "#comment", "script", "style":
			default:
				walk(c)
			}
		})
	}
	walk(p)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
