package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// SearchInput is the input schema for the search_company tool.
type SearchInput struct {
	Company string `json:"company" jsonschema:"the company whose news index is searched"`
	Query   string `json:"query" jsonschema:"the search query"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search_company tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Source      string  `json:"source"`
	Title       string  `json:"title,omitempty"`
	PublishedAt string  `json:"published_at,omitempty"`
	Similarity  float64 `json:"similarity"`
}

// AskInput is the input schema for the ask_company tool.
type AskInput struct {
	Company  string `json:"company" jsonschema:"the company to ask about"`
	Question string `json:"question" jsonschema:"the question to answer from recent news"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks used as context, 3 to 12 (default 5)"`
}

// AskOutput is the output schema for the ask_company tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
	Model     string            `json:"model,omitempty"`
}

// IngestInput is the input schema for the ingest_company tool.
type IngestInput struct {
	Company     string `json:"company" jsonschema:"the company to reindex"`
	MaxArticles int    `json:"max_articles,omitempty" jsonschema:"maximum number of articles to fetch (default 8)"`
}

// IngestOutput is the output schema for the ingest_company tool.
type IngestOutput struct {
	RunID           string `json:"run_id"`
	Company         string `json:"company"`
	State           string `json:"state"`
	ArticlesFetched int    `json:"articles_fetched"`
	ArticlesUsable  int    `json:"articles_usable"`
	ChunksIndexed   int    `json:"chunks_indexed"`
}

// InfoInput is the input schema for the company_info tool.
type InfoInput struct {
	Company string `json:"company" jsonschema:"the company name"`
	Ticker  string `json:"ticker,omitempty" jsonschema:"optional stock ticker, e.g. TSLA"`
}

// InfoOutput is the output schema for the company_info tool.
type InfoOutput struct {
	Summary *domain.CompanySummary `json:"summary,omitempty"`
	Quote   *QuoteOutput           `json:"quote,omitempty"`
}

// QuoteOutput is a stock quote with dates rendered as YYYY-MM-DD.
type QuoteOutput struct {
	Ticker        string        `json:"ticker"`
	Currency      string        `json:"currency,omitempty"`
	CurrentPrice  float64       `json:"current_price"`
	PreviousClose float64       `json:"previous_close"`
	Change        float64       `json:"change"`
	Open          float64       `json:"open"`
	DayHigh       float64       `json:"day_high"`
	DayLow        float64       `json:"day_low"`
	Volume        int64         `json:"volume"`
	MarketCap     int64         `json:"market_cap,omitempty"`
	History       []PriceOutput `json:"history,omitempty"`
}

// PriceOutput is one daily close.
type PriceOutput struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// registerTools registers tool handlers for the configured ports.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_company",
		Description: "Search a company's indexed news for passages similar to a query",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_company",
			Description: "Answer a question about a company from its recent news, with numbered citations",
		}, s.handleAsk)
	}
	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_company",
			Description: "Fetch recent news about a company and rebuild its index",
		}, s.handleIngest)
	}
	if s.ports.Info != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "company_info",
			Description: "Get an encyclopedia summary for a company and optionally its stock quote",
		}, s.handleInfo)
	}
}

// handleSearch handles the search_company tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	results, err := s.ports.Retrieval.Search(ctx, input.Company, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = chunkOutput(&results[i])
	}
	return nil, output, nil
}

// handleAsk handles the ask_company tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Ask(ctx, domain.AskRequest{
		Question: input.Question,
		Company:  input.Company,
		TopK:     input.TopK,
	})
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Citations: answer.Citations,
		Model:     answer.Model,
	}, nil
}

// handleIngest handles the ingest_company tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	run, err := s.ports.Ingestion.Ingest(ctx, input.Company, input.MaxArticles)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	return nil, IngestOutput{
		RunID:           run.ID,
		Company:         run.Company,
		State:           run.State.String(),
		ArticlesFetched: run.ArticlesFetched,
		ArticlesUsable:  run.ArticlesUsable,
		ChunksIndexed:   run.ChunksIndexed,
	}, nil
}

// handleInfo handles the company_info tool invocation. A missing summary
// or quote is reported as an absent field, not an error.
func (s *Server) handleInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InfoInput,
) (*mcp.CallToolResult, InfoOutput, error) {
	var output InfoOutput

	summary, err := s.ports.Info.Summary(ctx, input.Company)
	switch {
	case err == nil:
		output.Summary = summary
	case !errors.Is(err, domain.ErrNotFound):
		return nil, InfoOutput{}, toolError(err)
	}

	if input.Ticker != "" {
		quote, err := s.ports.Info.Quote(ctx, input.Ticker)
		switch {
		case err == nil:
			output.Quote = quoteOutput(quote)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, InfoOutput{}, toolError(err)
		}
	}
	return nil, output, nil
}

func chunkOutput(c *domain.ScoredChunk) ChunkOutput {
	return ChunkOutput{
		ID:          c.ID,
		Text:        c.Text,
		Source:      c.Metadata.Source,
		Title:       c.Metadata.Title,
		PublishedAt: c.Metadata.PublishedAt,
		Similarity:  c.Similarity,
	}
}

func quoteOutput(q *domain.StockQuote) *QuoteOutput {
	out := &QuoteOutput{
		Ticker:        q.Ticker,
		Currency:      q.Currency,
		CurrentPrice:  q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		Change:        q.Change(),
		Open:          q.Open,
		DayHigh:       q.DayHigh,
		DayLow:        q.DayLow,
		Volume:        q.Volume,
		MarketCap:     q.MarketCap,
	}
	for _, p := range q.History {
		out.History = append(out.History, PriceOutput{Date: p.Date.Format("2006-01-02"), Close: p.Close})
	}
	return out
}

// toolError adds guidance to errors the assistant can act on.
func toolError(err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return fmt.Errorf("%w: call ingest_company first", err)
	case errors.Is(err, domain.ErrIngestInProgress):
		return fmt.Errorf("%w: try again when the current run finishes", err)
	}
	return err
}
