package domain

import "time"

// RunState is a step in the ingestion state machine.
type RunState string

// Ingestion states in execution order. Succeeded and Failed are terminal.
const (
	RunPending   RunState = "pending"
	RunFetching  RunState = "fetching"
	RunScraping  RunState = "scraping"
	RunFiltering RunState = "filtering"
	RunChunking  RunState = "chunking"
	RunWriting   RunState = "writing"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// IsTerminal returns true if no further transitions are possible.
func (s RunState) IsTerminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// DefaultMaxArticles is used when a caller does not bound the fetch.
const DefaultMaxArticles = 8

// IngestRun records the progress and outcome of one ingestion run.
type IngestRun struct {
	// ID is the unique run identifier.
	ID string `json:"id"`

	// Company is the collection name the run writes to.
	Company string `json:"company"`

	// State is the current or final state.
	State RunState `json:"state"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// EndedAt is when the run reached a terminal state. Zero while running.
	EndedAt time.Time `json:"ended_at,omitempty"`

	// ArticlesFetched is the number of articles returned by the fetcher.
	ArticlesFetched int `json:"articles_fetched"`

	// ArticlesScreened is the number of fetched articles left to scrape
	// after duplicate and blocked URLs are dropped.
	ArticlesScreened int `json:"articles_screened"`

	// ArticlesScraped is the number of articles scraped so far.
	ArticlesScraped int `json:"articles_scraped"`

	// ArticlesUsable is the number of articles that passed filtering.
	ArticlesUsable int `json:"articles_usable"`

	// ChunksIndexed is the number of chunks written to the collection.
	ChunksIndexed int `json:"chunks_indexed"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty"`
}

// Duration returns how long the run took, or has taken so far.
func (r *IngestRun) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}
