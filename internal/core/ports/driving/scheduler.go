package driving

import "context"

// Scheduler periodically reindexes the configured company watchlist.
type Scheduler interface {
	// Start begins running scheduled reindexing.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler and waits for running tasks.
	Stop() error

	// SetCompanies replaces the watchlist. Safe to call while running.
	SetCompanies(companies []string)
}
