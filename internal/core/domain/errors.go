package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed or out-of-range input,
	// such as a non-positive result count.
	ErrInvalidArgument = errors.New("invalid argument")

	// Ingestion Errors.

	// ErrFetchFailure indicates the article list could not be retrieved.
	// Fetchers log it and return an empty list; it never aborts a run.
	ErrFetchFailure = errors.New("fetch failure")

	// ErrScrapeFailure indicates a single article page could not be scraped.
	// The article is dropped from the run.
	ErrScrapeFailure = errors.New("scrape failure")

	// ErrNoUsableArticles indicates an ingestion run produced zero chunks
	// after filtering. No index is written.
	ErrNoUsableArticles = errors.New("no usable articles")

	// ErrIngestInProgress indicates an ingestion run for the same company
	// is already active in this process.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// Index Errors.

	// ErrEmptyInput indicates an attempt to write a collection with no chunks.
	ErrEmptyInput = errors.New("empty input")

	// ErrIndexNotFound indicates no collection exists under the requested name.
	// Callers should suggest running ingestion for the company.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCollectionMismatch indicates a chunk tagged for one company was
	// about to be written into another company's collection.
	ErrCollectionMismatch = errors.New("chunk company does not match collection")

	// ErrEmbeddingMismatch indicates a collection was built with a different
	// embedding model or dimension than the one configured for reading.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrWriteInProgress indicates another writer holds the collection lock.
	ErrWriteInProgress = errors.New("collection write in progress")

	// Answer Errors.

	// ErrNoContext indicates retrieval returned nothing to ground an answer on.
	ErrNoContext = errors.New("no relevant context found")

	// ErrExternalAPI indicates an external endpoint answered with a
	// non-success status. See ExternalAPIError for details.
	ErrExternalAPI = errors.New("external API error")

	// ErrLLMUnavailable indicates the chat completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ExternalAPIError carries the status and body of a failed external call.
// The body is kept verbatim so it can be shown to the user unchanged.
type ExternalAPIError struct {
	Service    string
	StatusCode int
	Body       string
}

// Error implements error.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrExternalAPI.
func (e *ExternalAPIError) Unwrap() error {
	return ErrExternalAPI
}
