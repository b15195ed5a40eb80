// Package domain defines the core business entities for Dossier.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Article: A news article reference returned by the fetcher
//   - Chunk: A bounded piece of article text with its source metadata
//   - CollectionInfo: Summary of a persisted per-company index
//   - IngestRun: The record of one ingestion pipeline run
//   - Answer: A cited answer composed from retrieved chunks
//   - Config: Every tunable, loaded once at startup
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
