// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingestion and question answering:
//
//   - ArticleFetcher: Finds recent news articles for a company (NewsAPI)
//   - Scraper: Extracts article text from a web page (goquery)
//   - Normaliser: Cleans scraped text
//   - Splitter: Cuts text into overlapping chunks
//   - EmbeddingService: Generates vector embeddings
//   - IndexStore / Collection: Per-company vector collections (SQLite)
//   - ChatService: Chat completion for answers
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Ingestion history. Without it, runs are not recorded.
//   - SummaryProvider / QuoteProvider: Informational panels.
//   - Cache: Panel caching (bbolt). Without it, every lookup hits the network.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or leaf package
package driven
