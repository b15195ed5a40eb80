package domain

import "strings"

// Article is a news article reference produced by the fetcher.
// It is ephemeral and only lives for the duration of one ingestion run.
type Article struct {
	// Title is the headline as reported by the news API.
	Title string

	// URL is the article location. It acts as the source identifier.
	URL string

	// PublishedAt is the publication timestamp as reported, or empty.
	PublishedAt string

	// SourceName is the publisher name, e.g. "Reuters".
	SourceName string
}

// Metadata builds the chunk metadata for this article under a company.
func (a Article) Metadata(company string) ChunkMetadata {
	return ChunkMetadata{
		Source:      a.URL,
		Title:       a.Title,
		PublishedAt: a.PublishedAt,
		SourceName:  a.SourceName,
		Company:     CollectionName(company),
	}
}

// CollectionName returns the canonical collection key for a company name.
func CollectionName(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}
