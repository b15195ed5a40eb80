package domain

import "time"

// Metadata field names usable in a Filter.
const (
	FieldSource      = "source"
	FieldTitle       = "title"
	FieldPublishedAt = "publishedAt"
	FieldSourceName  = "sourceName"
	FieldCompany     = "company"
)

// ChunkMetadata describes where a chunk came from.
// Every chunk of an article carries an identical copy.
type ChunkMetadata struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	PublishedAt string `json:"publishedAt"`
	SourceName  string `json:"sourceName"`
	Company     string `json:"company"`
}

// Field returns the value of a metadata field by its filter name.
func (m ChunkMetadata) Field(name string) (string, bool) {
	switch name {
	case FieldSource:
		return m.Source, true
	case FieldTitle:
		return m.Title, true
	case FieldPublishedAt:
		return m.PublishedAt, true
	case FieldSourceName:
		return m.SourceName, true
	case FieldCompany:
		return m.Company, true
	default:
		return "", false
	}
}

// Chunk is a bounded substring of an article plus its source metadata.
// It is the unit of indexing and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// Text is the chunk content. Never empty.
	Text string `json:"text"`

	// Position is the ordinal position within the originating article.
	Position int `json:"position"`

	// Metadata identifies the originating article.
	Metadata ChunkMetadata `json:"metadata"`
}

// EmbeddedChunk is a chunk paired with its vector representation.
type EmbeddedChunk struct {
	Chunk
	Vector []float32
}

// ScoredChunk is a retrieved chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk
	Similarity float64 `json:"similarity"`
}

// Filter is a metadata equality constraint. All entries must match.
// A nil or empty filter matches everything.
type Filter map[string]string

// CompanyFilter returns a filter restricting results to one company.
func CompanyFilter(company string) Filter {
	return Filter{FieldCompany: CollectionName(company)}
}

// Matches reports whether metadata satisfies every constraint.
// Unknown field names never match.
func (f Filter) Matches(m ChunkMetadata) bool {
	for field, want := range f {
		got, ok := m.Field(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// CollectionInfo summarises a persisted collection.
type CollectionInfo struct {
	// Name is the collection key (lowercased company name).
	Name string `json:"name"`

	// ChunkCount is the number of stored entries.
	ChunkCount int `json:"chunk_count"`

	// SourceCount is the number of distinct source URLs.
	SourceCount int `json:"source_count"`

	// EmbeddingModel is the model the vectors were produced with.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// CreatedAt is when this version of the collection was written.
	CreatedAt time.Time `json:"created_at"`
}
