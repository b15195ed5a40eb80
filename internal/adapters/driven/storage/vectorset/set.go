// Package vectorset provides an immutable in-memory snapshot of a collection
// with exact (brute force) filtered cosine similarity search.
//
// News collections hold a few hundred chunks, so a linear scan is both exact
// and fast. Storage adapters decode their on-disk form into a Set on load.
package vectorset

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Set implements the interface.
var _ driven.Collection = (*Set)(nil)

// Set is a searchable snapshot. It is safe for concurrent use.
type Set struct {
	info     domain.CollectionInfo
	entries  []domain.EmbeddedChunk
	embedder driven.EmbeddingService
}

// New creates a Set. Entries keep their order; it is the tie-break order.
func New(info domain.CollectionInfo, entries []domain.EmbeddedChunk, embedder driven.EmbeddingService) *Set {
	return &Set{
		info:     info,
		entries:  entries,
		embedder: embedder,
	}
}

// Info returns the collection summary.
func (s *Set) Info() domain.CollectionInfo {
	return s.info
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.entries)
}

// Search embeds the query and ranks filtered entries by cosine similarity.
func (s *Set) Search(ctx context.Context, query string, k int, filter domain.Filter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if s.info.Dimensions > 0 && len(queryVec) != s.info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %q has %d",
			domain.ErrEmbeddingMismatch, len(queryVec), s.info.Name, s.info.Dimensions)
	}

	return s.SearchVector(queryVec, k, filter), nil
}

// SearchVector ranks filtered entries against an already embedded query.
// k must be positive.
func (s *Set) SearchVector(queryVec []float32, k int, filter domain.Filter) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(s.entries))
	for i := range s.entries {
		if !filter.Matches(s.entries[i].Metadata) {
			continue
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk:      s.entries[i].Chunk,
			Similarity: Cosine(queryVec, s.entries[i].Vector),
		})
	}

	// Stable keeps insertion order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Cosine returns the cosine similarity of two vectors.
// Mismatched lengths or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Summarise builds CollectionInfo counts for a set of chunks.
func Summarise(name string, chunks []domain.Chunk) domain.CollectionInfo {
	sources := make(map[string]struct{})
	for i := range chunks {
		if chunks[i].Metadata.Source != "" {
			sources[chunks[i].Metadata.Source] = struct{}{}
		}
	}
	return domain.CollectionInfo{
		Name:        name,
		ChunkCount:  len(chunks),
		SourceCount: len(sources),
	}
}
