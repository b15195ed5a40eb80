package vectorset

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Build validates chunks for collection name and embeds them with a single
// order-preserving batch call. The returned Set is ready to persist or query.
func Build(ctx context.Context, embedder driven.EmbeddingService, name string, chunks []domain.Chunk) (*Set, error) {
	canonical, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	if err := ValidateChunks(canonical, chunks); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vectors, err := embedder.EmbedBatch(ctx, Texts(chunks))
	if err != nil {
		return nil, fmt.Errorf("embed chunks for %q: %w", canonical, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks for %q: got %d vectors for %d chunks",
			canonical, len(vectors), len(chunks))
	}

	dims := len(vectors[0])
	entries := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				domain.ErrEmbeddingMismatch, i, len(vectors[i]), dims)
		}
		entries[i] = domain.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
	}

	info := Summarise(canonical, chunks)
	info.EmbeddingModel = embedder.ModelName()
	info.Dimensions = dims
	info.CreatedAt = time.Now().UTC()

	return New(info, entries, embedder), nil
}

// Entries returns the embedded chunks in insertion order.
// Callers must not modify the returned slice.
func (s *Set) Entries() []domain.EmbeddedChunk {
	return s.entries
}

// WithEmbedder returns a copy of the Set that queries through embedder.
func (s *Set) WithEmbedder(embedder driven.EmbeddingService) *Set {
	return New(s.info, s.entries, embedder)
}
