// Package chunker provides a fixed-size sliding window text splitter.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Splitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1100

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits article text into fixed-size overlapping chunks.
// Sizes are counted in runes, not bytes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// The window step (size - overlap) must be positive so splitting terminates.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidArgument, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)",
			domain.ErrInvalidArgument, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split cuts text into windows of chunkSize runes starting every
// chunkSize-overlap runes. It stops after the first window that reaches the
// end of the text, so the tail is never repeated in a chunk of pure overlap.
// Every chunk carries a copy of meta.
func (p *Processor) Split(text string, meta domain.ChunkMetadata) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := p.chunkSize - p.overlap

	chunks := make([]domain.Chunk, 0, ExpectedChunks(total, p.chunkSize, p.overlap))

	for start, position := 0, 0; ; start, position = start+step, position+1 {
		end := min(start+p.chunkSize, total)

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Text:     string(runes[start:end]),
			Position: position,
			Metadata: meta,
		})

		if end >= total {
			break
		}
	}

	return chunks
}

// ExpectedChunks returns how many chunks Split produces for a text of
// length runes: ceil((length-overlap)/(size-overlap)), at least 1, and
// 0 for empty text.
func ExpectedChunks(length, size, overlap int) int {
	if length <= 0 {
		return 0
	}
	step := size - overlap
	if step <= 0 {
		return 1
	}
	n := (length - overlap + step - 1) / step
	return max(n, 1)
}
