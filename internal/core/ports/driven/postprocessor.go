package driven

import "github.com/custodia-labs/dossier/internal/core/domain"

// Splitter cuts normalised article text into overlapping chunks.
type Splitter interface {
	// Name returns the splitter name for logging.
	Name() string

	// Split returns chunks covering text, each carrying meta.
	// Empty text yields no chunks.
	Split(text string, meta domain.ChunkMetadata) []domain.Chunk
}
