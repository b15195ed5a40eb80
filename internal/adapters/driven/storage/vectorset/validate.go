package vectorset

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// ValidateName canonicalises a collection name and rejects names that cannot
// be used as a single path element.
func ValidateName(name string) (string, error) {
	canonical := domain.CollectionName(name)
	if canonical == "" {
		return "", fmt.Errorf("%w: empty collection name", domain.ErrInvalidArgument)
	}
	if strings.ContainsAny(canonical, `/\`+"\x00") || canonical == "." || strings.Contains(canonical, "..") {
		return "", fmt.Errorf("%w: invalid collection name %q", domain.ErrInvalidArgument, name)
	}
	return canonical, nil
}

// ValidateChunks checks the write-time invariants for a collection:
// at least one chunk, no empty text, and every chunk tagged for name.
func ValidateChunks(name string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("create collection %q: %w", name, domain.ErrEmptyInput)
	}
	for i := range chunks {
		if chunks[i].Text == "" {
			return fmt.Errorf("%w: chunk %d has no text", domain.ErrInvalidArgument, i)
		}
		if chunks[i].Metadata.Company != name {
			return fmt.Errorf("%w: chunk %d is tagged %q, collection is %q",
				domain.ErrCollectionMismatch, i, chunks[i].Metadata.Company, name)
		}
	}
	return nil
}

// Texts returns chunk texts in order, ready for batch embedding.
func Texts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	return texts
}

// CheckEmbedder verifies a collection can be queried with the given model.
// Querying with a different model silently corrupts similarity scores.
func CheckEmbedder(info domain.CollectionInfo, modelName string, dimensions int) error {
	if info.EmbeddingModel != "" && info.EmbeddingModel != modelName {
		return fmt.Errorf("%w: collection %q was built with %q, configured model is %q",
			domain.ErrEmbeddingMismatch, info.Name, info.EmbeddingModel, modelName)
	}
	if info.Dimensions > 0 && dimensions > 0 && info.Dimensions != dimensions {
		return fmt.Errorf("%w: collection %q has %d dimensions, configured model has %d",
			domain.ErrEmbeddingMismatch, info.Name, info.Dimensions, dimensions)
	}
	return nil
}
