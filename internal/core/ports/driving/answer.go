package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// AnswerService answers questions from a company's news index.
type AnswerService interface {
	// Ask retrieves context for the question and returns a cited answer.
	// Returns domain.ErrIndexNotFound if the company was never ingested and
	// domain.ErrNoContext if retrieval found nothing.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}
