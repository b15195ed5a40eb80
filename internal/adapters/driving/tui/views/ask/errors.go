package ask

import "errors"

// Error definitions for the ask view.
var (
	// ErrNoAnswerService indicates that no answer service was provided.
	ErrNoAnswerService = errors.New("answer service is required")

	// ErrNoCompany indicates a question was submitted before a company was chosen.
	ErrNoCompany = errors.New("no company selected")
)
