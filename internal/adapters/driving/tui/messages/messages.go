// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/dossier/internal/core/domain"
)

// CollectionsLoaded carries the indexed companies.
type CollectionsLoaded struct {
	Collections []domain.CollectionInfo
	Err         error
}

// CompanySelected is sent when a company is picked from the list.
type CompanySelected struct {
	Company string
}

// AnswerCompleted carries the answer to a submitted question.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// SummaryLoaded carries the encyclopedia summary for the selected company.
type SummaryLoaded struct {
	Company string
	Summary *domain.CompanySummary
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewCompanies lists the indexed companies.
	ViewCompanies ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewCompanies:
		return "companies"
	case ViewAsk:
		return "ask"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
