// Package tui provides an interactive terminal user interface for asking
// questions about indexed companies. It is a driving adapter: all work is
// delegated to the core through driving ports.
package tui

import (
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer answers questions with citations.
	Answer driving.AnswerService

	// Retrieval lists the indexed companies.
	Retrieval driving.RetrievalService

	// Info provides the company summary shown above the answer. Optional.
	Info driving.InfoService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
