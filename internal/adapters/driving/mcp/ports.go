package mcp

import (
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval provides similarity search and the collection list.
	Retrieval driving.RetrievalService

	// Answer composes cited answers. Optional; ask_company is not
	// registered without it.
	Answer driving.AnswerService

	// Ingestion rebuilds indexes. Optional.
	Ingestion driving.IngestionService

	// Info provides company summaries and quotes. Optional.
	Info driving.InfoService

	// RunHistory exposes past runs. Optional.
	RunHistory driving.RunHistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
