package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for dossier resources.
	uriScheme = "dossier://"

	// runHistoryLimit bounds the runs returned per company.
	runHistoryLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "indexes",
		Name:        "indexes",
		Description: "Companies with a news index, with chunk counts and build times",
		MIMEType:    "application/json",
	}, s.handleIndexesResource)

	if s.ports.RunHistory != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "indexes/{company}/runs",
			Name:        "company-runs",
			Description: "Recent ingestion runs for a company, newest first",
			MIMEType:    "application/json",
		}, s.handleRunsResource)
	}
}

// handleIndexesResource lists every stored collection.
func (s *Server) handleIndexesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos, err := s.ports.Retrieval.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}

	type indexInfo struct {
		Company        string `json:"company"`
		Chunks         int    `json:"chunks"`
		Sources        int    `json:"sources"`
		EmbeddingModel string `json:"embedding_model"`
		UpdatedAt      string `json:"updated_at"`
	}

	out := make([]indexInfo, len(infos))
	for i := range infos {
		out[i] = indexInfo{
			Company:        infos[i].Name,
			Chunks:         infos[i].ChunkCount,
			Sources:        infos[i].SourceCount,
			EmbeddingModel: infos[i].EmbeddingModel,
			UpdatedAt:      infos[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return jsonResource(req.Params.URI, out)
}

// handleRunsResource returns the run history for one company.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	company := extractCompany(req.Params.URI)
	if company == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runs, err := s.ports.RunHistory.List(ctx, company, runHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return jsonResource(req.Params.URI, runs)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCompany extracts the company from a URI like dossier://indexes/{company}/runs.
func extractCompany(uri string) string {
	const prefix = uriScheme + "indexes/"
	const suffix = "/runs"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
