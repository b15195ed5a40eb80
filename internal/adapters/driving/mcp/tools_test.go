package mcp

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chunks", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.ScoredChunk{{
				Chunk: domain.Chunk{
					ID:   "c1",
					Text: "Tesla opened a plant.",
					Metadata: domain.ChunkMetadata{
						Source:      "https://a.example/1",
						Title:       "Tesla opens plant",
						PublishedAt: "2024-05-02T10:00:00Z",
						Company:     "tesla",
					},
				},
				Similarity: 0.95,
			}},
		}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Company: "Tesla", Query: "plant", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, ChunkOutput{
			ID:          "c1",
			Text:        "Tesla opened a plant.",
			Source:      "https://a.example/1",
			Title:       "Tesla opens plant",
			PublishedAt: "2024-05-02T10:00:00Z",
			Similarity:  0.95,
		}, output.Results[0])
		assert.Equal(t, "Tesla", retrieval.gotCompany)
		assert.Equal(t, 3, retrieval.gotK)
	})

	t.Run("default limit", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Company: "tesla", Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, domain.DefaultTopK, retrieval.gotK)
	})

	t.Run("missing index adds guidance", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: domain.ErrIndexNotFound}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Company: "tesla", Query: "q"})

		require.ErrorIs(t, err, domain.ErrIndexNotFound)
		assert.Contains(t, err.Error(), "ingest_company")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and citations", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Text:      "Tesla opened a plant [1].",
			Citations: []domain.Citation{{Number: 1, URL: "https://a.example/1"}},
			Model:     "llama",
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: answer})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Company: "Tesla", Question: "What happened?", TopK: 4})

		require.NoError(t, err)
		assert.Equal(t, "Tesla opened a plant [1].", output.Answer)
		assert.Len(t, output.Citations, 1)
		assert.Equal(t, "llama", output.Model)
		assert.Equal(t, domain.AskRequest{Question: "What happened?", Company: "Tesla", TopK: 4}, answer.got)
	})

	t.Run("propagates errors", func(t *testing.T) {
		answer := &mockAnswerService{err: domain.ErrNoContext}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: answer})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Company: "tesla", Question: "q"})
		assert.ErrorIs(t, err, domain.ErrNoContext)
	})
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("returns run summary", func(t *testing.T) {
		ingest := &mockIngestionService{run: &domain.IngestRun{
			ID:              "run-1",
			Company:         "tesla",
			State:           domain.RunSucceeded,
			ArticlesFetched: 8,
			ArticlesUsable:  5,
			ChunksIndexed:   21,
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Ingestion: ingest})
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Company: "Tesla"})

		require.NoError(t, err)
		assert.Equal(t, IngestOutput{
			RunID:           "run-1",
			Company:         "tesla",
			State:           "succeeded",
			ArticlesFetched: 8,
			ArticlesUsable:  5,
			ChunksIndexed:   21,
		}, output)
	})

	t.Run("in progress adds guidance", func(t *testing.T) {
		ingest := &mockIngestionService{err: domain.ErrIngestInProgress}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Ingestion: ingest})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Company: "tesla"})

		require.ErrorIs(t, err, domain.ErrIngestInProgress)
		assert.Contains(t, err.Error(), "try again")
	})
}

func TestServer_handleInfo(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	t.Run("summary and quote", func(t *testing.T) {
		info := &mockInfoService{
			summary: &domain.CompanySummary{Company: "Tesla", Title: "Tesla, Inc.", Extract: "EV maker..."},
			quote: &domain.StockQuote{
				Ticker:        "TSLA",
				CurrentPrice:  180,
				PreviousClose: 175,
				History:       []domain.PricePoint{{Date: day, Close: 180}},
			},
		}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Info: info})
		require.NoError(t, err)

		_, output, err := server.handleInfo(ctx, nil, InfoInput{Company: "Tesla", Ticker: "tsla"})

		require.NoError(t, err)
		require.NotNil(t, output.Summary)
		assert.Equal(t, "Tesla, Inc.", output.Summary.Title)
		require.NotNil(t, output.Quote)
		assert.InDelta(t, 5.0, output.Quote.Change, 1e-9)
		assert.Equal(t, []PriceOutput{{Date: "2024-05-02", Close: 180}}, output.Quote.History)
	})

	t.Run("not found leaves fields empty", func(t *testing.T) {
		info := &mockInfoService{summaryErr: domain.ErrNotFound, quoteErr: domain.ErrNotFound}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Info: info})
		require.NoError(t, err)

		_, output, err := server.handleInfo(ctx, nil, InfoInput{Company: "Nobody", Ticker: "XXXX"})

		require.NoError(t, err)
		assert.Nil(t, output.Summary)
		assert.Nil(t, output.Quote)
	})

	t.Run("no ticker skips quote", func(t *testing.T) {
		info := &mockInfoService{
			summary:  &domain.CompanySummary{Title: "Tesla, Inc."},
			quoteErr: errors.New("should not be called"),
		}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Info: info})
		require.NoError(t, err)

		_, output, err := server.handleInfo(ctx, nil, InfoInput{Company: "Tesla"})

		require.NoError(t, err)
		assert.Nil(t, output.Quote)
	})

	t.Run("upstream failure", func(t *testing.T) {
		info := &mockInfoService{summaryErr: &domain.ExternalAPIError{Service: "wikipedia", StatusCode: 503}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Info: info})
		require.NoError(t, err)

		_, _, err = server.handleInfo(ctx, nil, InfoInput{Company: "Tesla"})
		assert.ErrorIs(t, err, domain.ErrExternalAPI)
	})
}

func TestServer_ListTools(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		ports *Ports
		want  []string
	}{
		{
			name:  "retrieval only",
			ports: &Ports{Retrieval: &mockRetrievalService{}},
			want:  []string{"search_company"},
		},
		{
			name: "all ports",
			ports: &Ports{
				Retrieval: &mockRetrievalService{},
				Answer:    &mockAnswerService{},
				Ingestion: &mockIngestionService{},
				Info:      &mockInfoService{},
			},
			want: []string{"ask_company", "company_info", "ingest_company", "search_company"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.ports)
			require.NoError(t, err)

			clientTransport, serverTransport := mcp.NewInMemoryTransports()
			serverSession, err := server.server.Connect(ctx, serverTransport, nil)
			require.NoError(t, err)
			defer serverSession.Close()

			client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
			session, err := client.Connect(ctx, clientTransport, nil)
			require.NoError(t, err)
			defer session.Close()

			result, err := session.ListTools(ctx, nil)
			require.NoError(t, err)

			var names []string
			for _, tool := range result.Tools {
				names = append(names, tool.Name)
			}
			sort.Strings(names)
			assert.Equal(t, tt.want, names)
		})
	}
}
