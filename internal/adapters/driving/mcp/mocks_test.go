package mcp

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results     []domain.ScoredChunk
	collections []domain.CollectionInfo
	gotCompany  string
	gotK        int
	err         error
}

func (m *mockRetrievalService) Search(_ context.Context, company, _ string, k int) ([]domain.ScoredChunk, error) {
	m.gotCompany = company
	m.gotK = k
	return m.results, m.err
}

func (m *mockRetrievalService) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.collections, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	got    domain.AskRequest
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.got = req
	return m.answer, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	run *domain.IngestRun
	err error
}

func (m *mockIngestionService) Ingest(_ context.Context, _ string, _ int) (*domain.IngestRun, error) {
	return m.run, m.err
}

func (m *mockIngestionService) Status(_ context.Context, _ string) (*domain.IngestRun, error) {
	return nil, nil
}

// mockInfoService is a mock implementation of driving.InfoService.
type mockInfoService struct {
	summary    *domain.CompanySummary
	quote      *domain.StockQuote
	summaryErr error
	quoteErr   error
}

func (m *mockInfoService) Summary(_ context.Context, _ string) (*domain.CompanySummary, error) {
	return m.summary, m.summaryErr
}

func (m *mockInfoService) Quote(_ context.Context, _ string) (*domain.StockQuote, error) {
	return m.quote, m.quoteErr
}

// mockRunHistoryService is a mock implementation of driving.RunHistoryService.
type mockRunHistoryService struct {
	runs       []domain.IngestRun
	gotCompany string
	err        error
}

func (m *mockRunHistoryService) List(_ context.Context, company string, _ int) ([]domain.IngestRun, error) {
	m.gotCompany = company
	return m.runs, m.err
}

func (m *mockRunHistoryService) Get(_ context.Context, _ string) (*domain.IngestRun, error) {
	return nil, domain.ErrNotFound
}
