package tui

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

type mockAnswerService struct {
	answer *domain.Answer
	err    error
	got    domain.AskRequest
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Question:  req.Question,
		Company:   domain.CollectionName(req.Company),
		Text:      "Revenue grew [1].",
		Citations: []domain.Citation{{Number: 1, URL: "https://news.example/1", Title: "Q1 results"}},
	}, nil
}

type mockRetrievalService struct {
	collections []domain.CollectionInfo
	err         error
}

func (m *mockRetrievalService) Search(context.Context, string, string, int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (m *mockRetrievalService) Collections(context.Context) ([]domain.CollectionInfo, error) {
	return m.collections, m.err
}

type mockInfoService struct{}

func (mockInfoService) Summary(_ context.Context, company string) (*domain.CompanySummary, error) {
	return &domain.CompanySummary{Company: company, Title: company, Extract: company + " is a company..."}, nil
}

func (mockInfoService) Quote(context.Context, string) (*domain.StockQuote, error) {
	return nil, domain.ErrNotFound
}
