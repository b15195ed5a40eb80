package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure services implement the interfaces.
var (
	_ driving.AnswerService    = (*AnswerService)(nil)
	_ driving.RetrievalService = (*RetrievalService)(nil)
)

// Generation parameters for answers.
const (
	AnswerTemperature = 0.2
	AnswerMaxTokens   = 700
)

// RetrievalService runs company-filtered similarity search.
type RetrievalService struct {
	indexStore driven.IndexStore
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(indexStore driven.IndexStore) *RetrievalService {
	return &RetrievalService{indexStore: indexStore}
}

// Search loads the company's collection and returns up to k chunks tagged
// for that company.
func (s *RetrievalService) Search(ctx context.Context, company, query string, k int) ([]domain.ScoredChunk, error) {
	name := domain.CollectionName(company)
	if name == "" {
		return nil, fmt.Errorf("%w: empty company name", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}

	collection, err := s.indexStore.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	hits, err := collection.Search(ctx, query, k, domain.CompanyFilter(name))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}
	return hits, nil
}

// Collections lists every stored collection.
func (s *RetrievalService) Collections(ctx context.Context) ([]domain.CollectionInfo, error) {
	infos, err := s.indexStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return infos, nil
}

// AnswerService answers questions grounded in retrieved news chunks.
type AnswerService struct {
	retrieval *RetrievalService
	chat      driven.ChatService
	prompts   driven.PromptStore
	maxTokens int
}

// NewAnswerService creates an answer service.
// chat may be nil when no LLM is configured; Ask then fails with
// domain.ErrLLMUnavailable after validating the request.
// prompts is optional; nil uses the built-in system instruction.
func NewAnswerService(
	retrieval *RetrievalService,
	chat driven.ChatService,
	prompts driven.PromptStore,
	maxTokens int,
) *AnswerService {
	if maxTokens <= 0 {
		maxTokens = AnswerMaxTokens
	}
	return &AnswerService{
		retrieval: retrieval,
		chat:      chat,
		prompts:   prompts,
		maxTokens: maxTokens,
	}
}

// Ask retrieves context and asks the chat model for a cited answer.
// No hits returns domain.ErrNoContext without contacting the model.
func (s *AnswerService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidArgument)
	}
	topK := req.TopK
	if topK == 0 {
		topK = domain.DefaultTopK
	}
	if topK < domain.MinTopK || topK > domain.MaxTopK {
		return nil, fmt.Errorf("%w: top k must be in [%d, %d], got %d",
			domain.ErrInvalidArgument, domain.MinTopK, domain.MaxTopK, topK)
	}

	hits, err := s.retrieval.Search(ctx, req.Company, question, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoContext, domain.CollectionName(req.Company))
	}
	if s.chat == nil {
		return nil, domain.ErrLLMUnavailable
	}

	prompt := BuildPrompt(question, hits)
	logger.Debug("Prompt with %d chunks and %d sources", len(hits), len(prompt.Citations))

	reply, err := s.chat.Complete(ctx, driven.ChatRequest{
		System:      s.systemPrompt(),
		Messages:    []driven.ChatMessage{{Role: "user", Content: prompt.Text}},
		MaxTokens:   s.maxTokens,
		Temperature: AnswerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("complete answer: %w", err)
	}

	return &domain.Answer{
		Question:  question,
		Company:   domain.CollectionName(req.Company),
		Text:      strings.TrimSpace(reply),
		Citations: prompt.Citations,
		Chunks:    hits,
		Model:     s.chat.ModelName(),
	}, nil
}

func (s *AnswerService) systemPrompt() string {
	if s.prompts == nil {
		return driven.DefaultAnswerSystemPrompt
	}
	text, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("Using built-in system prompt: %v", err)
		}
		return driven.DefaultAnswerSystemPrompt
	}
	return text
}
