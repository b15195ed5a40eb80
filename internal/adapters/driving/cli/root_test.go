package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// execute runs rootCmd with args and returns combined output.
// Flags are reset afterwards so values do not leak between tests.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupTestServices installs mocks with canned data and returns a cleanup
// function that clears them.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingestion: &mockIngestion{},
		dryRun:    &mockIngestion{},
		answer:    &mockAnswer{},
		retrieval: &mockRetrieval{},
		info:      &mockInfo{},
		runs:      &mockRuns{},
		settings:  newMockSettings(),
		scheduler: &mockScheduler{},
	}
	SetServices(Services{
		Ingestion:  ts.ingestion,
		DryRun:     ts.dryRun,
		Answer:     ts.answer,
		Retrieval:  ts.retrieval,
		Info:       ts.info,
		RunHistory: ts.runs,
		Settings:   ts.settings,
		Scheduler:  ts.scheduler,
	})
	return ts, func() { SetServices(Services{}) }
}

type testServices struct {
	ingestion *mockIngestion
	dryRun    *mockIngestion
	answer    *mockAnswer
	retrieval *mockRetrieval
	info      *mockInfo
	runs      *mockRuns
	settings  *mockSettings
	scheduler *mockScheduler
}

var testStarted = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

type mockIngestion struct {
	gotCompany string
	gotMax     int
	err        error
}

func (m *mockIngestion) Ingest(_ context.Context, company string, maxArticles int) (*domain.IngestRun, error) {
	m.gotCompany = company
	m.gotMax = maxArticles
	run := &domain.IngestRun{
		ID:              "run-1",
		Company:         domain.CollectionName(company),
		State:           domain.RunSucceeded,
		StartedAt:       testStarted,
		EndedAt:         testStarted.Add(3 * time.Second),
		ArticlesFetched: 8,
		ArticlesScraped: 8,
		ArticlesUsable:  5,
		ChunksIndexed:   21,
	}
	if m.err != nil {
		run.State = domain.RunFailed
		run.Error = m.err.Error()
		return run, m.err
	}
	return run, nil
}

func (m *mockIngestion) Status(context.Context, string) (*domain.IngestRun, error) {
	return nil, nil
}

type mockAnswer struct {
	got domain.AskRequest
	err error
}

func (m *mockAnswer) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Question: req.Question,
		Company:  domain.CollectionName(req.Company),
		Text:     "Tesla opened a plant [1].",
		Citations: []domain.Citation{
			{Number: 1, URL: "https://a.example/1", Title: "Tesla opens plant"},
		},
		Model: "test-model",
	}, nil
}

type mockRetrieval struct {
	gotK int
	err  error
}

func (m *mockRetrieval) Search(_ context.Context, company, _ string, k int) ([]domain.ScoredChunk, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ScoredChunk{{
		Chunk: domain.Chunk{
			ID:   "c1",
			Text: "Tesla opened a new plant in Berlin.",
			Metadata: domain.ChunkMetadata{
				Source:  "https://a.example/1",
				Title:   "Tesla opens plant",
				Company: domain.CollectionName(company),
			},
		},
		Similarity: 0.91,
	}}, nil
}

func (m *mockRetrieval) Collections(context.Context) ([]domain.CollectionInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.CollectionInfo{{
		Name:           "tesla",
		ChunkCount:     21,
		SourceCount:    5,
		EmbeddingModel: "hash-256",
		Dimensions:     256,
		CreatedAt:      testStarted,
	}}, nil
}

type mockInfo struct {
	summaryErr error
	quoteErr   error
}

func (m *mockInfo) Summary(_ context.Context, company string) (*domain.CompanySummary, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return &domain.CompanySummary{
		Company: company,
		Title:   "Tesla, Inc.",
		Extract: "Tesla is an American electric vehicle company...",
		URL:     "https://en.wikipedia.org/wiki/Tesla,_Inc.",
	}, nil
}

func (m *mockInfo) Quote(_ context.Context, ticker string) (*domain.StockQuote, error) {
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return &domain.StockQuote{
		Ticker:        ticker,
		Currency:      "USD",
		CurrentPrice:  180.5,
		PreviousClose: 175.5,
		Open:          176,
		DayHigh:       181,
		DayLow:        174,
		Volume:        1200000,
	}, nil
}

type mockRuns struct {
	gotCompany string
	gotLimit   int
}

func (m *mockRuns) List(_ context.Context, company string, limit int) ([]domain.IngestRun, error) {
	m.gotCompany = company
	m.gotLimit = limit
	return []domain.IngestRun{{
		ID:            "run-1",
		Company:       "tesla",
		State:         domain.RunSucceeded,
		StartedAt:     testStarted,
		EndedAt:       testStarted.Add(2 * time.Second),
		ChunksIndexed: 21,
	}, {
		ID:        "run-0",
		Company:   "tesla",
		State:     domain.RunFailed,
		StartedAt: testStarted.Add(-time.Hour),
		EndedAt:   testStarted.Add(-time.Hour + time.Second),
		Error:     "no usable articles: tesla",
	}}, nil
}

func (m *mockRuns) Get(_ context.Context, id string) (*domain.IngestRun, error) {
	if id != "run-1" {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, id)
	}
	return &domain.IngestRun{ID: id, Company: "tesla", State: domain.RunSucceeded, StartedAt: testStarted}, nil
}

type mockSettings struct {
	cfg         domain.Config
	path        string
	saved       *domain.Config
	validateErr error
	pingErr     error

	gotProvider domain.AIProvider
	gotModel    string
	gotAPIKey   string
}

func newMockSettings() *mockSettings {
	return &mockSettings{cfg: domain.DefaultConfig(), path: "/tmp/dossier/config.toml"}
}

func (m *mockSettings) Get() (*domain.Config, error) {
	cfg := m.cfg
	return &cfg, nil
}

func (m *mockSettings) Save(cfg *domain.Config) error {
	m.saved = cfg
	return nil
}

func (m *mockSettings) Path() string { return m.path }

func (m *mockSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.gotProvider = provider
	m.gotModel = model
	m.gotAPIKey = apiKey
	return nil
}

func (m *mockSettings) Validate() error { return m.validateErr }

func (m *mockSettings) GetDefaults() domain.Config { return domain.DefaultConfig() }

func (m *mockSettings) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettings) ValidateLLMConfig() error { return m.pingErr }

type mockScheduler struct {
	mu        sync.Mutex
	companies []string
	started   bool
	startErr  error
}

func (m *mockScheduler) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return m.startErr
}

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) SetCompanies(companies []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies = companies
}

func (m *mockScheduler) Companies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.companies
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "dossier", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("quiet"))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"update", "ask", "search", "info", "indexes", "runs", "watch", "config", "mcp", "tui", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantOut string
		wantErr bool
	}{
		{"index not found", fmt.Errorf("load: %w", domain.ErrIndexNotFound), "No index found", false},
		{"no context", domain.ErrNoContext, "No relevant context", false},
		{"external api", &domain.ExternalAPIError{Service: "groq", StatusCode: 429, Body: "rate limited"}, "groq error (status 429): rate limited", false},
		{"other", errors.New("boom"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			cmd := &cobra.Command{}
			cmd.SetOut(buf)

			err := report(cmd, "ask", tt.err)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "ask failed: boom", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.wantOut)
		})
	}
}
