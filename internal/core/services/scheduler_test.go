package services

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dossier/internal/core/domain"
)

// --- Mock ingestion service for scheduler testing ---

type mockIngestion struct {
	mu    stdsync.Mutex
	calls []string
	err   error
}

func (m *mockIngestion) Ingest(_ context.Context, company string, _ int) (*domain.IngestRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, company)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestRun{Company: company, State: domain.RunSucceeded, ChunksIndexed: 3}, nil
}

func (m *mockIngestion) Status(context.Context, string) (*domain.IngestRun, error) {
	return nil, nil
}

func (m *mockIngestion) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(&mockIngestion{}, nil, []string{"Tesla", " tesla ", "", "NVIDIA"}, 0, 8)

	require.NotNil(t, s)
	assert.Equal(t, []string{"tesla", "nvidia"}, s.Companies())
	assert.Equal(t, DefaultWatchInterval, s.interval)
}

func TestScheduler_RunsDueCompaniesOnStart(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewRunStore()
	require.NoError(t, runs.Save(ctx, &domain.IngestRun{
		ID:        "recent",
		Company:   "tesla",
		State:     domain.RunSucceeded,
		StartedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, runs.Save(ctx, &domain.IngestRun{
		ID:        "stale",
		Company:   "apple",
		State:     domain.RunSucceeded,
		StartedAt: time.Now().Add(-7 * time.Hour),
	}))

	ingest := &mockIngestion{}
	s := NewScheduler(ingest, runs, []string{"tesla", "nvidia", "apple"}, 6*time.Hour, 8)

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return len(ingest.called()) == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
	require.NoError(t, <-done)

	assert.ElementsMatch(t, []string{"nvidia", "apple"}, ingest.called())
}

func TestScheduler_ReindexesAfterInterval(t *testing.T) {
	ingest := &mockIngestion{}
	s := NewScheduler(ingest, nil, []string{"tesla"}, time.Hour, 8)
	s.tick = 5 * time.Millisecond

	var mu stdsync.Mutex
	now := time.Now()
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return len(ingest.called()) == 1 }, time.Second, time.Millisecond)

	// Ticks within the interval do nothing.
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, ingest.called(), 1)

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	require.Eventually(t, func() bool { return len(ingest.called()) == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_SetCompaniesWhileRunning(t *testing.T) {
	ingest := &mockIngestion{}
	s := NewScheduler(ingest, nil, nil, time.Hour, 8)
	s.tick = 5 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	s.SetCompanies([]string{"Microsoft"})
	require.Eventually(t, func() bool { return len(ingest.called()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"microsoft"}, ingest.called())

	require.NoError(t, s.Stop())
	require.NoError(t, <-done)
}

func TestScheduler_IngestErrorsAreLogged(t *testing.T) {
	ingest := &mockIngestion{err: domain.ErrNoUsableArticles}
	s := NewScheduler(ingest, nil, []string{"tesla"}, time.Hour, 8)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return len(ingest.called()) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop())
	require.NoError(t, <-done)
}

func TestScheduler_StopWhenNotRunning(t *testing.T) {
	s := NewScheduler(&mockIngestion{}, nil, nil, time.Hour, 8)
	assert.NoError(t, s.Stop())
}
