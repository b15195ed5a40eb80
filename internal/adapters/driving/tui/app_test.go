package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/core/domain"
)

func newTestApp(t *testing.T) (*App, *mockAnswerService) {
	t.Helper()
	answer := &mockAnswerService{}
	app, err := NewApp(&Ports{
		Answer: answer,
		Retrieval: &mockRetrievalService{collections: []domain.CollectionInfo{
			{Name: "tesla", ChunkCount: 12, SourceCount: 4},
			{Name: "nvidia", ChunkCount: 8, SourceCount: 3},
		}},
	})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app, answer
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil", nil, ErrInvalidPorts},
		{"missing answer", &Ports{Retrieval: &mockRetrievalService{}}, ErrMissingAnswerService},
		{"missing retrieval", &Ports{Answer: &mockAnswerService{}}, ErrMissingRetrievalService},
		{"info optional", &Ports{Answer: &mockAnswerService{}, Retrieval: &mockRetrievalService{}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingAnswerService)
	assert.Nil(t, app)
}

func TestNewApp_StartsOnCompanies(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, messages.ViewCompanies, app.CurrentView())
	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &mockAnswerService{}, Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &mockAnswerService{}, Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.True(t, app.Ready())
}

func TestApp_CollectionsLoaded(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.CollectionsLoaded{Collections: []domain.CollectionInfo{{Name: "tesla"}}})

	assert.Equal(t, 1, app.CompaniesView().Companies())
	assert.Contains(t, app.View(), "tesla")
}

func TestApp_CollectionsLoadError(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.CollectionsLoaded{Err: errors.New("disk gone")})

	assert.EqualError(t, app.Err(), "disk gone")
	assert.Contains(t, app.View(), "disk gone")
}

func TestApp_CompanySelectedSwitchesToAsk(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.CompanySelected{Company: "tesla"})

	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.Equal(t, "tesla", app.Company())
	assert.Contains(t, app.View(), "Dossier / tesla")
}

func TestApp_AskRoundTrip(t *testing.T) {
	app, answer := newTestApp(t)
	app.Update(messages.CompanySelected{Company: "tesla"})
	app.AskView().SetQuestion("How did revenue do?")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.AskView().Thinking())

	completed := runUntil[messages.AnswerCompleted](t, cmd)
	app.Update(completed)

	assert.Equal(t, "tesla", answer.got.Company)
	assert.Equal(t, domain.DefaultTopK, answer.got.TopK)
	view := app.View()
	assert.Contains(t, view, "Revenue grew [1].")
	assert.Contains(t, view, "Q1 results")
	assert.Contains(t, view, "https://news.example/1")
}

func TestApp_SummaryShownInHeader(t *testing.T) {
	app, err := NewApp(&Ports{
		Answer:    &mockAnswerService{},
		Retrieval: &mockRetrievalService{},
		Info:      mockInfoService{},
	})
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	_, cmd := app.Update(messages.CompanySelected{Company: "tesla"})
	loaded := runUntil[messages.SummaryLoaded](t, cmd)
	app.Update(loaded)

	assert.Contains(t, app.View(), "tesla is a company...")
}

// runUntil executes cmd, expanding batches, and returns the first message of type T.
func runUntil[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case T:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func TestApp_EscFromAskReturnsToCompanies(t *testing.T) {
	app, _ := newTestApp(t)
	app.Update(messages.CompanySelected{Company: "tesla"})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCompanies}, msg)

	app.Update(msg)
	assert.Equal(t, messages.ViewCompanies, app.CurrentView())
}

func TestApp_HelpView(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Ask another question")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewCompanies, app.CurrentView())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_WithContext(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Same(t, app, app.WithContext(context.Background()))
}
