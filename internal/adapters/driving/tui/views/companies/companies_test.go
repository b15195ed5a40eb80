package companies

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

type stubRetrieval struct {
	infos []domain.CollectionInfo
	err   error
}

func (s stubRetrieval) Search(context.Context, string, string, int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (s stubRetrieval) Collections(context.Context) ([]domain.CollectionInfo, error) {
	return s.infos, s.err
}

func loadedView(t *testing.T, r stubRetrieval) *View {
	t.Helper()
	v := NewView(nil, nil, r)
	v.SetDimensions(80, 24)
	msg := v.Init()()
	v.Update(msg)
	return v
}

func TestView_LoadsCollections(t *testing.T) {
	v := loadedView(t, stubRetrieval{infos: []domain.CollectionInfo{
		{Name: "tesla", ChunkCount: 21, SourceCount: 5},
		{Name: "nvidia", ChunkCount: 9, SourceCount: 2},
	}})

	assert.Equal(t, 2, v.Companies())
	view := v.View()
	assert.Contains(t, view, "Companies (2)")
	assert.Contains(t, view, "21 chunks from 5 articles")
}

func TestView_LoadError(t *testing.T) {
	v := loadedView(t, stubRetrieval{err: errors.New("locked")})

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "Error: locked")
}

func TestView_Empty(t *testing.T) {
	v := loadedView(t, stubRetrieval{})

	assert.Contains(t, v.View(), "No indexed companies")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_SelectCompany(t *testing.T) {
	v := loadedView(t, stubRetrieval{infos: []domain.CollectionInfo{{Name: "tesla"}, {Name: "nvidia"}}})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, v.Selected())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.CompanySelected{Company: "nvidia"}, cmd())
}

func TestView_HelpAndQuit(t *testing.T) {
	v := loadedView(t, stubRetrieval{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
