// Package companies provides the start view listing indexed companies.
package companies

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// View lists the indexed companies and lets the user pick one.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.CompanyList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new companies view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.CompaniesHelp())

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewCompanyList(s),
		statusbar: bar,
		retrieval: retrieval,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the company list.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetState(status.StateLoading)
	return v.loadCollections()
}

func (v *View) loadCollections() tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.CollectionsLoaded{}
		}
		infos, err := v.retrieval.Collections(v.ctx)
		return messages.CollectionsLoaded{Collections: infos, Err: err}
	}
}

// Update handles messages for the companies view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CollectionsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.list.SetItems(msg.Collections)
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("")
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Select):
		item := v.list.SelectedItem()
		if item == nil {
			return v, nil
		}
		company := item.Name
		return v, func() tea.Msg {
			return messages.CompanySelected{Company: company}
		}
	case keymap.Matches(keyStr, v.keymap.Refresh):
		return v, v.Init()
	case keymap.Matches(keyStr, v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(keyStr, v.keymap.Quit):
		return v, tea.Quit
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// View renders the companies view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Dossier"),
		"",
		lipgloss.NewStyle().Foreground(v.styles.Theme().Muted).Render("Company news intelligence"),
		"",
		v.list.View(),
		"",
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Companies returns the number of listed companies.
func (v *View) Companies() int {
	return v.list.Count()
}

// Selected returns the index of the selected company.
func (v *View) Selected() int {
	return v.list.Selected()
}

// Err returns the last load error, if any.
func (v *View) Err() error {
	return v.err
}
