package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/views/companies"
)

// App is the main TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	companiesView *companies.View
	askView       *ask.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		companiesView: companies.NewView(s, km, ports.Retrieval),
		askView:       ask.NewView(s, km, ports.Answer, ports.Info),
		currentView:   messages.ViewCompanies,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.companiesView.WithContext(ctx)
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("dossier"),
		a.companiesView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.currentView {
		case messages.ViewCompanies:
			a.companiesView, cmd = a.companiesView.Update(msg)
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
			a.err = a.askView.Err()
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" || msg.String() == "?" {
				a.currentView = messages.ViewCompanies
			}
		}
		return a, cmd

	case messages.CollectionsLoaded:
		a.companiesView, cmd = a.companiesView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.CompanySelected:
		a.currentView = messages.ViewAsk
		return a, a.askView.SetCompany(msg.Company)

	case messages.AnswerCompleted, messages.SummaryLoaded:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewCompanies {
			// Indexes may have been rebuilt since the list was loaded.
			return a, a.companiesView.Init()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewAsk {
			a.askView, cmd = a.askView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Spinner ticks and cursor blinks go to the active view.
	switch a.currentView {
	case messages.ViewCompanies:
		a.companiesView, cmd = a.companiesView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.companiesView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Companies:
  j/k, ↑/↓    Navigate companies
  enter       Ask about the selected company
  r           Reload the list
  q           Quit

Ask:
  (type)      Enter a question
  enter       Submit the question
  j/k, ↑/↓    Scroll the answer
  n           Ask another question
  esc         Back to companies

` + a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Company returns the company selected in the ask view.
func (a *App) Company() string {
	return a.askView.Company()
}

// AskView returns the ask view.
func (a *App) AskView() *ask.View {
	return a.askView
}

// CompaniesView returns the companies view.
func (a *App) CompaniesView() *companies.View {
	return a.companiesView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.companiesView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
}
