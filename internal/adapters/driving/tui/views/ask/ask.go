// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// summaryPreview is the number of runes of the company summary shown in the header.
const summaryPreview = 240

// View shows a question input above a scrollable answer with its sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answerBox viewport.Model
	spinner   spinner.Model
	statusbar *status.Bar

	answerService driving.AnswerService
	infoService   driving.InfoService
	ctx           context.Context

	company  string
	summary  *domain.CompanySummary
	answer   *domain.Answer
	notice   string
	thinking bool

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a new ask view. infoService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
	infoService driving.InfoService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		answerBox:     viewport.New(80, 10),
		spinner:       sp,
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		infoService:   infoService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// SetCompany binds the view to a company, clears any previous answer and
// loads the company summary when an info service is available.
func (v *View) SetCompany(company string) tea.Cmd {
	v.Reset()
	v.company = company
	v.summary = nil
	v.input.SetCompany(company)

	if v.infoService == nil || company == "" {
		return v.Init()
	}
	info := v.infoService
	ctx := v.ctx
	return tea.Batch(v.Init(), func() tea.Msg {
		summary, err := info.Summary(ctx, company)
		return messages.SummaryLoaded{Company: company, Summary: summary, Err: err}
	})
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.SummaryLoaded:
		// A missing summary is not worth reporting.
		if msg.Err == nil && msg.Company == v.company {
			v.summary = msg.Summary
		}
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.thinking = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewCompanies}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(v.input.Value())
			if question == "" || v.thinking {
				return v, nil
			}
			return v, v.submit(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuestion) {
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	// Reading mode: everything else scrolls the answer.
	var cmd tea.Cmd
	v.answerBox, cmd = v.answerBox.Update(msg)
	return v, cmd
}

func (v *View) submit(question string) tea.Cmd {
	v.thinking = true
	v.err = nil
	v.notice = ""
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.focusInput = false
	v.input.Blur()
	return tea.Batch(v.spinner.Tick, v.performAsk(question))
}

func (v *View) performAsk(question string) tea.Cmd {
	service := v.answerService
	ctx := v.ctx
	company := v.company
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		if company == "" {
			return messages.ErrorOccurred{Err: ErrNoCompany}
		}
		answer, err := service.Ask(ctx, domain.AskRequest{
			Question: question,
			Company:  company,
			TopK:     domain.DefaultTopK,
		})
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if !v.thinking {
		return
	}
	v.thinking = false

	if msg.Err != nil {
		v.answer = nil
		if notice := noticeFor(msg.Err); notice != "" {
			v.notice = notice
			v.statusbar.SetState(status.StateReady)
			v.statusbar.SetMessage("")
			v.focusInput = true
			v.input.Focus()
			return
		}
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetCitationCount(len(msg.Answer.Citations))
	v.answerBox.SetContent(v.renderAnswer())
	v.answerBox.GotoTop()
}

// noticeFor returns a friendly message for expected outcomes, or "" for real errors.
func noticeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoContext):
		return "No relevant context found in the index for that question."
	case errors.Is(err, domain.ErrIndexNotFound):
		return "This company has no index yet. Run 'dossier update <company>' first."
	}
	return ""
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

func (v *View) renderAnswer() string {
	if v.answer == nil {
		return ""
	}
	width := v.answerBox.Width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(v.styles.Answer.Width(width).Render(v.answer.Text))

	if len(v.answer.Citations) > 0 {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Sources"))
		for _, c := range v.answer.Citations {
			b.WriteString("\n")
			b.WriteString(v.styles.CitationNumber.Render(fmt.Sprintf("[%d]", c.Number)))
			b.WriteString(" ")
			title := c.Title
			if title == "" {
				title = c.URL
			}
			b.WriteString(v.styles.Normal.Render(title))
			if c.Title != "" {
				b.WriteString("\n    ")
				b.WriteString(v.styles.Link.Render(c.URL))
			}
		}
	}
	if v.answer.Model != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("Answered by " + v.answer.Model))
	}
	return b.String()
}

func (v *View) renderHeader() string {
	title := "Dossier"
	if v.company != "" {
		title += " / " + v.company
	}
	header := v.styles.Title.Render(title)
	if v.summary == nil || v.summary.Extract == "" {
		return header
	}

	extract := []rune(v.summary.Extract)
	if len(extract) > summaryPreview {
		extract = append(extract[:summaryPreview], []rune("...")...)
	}
	width := v.width - 2
	if width < 20 {
		width = 20
	}
	return header + "\n" + v.styles.Muted.Width(width).Render(string(extract))
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.renderHeader(), "", v.input.View(), "")

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Reading the news..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.notice != "":
		sections = append(sections, v.styles.Warning.Render(v.notice))
	case v.answer != nil:
		sections = append(sections, v.answerBox.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Reserve space for header, summary, input and status bar.
	boxHeight := height - 12
	if boxHeight < 3 {
		boxHeight = 3
	}
	v.answerBox.Width = width
	v.answerBox.Height = boxHeight
	if v.answer != nil {
		v.answerBox.SetContent(v.renderAnswer())
	}
}

// Reset clears the question and answer and focuses the input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.answer = nil
	v.notice = ""
	v.thinking = false
	v.err = nil
	v.answerBox.SetContent("")
	v.statusbar.Clear()
}

// Company returns the company questions are asked about.
func (v *View) Company() string {
	return v.company
}

// Question returns the current input value.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the input value.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Summary returns the loaded company summary, or nil.
func (v *View) Summary() *domain.CompanySummary {
	return v.summary
}

// Notice returns the informational message shown instead of an answer.
func (v *View) Notice() string {
	return v.notice
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
