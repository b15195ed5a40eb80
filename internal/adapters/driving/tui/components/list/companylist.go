// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/dossier/internal/core/domain"
)

// CompanyList displays indexed companies in a navigable list.
type CompanyList struct {
	items    []domain.CollectionInfo
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewCompanyList creates a new company list component.
func NewCompanyList(s *styles.Styles) *CompanyList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CompanyList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (c *CompanyList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *CompanyList) Update(msg tea.Msg) (*CompanyList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the list.
func (c *CompanyList) View() string {
	if len(c.items) == 0 {
		return c.styles.Muted.Render("No indexed companies. Run 'dossier update <company>' first.")
	}

	lines := make([]string, 0, len(c.items)+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Companies (%d)", len(c.items))), "")

	// Each company takes two lines. Scroll so the selection stays visible.
	visible := (c.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if c.selected >= visible {
		start = c.selected - visible + 1
	}
	end := start + visible
	if end > len(c.items) {
		end = len(c.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, c.renderItem(i, &c.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (c *CompanyList) renderItem(index int, info *domain.CollectionInfo) string {
	indicator := "  "
	name := c.styles.Normal.Render(info.Name)
	if index == c.selected {
		indicator = "> "
		name = c.styles.Selected.Render(info.Name)
	}

	detail := fmt.Sprintf("    %d chunks from %d articles", info.ChunkCount, info.SourceCount)
	if !info.CreatedAt.IsZero() {
		detail += ", updated " + info.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	return indicator + name + "\n" + c.styles.Muted.Render(detail)
}

// SetItems replaces the listed companies and resets the selection.
func (c *CompanyList) SetItems(items []domain.CollectionInfo) {
	c.items = items
	c.selected = 0
}

// Items returns the listed companies.
func (c *CompanyList) Items() []domain.CollectionInfo {
	return c.items
}

// Selected returns the index of the selected company.
func (c *CompanyList) Selected() int {
	return c.selected
}

// SelectedItem returns the selected company, or nil if the list is empty.
func (c *CompanyList) SelectedItem() *domain.CollectionInfo {
	if c.selected < 0 || c.selected >= len(c.items) {
		return nil
	}
	return &c.items[c.selected]
}

// MoveUp moves selection up.
func (c *CompanyList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *CompanyList) MoveDown() {
	if c.selected < len(c.items)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *CompanyList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Count returns the number of companies.
func (c *CompanyList) Count() int {
	return len(c.items)
}

// IsEmpty returns whether the list is empty.
func (c *CompanyList) IsEmpty() bool {
	return len(c.items) == 0
}
