package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/adapters/driving/tui"
	"github.com/custodia-labs/dossier/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch an interactive terminal UI for asking questions about
indexed companies.

Controls:
  ↑/k, ↓/j - Navigate companies / scroll the answer
  Enter    - Select / Ask
  n        - New question
  Esc      - Back
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if !isTerminal(os.Stdout) {
		return errors.New("the TUI needs an interactive terminal; use 'dossier ask' instead")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	// Warnings on stderr would tear the alternate screen.
	logger.SetQuiet(true)
	defer logger.SetQuiet(quiet)

	app, err := tui.NewApp(&tui.Ports{
		Answer:    answerService,
		Retrieval: retrievalService,
		Info:      infoService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.WithContext(cmd.Context()).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
