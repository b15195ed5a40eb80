// Package cli implements the dossier command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose bool
	quiet   bool
)

// Services used by commands. Set by main via SetServices.
var (
	ingestionService  driving.IngestionService
	dryRunService     driving.IngestionService
	answerService     driving.AnswerService
	retrievalService  driving.RetrievalService
	infoService       driving.InfoService
	runHistoryService driving.RunHistoryService
	settingsService   driving.SettingsService
	scheduler         driving.Scheduler
)

// Services groups the driving ports the CLI needs.
// Any field may be nil; commands that need a missing service fail with
// a "not configured" error.
type Services struct {
	Ingestion  driving.IngestionService
	DryRun     driving.IngestionService // ingests without writing to disk
	Answer     driving.AnswerService
	Retrieval  driving.RetrievalService
	Info       driving.InfoService
	RunHistory driving.RunHistoryService
	Settings   driving.SettingsService
	Scheduler  driving.Scheduler
}

// SetServices installs the services used by commands.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	dryRunService = s.DryRun
	answerService = s.Answer
	retrievalService = s.Retrieval
	infoService = s.Info
	runHistoryService = s.RunHistory
	settingsService = s.Settings
	scheduler = s.Scheduler
}

// SetVersion sets the version reported by "dossier version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Company news intelligence assistant",
	Long: `Dossier indexes recent news about a company and answers questions
about it with inline citations.

Example usage:
  dossier update Tesla                      # Fetch and index recent news
  dossier ask "What did Tesla announce?" -c Tesla
  dossier info Tesla --ticker TSLA          # Encyclopedia summary and quote`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetQuiet(quiet)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress warnings")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// report prints expected outcomes as informational messages and wraps
// everything else as "<action> failed".
func report(cmd *cobra.Command, action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		cmd.Println("No index found. Run 'dossier update <company>' first.")
		return nil
	case errors.Is(err, domain.ErrNoContext):
		cmd.Println("No relevant context found in the index for that question.")
		return nil
	case errors.Is(err, domain.ErrExternalAPI):
		cmd.Printf("External service error: %v\n", err)
		return nil
	}
	return fmt.Errorf("%s failed: %w", action, err)
}
