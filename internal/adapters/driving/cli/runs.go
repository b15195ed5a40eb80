package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs [company]",
	Short: "Show ingestion run history",
	Long: `Lists recent ingestion runs, newest first. Pass a company to only
show its runs, or use 'dossier runs show <id>' for one run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one ingestion run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "maximum number of runs")
	runsCmd.Flags().Bool("json", false, "output as JSON")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	if runHistoryService == nil {
		return errors.New("run history service not configured")
	}

	company := ""
	if len(args) == 1 {
		company = args[0]
	}
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := runHistoryService.List(cmd.Context(), company, limit)
	if err != nil {
		return fmt.Errorf("list runs failed: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Printf("%-36s %-16s %-10s %-16s %7s %s\n", "ID", "COMPANY", "STATE", "STARTED", "CHUNKS", "DURATION")
	for i := range runs {
		r := &runs[i]
		cmd.Printf("%-36s %-16s %-10s %-16s %7d %s\n",
			r.ID, r.Company, r.State, r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.ChunksIndexed, formatRunDuration(r))
		if r.Error != "" {
			cmd.Printf("  error: %s\n", r.Error)
		}
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runHistoryService == nil {
		return errors.New("run history service not configured")
	}

	run, err := runHistoryService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("Run %s not found.\n", args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("get run failed: %w", err)
	}

	cmd.Printf("ID:        %s\n", run.ID)
	cmd.Printf("Company:   %s\n", run.Company)
	cmd.Printf("State:     %s\n", run.State)
	cmd.Printf("Started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if !run.EndedAt.IsZero() {
		cmd.Printf("Ended:     %s\n", run.EndedAt.Local().Format(time.RFC3339))
	}
	cmd.Printf("Articles:  %d fetched, %d scraped, %d usable\n",
		run.ArticlesFetched, run.ArticlesScraped, run.ArticlesUsable)
	cmd.Printf("Chunks:    %d\n", run.ChunksIndexed)
	if run.Error != "" {
		cmd.Printf("Error:     %s\n", run.Error)
	}
	return nil
}

func formatRunDuration(r *domain.IngestRun) string {
	if r.EndedAt.IsZero() {
		return "running"
	}
	return r.Duration().Round(time.Millisecond).String()
}
