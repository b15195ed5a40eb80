package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
)

// progressPoll is how often the progress bar reads the run status.
const progressPoll = 200 * time.Millisecond

var updateCmd = &cobra.Command{
	Use:     "update [company]",
	Aliases: []string{"ingest"},
	Short:   "Fetch and index recent news for a company",
	Long: `Fetch recent news articles about a company, scrape their text,
and rebuild the company's index from scratch.

Articles with too little text are skipped. If no article survives, the
existing index is left untouched.

With --dry-run the collection is built in memory and discarded, so you can
check what an update would index without touching the stored index.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().IntP("max", "n", 0, "maximum number of articles to fetch (0 = configured default)")
	updateCmd.Flags().Bool("json", false, "print the run as JSON")
	updateCmd.Flags().Bool("no-progress", false, "disable the progress bar")
	updateCmd.Flags().Bool("dry-run", false, "build the index in memory without writing it")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	svc := ingestionService
	if dryRun {
		svc = dryRunService
	}
	if svc == nil {
		return errors.New("ingestion service not configured")
	}

	company := args[0]
	maxArticles, _ := cmd.Flags().GetInt("max")
	asJSON, _ := cmd.Flags().GetBool("json")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	ctx := cmd.Context()
	if !asJSON && !noProgress && isTerminal(cmd.OutOrStdout()) {
		stop := showProgress(ctx, svc, company)
		defer stop()
	}

	run, err := svc.Ingest(ctx, company, maxArticles)
	if err != nil {
		if errors.Is(err, domain.ErrNoUsableArticles) && run != nil {
			cmd.Printf("No usable articles for %s (%d fetched). The existing index was not changed.\n",
				run.Company, run.ArticlesFetched)
		}
		return report(cmd, "update", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode run: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if dryRun {
		cmd.Printf("Dry run: %d chunks from %d of %d articles for %s in %s. Nothing was written.\n",
			run.ChunksIndexed, run.ArticlesUsable, run.ArticlesFetched, run.Company,
			run.Duration().Round(time.Millisecond))
		return nil
	}
	cmd.Printf("Indexed %d chunks from %d of %d articles for %s in %s\n",
		run.ChunksIndexed, run.ArticlesUsable, run.ArticlesFetched, run.Company,
		run.Duration().Round(time.Millisecond))
	return nil
}

// showProgress polls the run status and renders scrape progress on stderr
// until the returned function is called.
func showProgress(ctx context.Context, svc driving.IngestionService, company string) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		var bar *progressbar.ProgressBar
		ticker := time.NewTicker(progressPoll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				if bar != nil {
					_ = bar.Finish()
				}
				return
			case <-ticker.C:
			}

			run, err := svc.Status(ctx, company)
			total := progressTotal(run)
			if err != nil || total == 0 {
				continue
			}
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("[cyan]Scraping[reset]"),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "[green]=[reset]",
						SaucerHead:    "[green]>[reset]",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(os.Stderr)
					}),
				)
			}
			bar.Describe(fmt.Sprintf("[cyan]%s[reset]", run.State))
			_ = bar.Set(run.ArticlesScraped)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// progressTotal is the number of pages the run will scrape, or 0 before
// screening has finished.
func progressTotal(run *domain.IngestRun) int {
	if run == nil {
		return 0
	}
	return run.ArticlesScreened
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
