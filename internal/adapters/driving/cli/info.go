package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

var infoCmd = &cobra.Command{
	Use:   "info [company]",
	Short: "Show a company summary and stock quote",
	Long: `Shows an encyclopedia summary for the company and, when --ticker is
given, its latest stock quote. Results are cached for a short while.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringP("ticker", "t", "", "stock ticker symbol, e.g. TSLA")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	if infoService == nil {
		return errors.New("info service not configured")
	}

	ctx := cmd.Context()
	company := args[0]
	ticker, _ := cmd.Flags().GetString("ticker")

	summary, err := infoService.Summary(ctx, company)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cmd.Printf("No summary found for %s.\n", company)
	case err != nil:
		if err := report(cmd, "summary", err); err != nil {
			return err
		}
	default:
		cmd.Println(summary.Title)
		cmd.Println(strings.Repeat("=", len([]rune(summary.Title))))
		cmd.Println(summary.Extract)
		if summary.URL != "" {
			cmd.Printf("Read more: %s\n", summary.URL)
		}
	}

	if ticker == "" {
		return nil
	}
	cmd.Println()

	quote, err := infoService.Quote(ctx, ticker)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cmd.Printf("No quote found for %s.\n", strings.ToUpper(ticker))
		return nil
	case err != nil:
		return report(cmd, "quote", err)
	}

	printQuote(cmd, quote)
	return nil
}

func printQuote(cmd *cobra.Command, q *domain.StockQuote) {
	cmd.Printf("[%s]", q.Ticker)
	if q.Currency != "" {
		cmd.Printf(" %s", q.Currency)
	}
	cmd.Println()
	cmd.Printf("  Price:          %.2f", q.CurrentPrice)
	if change := q.Change(); change != 0 {
		cmd.Printf(" (%+.2f, %+.2f%%)", change, change/q.PreviousClose*100)
	}
	cmd.Println()
	cmd.Printf("  Previous close: %.2f\n", q.PreviousClose)
	cmd.Printf("  Open:           %.2f\n", q.Open)
	cmd.Printf("  Day range:      %.2f - %.2f\n", q.DayLow, q.DayHigh)
	cmd.Printf("  Volume:         %d\n", q.Volume)
	if q.MarketCap > 0 {
		cmd.Printf("  Market cap:     %d\n", q.MarketCap)
	}
	if n := len(q.History); n > 0 {
		first, last := q.History[0], q.History[n-1]
		cmd.Printf("  History:        %d days, %.2f on %s to %.2f on %s\n",
			n, first.Close, first.Date.Format("2006-01-02"), last.Close, last.Date.Format("2006-01-02"))
	}
}
