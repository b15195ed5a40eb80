package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a company's recent news",
	Long: `Answers a question using only the company's indexed news.
The answer cites its sources inline as [1], [2] and lists them below.

Run 'dossier update <company>' first to build the index.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("company", "c", "", "company to ask about (required)")
	askCmd.Flags().IntP("top-k", "k", domain.DefaultTopK,
		fmt.Sprintf("number of chunks used as context (%d-%d)", domain.MinTopK, domain.MaxTopK))
	askCmd.Flags().Bool("json", false, "output the answer as JSON")
	_ = askCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	company, _ := cmd.Flags().GetString("company")
	topK, _ := cmd.Flags().GetInt("top-k")
	asJSON, _ := cmd.Flags().GetBool("json")

	answer, err := answerService.Ask(cmd.Context(), domain.AskRequest{
		Question: args[0],
		Company:  company,
		TopK:     topK,
	})
	if err != nil {
		return report(cmd, "ask", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range answer.Citations {
			if c.Title != "" {
				cmd.Printf("  [%d] %s\n      %s\n", c.Number, c.Title, c.URL)
			} else {
				cmd.Printf("  [%d] %s\n", c.Number, c.URL)
			}
		}
	}
	return nil
}
