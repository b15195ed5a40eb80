package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:     "indexes",
	Aliases: []string{"ls"},
	Short:   "List indexed companies",
	Args:    cobra.NoArgs,
	RunE:    runIndexes,
}

func init() {
	indexesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(indexesCmd)
}

func runIndexes(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	infos, err := retrievalService.Collections(cmd.Context())
	if err != nil {
		return report(cmd, "list indexes", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal indexes: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(infos) == 0 {
		cmd.Println("No indexes yet. Run 'dossier update <company>' to create one.")
		return nil
	}

	cmd.Printf("%-20s %8s %8s  %-24s %s\n", "COMPANY", "CHUNKS", "SOURCES", "MODEL", "UPDATED")
	for _, info := range infos {
		cmd.Printf("%-20s %8d %8d  %-24s %s\n",
			info.Name, info.ChunkCount, info.SourceCount, info.EmbeddingModel,
			info.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
