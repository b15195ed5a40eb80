package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `View and manage settings in ~/.dossier/config.toml.

API keys may also come from the environment (NEWS_API_KEY, GROQ_API_KEY,
OPENAI_API_KEY) or a .env file in the working directory.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		cmd.Println(settingsService.Path())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check settings and credentials",
	Long: `Reports missing credentials. With --ping, also calls the embedding
and chat endpoints to confirm they are reachable.`,
	RunE: runConfigCheck,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding [provider]",
	Short: "Set the embedding provider",
	Long: `Set the embedding provider used for new indexes.

Available providers:
  openai - OpenAI-compatible cloud API (requires --api-key)
  ollama - Local Ollama instance
  hash   - Offline deterministic embeddings, for testing

Existing indexes keep the model they were built with; run 'dossier update'
to rebuild them after switching.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigEmbedding,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCheckCmd.Flags().Bool("ping", false, "call the AI endpoints")
	configEmbeddingCmd.Flags().String("model", "", "model name (default depends on provider)")
	configEmbeddingCmd.Flags().String("api-key", "", "API key for cloud providers")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", settingsService.Path())
	cmd.Println()

	cmd.Println("[News]")
	cmd.Printf("  Base URL: %s\n", cfg.News.BaseURL)
	cmd.Printf("  API Key: %s\n", showKey(cfg.News.APIKey))
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Max articles: %d\n", cfg.Ingest.MaxArticles)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	cmd.Printf("  Min article chars: %d\n", cfg.Ingest.MinArticleChars)
	if len(cfg.Ingest.BlockedHosts) > 0 {
		cmd.Printf("  Blocked hosts: %s\n", strings.Join(cfg.Ingest.BlockedHosts, ", "))
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", cfg.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", cfg.Embedding.Model)
	if cfg.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", showKey(cfg.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(cfg.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Model: %s\n", cfg.LLM.Model)
	cmd.Printf("  Base URL: %s\n", cfg.LLM.BaseURL)
	cmd.Printf("  API Key: %s\n", showKey(cfg.LLM.APIKey))
	cmd.Printf("  Status: %s\n", configuredStatus(cfg.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Watch]")
	if len(cfg.Watch.Companies) == 0 {
		cmd.Println("  Companies: (none)")
	} else {
		cmd.Printf("  Companies: %s\n", strings.Join(cfg.Watch.Companies, ", "))
	}
	cmd.Printf("  Interval: %s\n", cfg.Watch.Interval.Std())
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'dossier config check' for details.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	path := settingsService.Path()
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		cmd.Printf("Config file already exists at %s (use --force to overwrite).\n", path)
		return nil
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	cmd.Printf("Wrote default settings to %s\n", path)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	problems := 0
	if err := settingsService.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			cmd.Printf("  x %s\n", line)
			problems++
		}
	}

	if ping, _ := cmd.Flags().GetBool("ping"); ping {
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			cmd.Printf("  x embedding: %v\n", err)
			problems++
		} else {
			cmd.Println("  ok embedding endpoint reachable")
		}
		if err := settingsService.ValidateLLMConfig(); err != nil {
			cmd.Printf("  x llm: %v\n", err)
			problems++
		} else {
			cmd.Println("  ok chat endpoint reachable")
		}
	}

	if problems > 0 {
		return fmt.Errorf("config check failed: %d problem(s)", problems)
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to set embedding provider: %w", err)
	}
	cmd.Printf("Embedding provider set to %s\n", provider.Description())
	return nil
}

func showKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
