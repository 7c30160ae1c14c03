package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillforge/critique/internal/agent"
	"github.com/quillforge/critique/internal/config"
	"github.com/quillforge/critique/internal/critique"
	"github.com/quillforge/critique/internal/storage"
)

var (
	jsonOutput bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "critique",
		Short: "Manuscript critique pipeline",
		Long: `Critique analyzes manuscript text with an external completion
capability and produces structured, scored, machine-readable feedback.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newQuickCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newFixCmd())
	rootCmd.AddCommand(newChaptersCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newService wires the full pipeline from configuration: gateway selection,
// sqlite store, raw-response archive.
func newService() (*critique.Service, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.OpenSQLite(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	gateway := agent.NewCachedClient(agent.NewFromConfig(cfg, logger), 10*time.Minute, 64)
	svc := critique.NewService(gateway, store,
		critique.WithArchive(storage.NewArchive(cfg.Storage.ArchiveDir)),
		critique.WithTokenBudget(cfg.Limits.TokenBudget),
		critique.WithMaxOutputTokens(cfg.Limits.MaxOutputTokens),
		critique.WithConcurrency(cfg.Limits.MaxConcurrentChapters),
		critique.WithLogger(logger),
	)

	cleanup := func() {
		_ = store.Close()
	}
	return svc, cleanup, nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
