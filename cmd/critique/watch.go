package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quillforge/critique/internal/critique"
)

// newWatchCmd re-runs the full analysis whenever the manuscript file changes.
// The watcher is an external scheduler invoking the same RunAnalysis entry
// point the dashboard uses; the pipeline itself carries no timers.
func newWatchCmd() *cobra.Command {
	var (
		bookID   string
		genre    string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <manuscript-file>",
		Short: "Re-analyze a manuscript whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			path := args[0]
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer watcher.Close()
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}

			run := func() {
				text, err := readTextFile(path)
				if err != nil {
					slog.Error("reading manuscript failed", "error", err)
					return
				}
				rec, err := svc.RunAnalysis(cmd.Context(), critique.AnalysisRequest{
					BookID: bookID,
					Scope:  critique.ScopeFullBook,
					Genre:  genre,
					Text:   text,
				})
				if err != nil {
					slog.Error("analysis failed", "error", err)
					return
				}
				fmt.Printf("%s  score %d  issues %d\n",
					rec.CreatedAt.Format(time.TimeOnly), rec.OverallScore, len(rec.Issues))
			}

			run()

			var timer *time.Timer
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					// Editors fire bursts of writes on save; collapse them.
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounce, run)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					slog.Error("watch error", "error", err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "Book identifier (required)")
	cmd.Flags().StringVar(&genre, "genre", "", "Declared genre")
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "Delay after last write before re-analyzing")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}
