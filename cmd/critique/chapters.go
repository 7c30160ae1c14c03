package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillforge/critique/internal/critique"
)

// newChaptersCmd analyzes every chapter file in a directory concurrently.
// Files are treated as chapters in lexical order; the file stem becomes the
// chapter id.
func newChaptersCmd() *cobra.Command {
	var (
		bookID string
		genre  string
	)

	cmd := &cobra.Command{
		Use:   "chapters <directory>",
		Short: "Analyze every chapter file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			chapters, err := loadChapterFiles(args[0])
			if err != nil {
				return err
			}
			if len(chapters) == 0 {
				return fmt.Errorf("no .txt or .md chapter files in %s", args[0])
			}

			results, err := svc.AnalyzeChapters(cmd.Context(), bookID, genre, chapters)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(results)
			}
			for _, rec := range results {
				fmt.Printf("%-20s score %3d  issues %2d\n",
					rec.ChapterID, rec.OverallScore, len(rec.Issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "Book identifier (required)")
	cmd.Flags().StringVar(&genre, "genre", "", "Declared genre")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}

func loadChapterFiles(dir string) ([]critique.ChapterText, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var chapters []critique.ChapterText
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".txt" && ext != ".md" {
			continue
		}
		text, err := readTextFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(entry.Name(), ext)
		chapters = append(chapters, critique.ChapterText{
			ChapterID: stem,
			Title:     stem,
			Text:      text,
		})
	}
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].ChapterID < chapters[j].ChapterID
	})
	return chapters, nil
}
