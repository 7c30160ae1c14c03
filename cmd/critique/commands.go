package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillforge/critique/internal/critique"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		bookID    string
		chapterID string
		scope     string
		title     string
		genre     string
		focus     []string
		genreFit  bool
		similar   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <manuscript-file>",
		Short: "Run a full critique over a manuscript file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			text, err := readTextFile(args[0])
			if err != nil {
				return err
			}

			req := critique.AnalysisRequest{
				BookID:              bookID,
				ChapterID:           chapterID,
				Scope:               critique.AnalysisScope(scope),
				Text:                text,
				Title:               title,
				Genre:               genre,
				IncludeGenreFit:     genreFit,
				IncludeSimilarWorks: similar,
			}
			for _, f := range focus {
				req.FocusAreas = append(req.FocusAreas, critique.Category(f))
			}

			rec, err := svc.RunAnalysis(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printAnalysis(rec)
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "Book identifier (required)")
	cmd.Flags().StringVar(&chapterID, "chapter", "", "Chapter identifier (for chapter scope)")
	cmd.Flags().StringVar(&scope, "scope", string(critique.ScopeFullBook), "Analysis scope: FULL_BOOK, CHAPTER, or SELECTION")
	cmd.Flags().StringVar(&title, "title", "", "Manuscript title")
	cmd.Flags().StringVar(&genre, "genre", "", "Declared genre")
	cmd.Flags().StringSliceVar(&focus, "focus", nil, "Focus areas (category keys)")
	cmd.Flags().BoolVar(&genreFit, "genre-fit", false, "Include genre fit analysis")
	cmd.Flags().BoolVar(&similar, "similar-works", false, "Include similar works")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}

func newQuickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick <manuscript-file> <category>",
		Short: "Score a single category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			text, err := readTextFile(args[0])
			if err != nil {
				return err
			}

			result, err := svc.QuickAnalysis(cmd.Context(), text, critique.Category(args[1]))
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(result)
			}
			fmt.Printf("%s: %d/100\n\n%s\n", result.Category.Label(), result.Score, result.Feedback)
			for _, s := range result.Suggestions {
				fmt.Printf("  - %s\n", s)
			}
			return nil
		},
	}
	return cmd
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <before-file> <after-file>",
		Short: "Compare two versions of a manuscript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			before, err := readTextFile(args[0])
			if err != nil {
				return err
			}
			after, err := readTextFile(args[1])
			if err != nil {
				return err
			}

			cmp, err := svc.CompareVersions(cmd.Context(), before, after)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmp)
			}
			fmt.Printf("Improvement: %+d\n%s\n", cmp.Improvement, cmp.Summary)
			for _, a := range cmp.ChangedAspects {
				fmt.Printf("  %s: %+d  %s\n", a.Aspect.Label(), a.Delta, a.Note)
			}
			return nil
		},
	}
	return cmd
}

func newFixCmd() *cobra.Command {
	var (
		issueType string
		severity  string
		problem   string
	)

	cmd := &cobra.Command{
		Use:   "fix <excerpt-file>",
		Short: "Suggest rewrites for a flagged excerpt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			excerpt, err := readTextFile(args[0])
			if err != nil {
				return err
			}

			issue := critique.SpecificIssue{
				Type:        critique.IssueType(issueType),
				Severity:    critique.Severity(severity),
				Title:       critique.IssueType(issueType).Label(),
				Description: problem,
			}
			fix, err := svc.SuggestFix(cmd.Context(), excerpt, issue)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(fix)
			}
			for i, opt := range fix.RewriteOptions {
				fmt.Printf("Option %d:\n%s\n\n", i+1, opt)
			}
			fmt.Println(fix.Explanation)
			return nil
		},
	}

	cmd.Flags().StringVar(&issueType, "type", string(critique.IssueTellingNotShowing), "Issue type key")
	cmd.Flags().StringVar(&severity, "severity", string(critique.SeverityModerate), "Issue severity")
	cmd.Flags().StringVar(&problem, "problem", "", "Description of the problem")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		bookID    string
		chapterID string
		scope     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses for a book scope, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := svc.History(cmd.Context(), critique.ScopeKey{
				BookID:    bookID,
				Scope:     critique.AnalysisScope(scope),
				ChapterID: chapterID,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(records)
			}
			if len(records) == 0 {
				fmt.Println("No analyses found.")
				return nil
			}
			for _, rec := range records {
				marker := ""
				if rec.Degraded {
					marker = "  (degraded)"
				}
				fmt.Printf("%s  score %3d  issues %2d  %s%s\n",
					rec.CreatedAt.Format("2006-01-02 15:04"),
					rec.OverallScore, len(rec.Issues), rec.ID, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "Book identifier (required)")
	cmd.Flags().StringVar(&chapterID, "chapter", "", "Chapter identifier")
	cmd.Flags().StringVar(&scope, "scope", string(critique.ScopeFullBook), "Analysis scope")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}

func printAnalysis(rec *critique.ManuscriptAnalysis) error {
	if jsonOutput {
		return printJSON(rec)
	}
	if rec.Degraded {
		fmt.Println("Analysis could not be parsed; raw output follows.")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Println(rec.ExecutiveSummary)
		return nil
	}

	fmt.Printf("Overall: %d/100  (%d words analyzed)\n\n", rec.OverallScore, rec.WordCountAnalyzed)
	for _, cat := range critique.Categories {
		fmt.Printf("  %-24s %3d\n", cat.Label(), rec.Scores[cat])
	}
	fmt.Printf("\n%s\n", rec.ExecutiveSummary)

	if len(rec.Issues) > 0 {
		fmt.Println("\nIssues:")
		for _, issue := range rec.Issues {
			fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.Type.Label(), issue.Title)
		}
	}
	if len(rec.PriorityActions) > 0 {
		fmt.Println("\nPriority actions:")
		for _, action := range rec.PriorityActions {
			fmt.Printf("  %d. %s (impact %s, effort %s)\n",
				action.Priority, action.Action, action.Impact, action.Effort)
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
