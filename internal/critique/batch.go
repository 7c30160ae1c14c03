package critique

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ChapterText is one chapter submitted for batch analysis.
type ChapterText struct {
	ChapterID string
	Title     string
	Text      string
}

// AnalyzeChapters runs independent chapter analyses concurrently, capped at
// the service's concurrency limit. Chapters share no mutable state; each
// analysis persists its own record. The first failure cancels the remaining
// chapters.
func (s *Service) AnalyzeChapters(ctx context.Context, bookID, genre string, chapters []ChapterText) ([]*ManuscriptAnalysis, error) {
	results := make([]*ManuscriptAnalysis, len(chapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, ch := range chapters {
		i, ch := i, ch
		g.Go(func() error {
			rec, err := s.RunAnalysis(gctx, AnalysisRequest{
				BookID:    bookID,
				ChapterID: ch.ChapterID,
				Scope:     ScopeChapter,
				Title:     ch.Title,
				Genre:     genre,
				Text:      ch.Text,
			})
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
