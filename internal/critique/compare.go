package critique

import (
	"context"
	"fmt"
	"strings"
)

// CompareVersions asks the completion capability how a revision changed the
// manuscript. Advisory and non-blocking: a malformed reply yields the
// zero-valued comparison, never an error.
func (s *Service) CompareVersions(ctx context.Context, before, after string) (*VersionComparison, error) {
	if strings.TrimSpace(before) == "" {
		return nil, newValidationError("before", "original text must not be empty")
	}
	if strings.TrimSpace(after) == "" {
		return nil, newValidationError("after", "revised text must not be empty")
	}

	system, user := CompileComparePrompt(Sample(before, s.tokenBudget/2), Sample(after, s.tokenBudget/2))
	raw, err := s.gateway.Complete(ctx, system, user, s.maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	var cmp VersionComparison
	if fail := Decode(raw, &cmp); fail != nil {
		s.logger.Warn("version comparison extraction failed", "reason", fail.Reason)
		return &VersionComparison{ChangedAspects: []AspectDelta{}}, nil
	}

	cmp.Improvement = clampRange(cmp.Improvement, -100, 100)
	for i := range cmp.ChangedAspects {
		cmp.ChangedAspects[i].Delta = clampRange(cmp.ChangedAspects[i].Delta, -10, 10)
	}
	return &cmp, nil
}

// fixOptionCount is the number of alternative rewrites requested and kept.
const fixOptionCount = 3

// SuggestFix asks for alternative rewrites of a flagged excerpt. Advisory:
// a malformed reply yields the empty suggestion, never an error.
func (s *Service) SuggestFix(ctx context.Context, excerpt string, issue SpecificIssue) (*FixSuggestion, error) {
	if strings.TrimSpace(excerpt) == "" {
		return nil, newValidationError("excerpt", "excerpt must not be empty")
	}

	system, user := CompileFixPrompt(excerpt, issue)
	raw, err := s.gateway.Complete(ctx, system, user, s.maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	var fix FixSuggestion
	if fail := Decode(raw, &fix); fail != nil {
		s.logger.Warn("fix suggestion extraction failed", "reason", fail.Reason)
		return &FixSuggestion{RewriteOptions: []string{}}, nil
	}
	if len(fix.RewriteOptions) > fixOptionCount {
		fix.RewriteOptions = fix.RewriteOptions[:fixOptionCount]
	}
	return &fix, nil
}

func clampRange(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
