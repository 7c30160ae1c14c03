package critique

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Completer is the injected completion gateway. Implementations retry and
// rate-limit internally; this package never assumes schema compliance from
// the returned text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error)
}

// Store is the injected persistence collaborator. The pipeline performs a
// single write per invocation and adds no retry logic of its own.
type Store interface {
	UpsertAnalysis(ctx context.Context, rec *ManuscriptAnalysis) error
	GetLatestAnalysis(ctx context.Context, key ScopeKey) (*ManuscriptAnalysis, error)
	ListAnalyses(ctx context.Context, key ScopeKey) ([]*ManuscriptAnalysis, error)
}

// ArtifactStore receives raw completion text for degraded records so a human
// can review what could not be parsed.
type ArtifactStore interface {
	Save(ctx context.Context, path string, data []byte) error
}

var validate = validator.New()

// Service orchestrates the critique pipeline: sample, compile, invoke,
// extract, normalize, rank, persist.
type Service struct {
	gateway         Completer
	store           Store
	archive         ArtifactStore
	tokenBudget     int
	maxOutputTokens int
	maxConcurrent   int
	logger          *slog.Logger
}

type ServiceOption func(*Service)

// WithArchive attaches the raw-response artifact store.
func WithArchive(archive ArtifactStore) ServiceOption {
	return func(s *Service) {
		s.archive = archive
	}
}

// WithTokenBudget sets the sampling budget in tokens.
func WithTokenBudget(tokens int) ServiceOption {
	return func(s *Service) {
		s.tokenBudget = tokens
	}
}

// WithMaxOutputTokens bounds the completion reply size.
func WithMaxOutputTokens(tokens int) ServiceOption {
	return func(s *Service) {
		s.maxOutputTokens = tokens
	}
}

// WithConcurrency caps parallel chapter analyses in batch runs.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger.With("component", "critique_service")
	}
}

func NewService(gateway Completer, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		gateway:         gateway,
		store:           store,
		tokenBudget:     24000,
		maxOutputTokens: 8192,
		maxConcurrent:   4,
		logger:          slog.Default().With("component", "critique_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// analysisPayload is the wire shape the extractor recovers from the
// completion text. Scores stays loosely typed so one non-numeric value
// cannot sink the whole object.
type analysisPayload struct {
	OverallScore     *int               `json:"overall_score"`
	Scores           map[string]any     `json:"scores"`
	Strengths        []FeedbackItem     `json:"strengths"`
	Weaknesses       []FeedbackItem     `json:"weaknesses"`
	Opportunities    []FeedbackItem     `json:"opportunities"`
	Issues           []SpecificIssue    `json:"issues"`
	ExecutiveSummary string             `json:"executive_summary"`
	PriorityActions  []PriorityAction   `json:"priority_actions"`
	GenreFit         *GenreFitAnalysis  `json:"genre_fit"`
	SimilarWorks     []SimilarWork      `json:"similar_works"`
}

// RunAnalysis executes the full critique for one request and persists the
// resulting record as a single write. Validation failures are reported
// before any external call; extraction failures degrade the record instead
// of failing the run; provider failures propagate as typed errors.
func (s *Service) RunAnalysis(ctx context.Context, req AnalysisRequest) (*ManuscriptAnalysis, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	text := req.Text
	if req.Scope == ScopeSelection && req.SelectionEnd > 0 {
		startOff := clampOffset(req.SelectionStart, len(text))
		endOff := clampOffset(req.SelectionEnd, len(text))
		if startOff < endOff {
			text = text[startOff:endOff]
		}
	}
	wordCount := len(strings.Fields(text))

	sampled := Sample(text, s.tokenBudget)
	system, user := CompileAnalysisPrompt(sampled, req)

	s.logger.Info("running analysis",
		"book_id", req.BookID,
		"scope", req.Scope,
		"chapter_id", req.ChapterID,
		"word_count", wordCount,
		"sampled", len(sampled) < len(text))

	raw, err := s.gateway.Complete(ctx, system, user, s.maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	rec := &ManuscriptAnalysis{
		ID:                uuid.NewString(),
		BookID:            req.BookID,
		ChapterID:         req.ChapterID,
		Scope:             req.Scope,
		WordCountAnalyzed: wordCount,
		AnalysisVersion:   AnalysisVersion,
		CreatedAt:         time.Now().UTC(),
	}

	var payload analysisPayload
	if fail := Decode(raw, &payload); fail != nil {
		s.logger.Warn("structured extraction failed, degrading record",
			"analysis_id", rec.ID,
			"reason", fail.Reason,
			"raw_length", len(fail.Raw))
		s.degrade(ctx, rec, fail)
	} else {
		s.assemble(rec, &payload)
	}

	// Cancellation before the persistence step: no partial record becomes
	// visible for a cancelled run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertAnalysis(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting analysis: %w", err)
	}

	s.logger.Info("analysis persisted",
		"analysis_id", rec.ID,
		"overall_score", rec.OverallScore,
		"issue_count", len(rec.Issues),
		"degraded", rec.Degraded)
	return rec, nil
}

func (s *Service) assemble(rec *ManuscriptAnalysis, payload *analysisPayload) {
	rec.Scores = NormalizeScores(payload.Scores)
	if payload.OverallScore != nil {
		rec.OverallScore = clampScore(*payload.OverallScore)
	} else {
		rec.OverallScore = rec.Scores.OverallScore()
	}
	rec.Strengths = payload.Strengths
	rec.Weaknesses = payload.Weaknesses
	rec.Opportunities = payload.Opportunities
	rec.Issues = RankIssues(payload.Issues)
	rec.ExecutiveSummary = payload.ExecutiveSummary
	rec.PriorityActions = RankActions(payload.PriorityActions)
	rec.GenreFit = payload.GenreFit
	rec.SimilarWorks = payload.SimilarWorks
}

// degrade fills the record with the raw completion text and neutral scores.
// The raw text is also archived when an artifact store is attached, so the
// product can show unparsed output instead of erroring.
func (s *Service) degrade(ctx context.Context, rec *ManuscriptAnalysis, fail *ExtractionFailure) {
	rec.Degraded = true
	rec.ExecutiveSummary = fail.Raw
	rec.Scores = NormalizeScores(nil)
	rec.OverallScore = rec.Scores.OverallScore()
	rec.Strengths = []FeedbackItem{}
	rec.Weaknesses = []FeedbackItem{}
	rec.Opportunities = []FeedbackItem{}
	rec.Issues = []SpecificIssue{}
	rec.PriorityActions = []PriorityAction{}

	if s.archive != nil {
		path := fmt.Sprintf("degraded/%s.txt", rec.ID)
		if err := s.archive.Save(ctx, path, []byte(fail.Raw)); err != nil {
			s.logger.Warn("archiving raw response failed",
				"analysis_id", rec.ID,
				"error", err)
		}
	}
}

// QuickAnalysis evaluates one category of a text without persisting
// anything. Extraction failure degrades to the raw text as feedback.
func (s *Service) QuickAnalysis(ctx context.Context, text string, category Category) (*QuickResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newValidationError("text", "text must not be empty")
	}
	if !category.Canonical() {
		return nil, newValidationError("category", fmt.Sprintf("unknown category %q", category))
	}

	system, user := CompileQuickPrompt(Sample(text, s.tokenBudget), category)
	raw, err := s.gateway.Complete(ctx, system, user, s.maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	var result QuickResult
	if fail := Decode(raw, &result); fail != nil {
		s.logger.Warn("quick analysis extraction failed", "reason", fail.Reason)
		return &QuickResult{Category: category, Score: defaultScore, Feedback: fail.Raw}, nil
	}
	result.Category = category
	result.Score = clampScore(result.Score)
	return &result, nil
}

// Latest returns the newest persisted analysis for the slot, or nil.
func (s *Service) Latest(ctx context.Context, key ScopeKey) (*ManuscriptAnalysis, error) {
	return s.store.GetLatestAnalysis(ctx, key)
}

// History returns every persisted analysis for the slot, newest first.
func (s *Service) History(ctx context.Context, key ScopeKey) ([]*ManuscriptAnalysis, error) {
	return s.store.ListAnalyses(ctx, key)
}

func validateRequest(req AnalysisRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return newValidationError("text", "manuscript text must not be empty")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return newValidationError(verrs[0].Field(), fmt.Sprintf("failed %q constraint", verrs[0].Tag()))
		}
		return newValidationError("request", err.Error())
	}
	if !req.Scope.Valid() {
		return newValidationError("scope", fmt.Sprintf("unknown scope %q", req.Scope))
	}
	if req.Scope == ScopeChapter && req.ChapterID == "" {
		return newValidationError("chapter_id", "chapter scope requires a chapter id")
	}
	if req.SelectionEnd < req.SelectionStart {
		return newValidationError("selection_end", "selection end precedes selection start")
	}
	for _, cat := range req.FocusAreas {
		if !cat.Canonical() {
			return newValidationError("focus_areas", fmt.Sprintf("unknown category %q", cat))
		}
	}
	return nil
}
