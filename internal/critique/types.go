package critique

import (
	"time"
)

// AnalysisScope identifies the unit of text being analyzed.
type AnalysisScope string

const (
	ScopeFullBook  AnalysisScope = "FULL_BOOK"
	ScopeChapter   AnalysisScope = "CHAPTER"
	ScopeSelection AnalysisScope = "SELECTION"
)

func (s AnalysisScope) Valid() bool {
	switch s {
	case ScopeFullBook, ScopeChapter, ScopeSelection:
		return true
	}
	return false
}

// Category is one of the fixed critique dimensions scored on every analysis.
type Category string

const (
	CategoryPlotStructure        Category = "plot_structure"
	CategoryCharacterDevelopment Category = "character_development"
	CategoryPacing               Category = "pacing"
	CategoryDialogue             Category = "dialogue"
	CategoryProseQuality         Category = "prose_quality"
	CategoryVoiceConsistency     Category = "voice_consistency"
	CategoryWorldBuilding        Category = "world_building"
	CategoryTension              Category = "tension"
	CategoryEmotionalImpact      Category = "emotional_impact"
	CategoryThemeDevelopment     Category = "theme_development"
	CategoryOpeningHook          Category = "opening_hook"
	CategoryEndingSatisfaction   Category = "ending_satisfaction"
	CategoryOriginality          Category = "originality"
	CategoryClarity              Category = "clarity"
	CategoryMarketability        Category = "marketability"
)

// Categories is the canonical ordered category set. Every persisted score map
// contains exactly these keys.
var Categories = []Category{
	CategoryPlotStructure,
	CategoryCharacterDevelopment,
	CategoryPacing,
	CategoryDialogue,
	CategoryProseQuality,
	CategoryVoiceConsistency,
	CategoryWorldBuilding,
	CategoryTension,
	CategoryEmotionalImpact,
	CategoryThemeDevelopment,
	CategoryOpeningHook,
	CategoryEndingSatisfaction,
	CategoryOriginality,
	CategoryClarity,
	CategoryMarketability,
}

// categoryInfo carries display metadata and the one-line description embedded
// in compiled prompts.
type categoryInfo struct {
	Label       string
	Description string
}

var categoryCatalog = map[Category]categoryInfo{
	CategoryPlotStructure:        {"Plot & Structure", "coherence of the plot, cause-and-effect logic, and structural soundness"},
	CategoryCharacterDevelopment: {"Character Development", "depth, arc, and believability of the characters"},
	CategoryPacing:               {"Pacing", "rhythm of scenes and chapters, momentum, dead spots"},
	CategoryDialogue:             {"Dialogue", "naturalness, distinctiveness, and purpose of spoken lines"},
	CategoryProseQuality:         {"Prose Quality", "sentence craft, word choice, and line-level polish"},
	CategoryVoiceConsistency:     {"Voice Consistency", "stability of narrative voice and point of view"},
	CategoryWorldBuilding:        {"World Building", "texture and internal consistency of the story world"},
	CategoryTension:              {"Tension", "stakes, conflict, and the pull to keep reading"},
	CategoryEmotionalImpact:      {"Emotional Impact", "how strongly the text lands emotionally"},
	CategoryThemeDevelopment:     {"Theme Development", "depth and integration of thematic material"},
	CategoryOpeningHook:          {"Opening Hook", "how effectively the opening pages engage a reader"},
	CategoryEndingSatisfaction:   {"Ending Satisfaction", "payoff and resonance of the ending"},
	CategoryOriginality:          {"Originality", "freshness of premise, voice, and execution"},
	CategoryClarity:              {"Clarity", "ease of following who, where, when, and why"},
	CategoryMarketability:        {"Marketability", "fit with reader expectations in the target market"},
}

// Label returns the display name for the category, or the raw key for
// non-canonical categories the model invented.
func (c Category) Label() string {
	if info, ok := categoryCatalog[c]; ok {
		return info.Label
	}
	return string(c)
}

// Description returns the one-line prompt description for the category.
func (c Category) Description() string {
	return categoryCatalog[c].Description
}

func (c Category) Canonical() bool {
	_, ok := categoryCatalog[c]
	return ok
}

// Severity orders issues from most to least urgent.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeveritySignificant Severity = "significant"
	SeverityModerate    Severity = "moderate"
	SeverityMinor       Severity = "minor"
	SeveritySuggestion  Severity = "suggestion"
)

// severityRank maps severities onto a total order; lower sorts first.
var severityRank = map[Severity]int{
	SeverityCritical:    0,
	SeveritySignificant: 1,
	SeverityModerate:    2,
	SeverityMinor:       3,
	SeveritySuggestion:  4,
}

// Rank returns the sort position of the severity. Unknown severities sort
// after every known one so malformed model output never jumps the queue.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// IssueType is the closed set of issue kinds the pipeline recognizes.
type IssueType string

const (
	IssuePlotHole               IssueType = "plot_hole"
	IssuePacingLull             IssueType = "pacing_lull"
	IssueCharacterInconsistency IssueType = "character_inconsistency"
	IssueStiltedDialogue        IssueType = "stilted_dialogue"
	IssueInfoDump               IssueType = "info_dump"
	IssuePOVSlip                IssueType = "pov_slip"
	IssueTenseShift             IssueType = "tense_shift"
	IssueRepetitivePhrasing     IssueType = "repetitive_phrasing"
	IssueWeakOpening            IssueType = "weak_opening"
	IssueWeakEnding             IssueType = "weak_ending"
	IssueContinuityError        IssueType = "continuity_error"
	IssuePassiveOveruse         IssueType = "passive_overuse"
	IssueTellingNotShowing      IssueType = "telling_not_showing"
	IssueCliche                 IssueType = "cliche"
	IssueTimelineConflict       IssueType = "timeline_conflict"
	IssueUnresolvedThread       IssueType = "unresolved_thread"
)

// IssueTypes enumerates every recognized issue kind.
var IssueTypes = []IssueType{
	IssuePlotHole, IssuePacingLull, IssueCharacterInconsistency,
	IssueStiltedDialogue, IssueInfoDump, IssuePOVSlip, IssueTenseShift,
	IssueRepetitivePhrasing, IssueWeakOpening, IssueWeakEnding,
	IssueContinuityError, IssuePassiveOveruse, IssueTellingNotShowing,
	IssueCliche, IssueTimelineConflict, IssueUnresolvedThread,
}

var issueTypeLabels = map[IssueType]string{
	IssuePlotHole:               "Plot Hole",
	IssuePacingLull:             "Pacing Lull",
	IssueCharacterInconsistency: "Character Inconsistency",
	IssueStiltedDialogue:        "Stilted Dialogue",
	IssueInfoDump:               "Info Dump",
	IssuePOVSlip:                "POV Slip",
	IssueTenseShift:             "Tense Shift",
	IssueRepetitivePhrasing:     "Repetitive Phrasing",
	IssueWeakOpening:            "Weak Opening",
	IssueWeakEnding:             "Weak Ending",
	IssueContinuityError:        "Continuity Error",
	IssuePassiveOveruse:         "Passive Voice Overuse",
	IssueTellingNotShowing:      "Telling Not Showing",
	IssueCliche:                 "Cliché",
	IssueTimelineConflict:       "Timeline Conflict",
	IssueUnresolvedThread:       "Unresolved Thread",
}

func (t IssueType) Label() string {
	if label, ok := issueTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Level grades impact and effort on priority actions.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// AnalysisRequest is the immutable per-invocation input.
type AnalysisRequest struct {
	BookID     string        `json:"book_id" validate:"required"`
	ChapterID  string        `json:"chapter_id,omitempty"`
	Scope      AnalysisScope `json:"scope" validate:"required"`
	Text       string        `json:"text" validate:"required"`
	Title      string        `json:"title,omitempty"`
	Genre      string        `json:"genre,omitempty"`
	AuthorNote string        `json:"author_note,omitempty"`

	// SelectionStart/SelectionEnd bound a SELECTION scope within the
	// chapter text; zero values mean the whole supplied text.
	SelectionStart int `json:"selection_start,omitempty"`
	SelectionEnd   int `json:"selection_end,omitempty"`

	FocusAreas []Category `json:"focus_areas,omitempty"`

	IncludeGenreFit     bool `json:"include_genre_fit,omitempty"`
	IncludeSimilarWorks bool `json:"include_similar_works,omitempty"`
}

// ScopeKey identifies the (book, scope, chapter) slot a record belongs to.
type ScopeKey struct {
	BookID    string
	Scope     AnalysisScope
	ChapterID string
}

// TextLocation is a best-effort pointer into the manuscript. All fields are
// optional; zero means unknown.
type TextLocation struct {
	Chapter   int `json:"chapter,omitempty"`
	Paragraph int `json:"paragraph,omitempty"`
	Sentence  int `json:"sentence,omitempty"`
	CharStart int `json:"char_start,omitempty"`
	CharEnd   int `json:"char_end,omitempty"`
}

// FeedbackItem is one strength, weakness, or opportunity.
type FeedbackItem struct {
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Excerpts    []Excerpt `json:"excerpts,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Excerpt quotes manuscript text with an optional location hint.
type Excerpt struct {
	Text     string        `json:"text"`
	Location *TextLocation `json:"location,omitempty"`
}

// SpecificIssue is a single located problem in the manuscript.
type SpecificIssue struct {
	ID           string        `json:"id"`
	Type         IssueType     `json:"type"`
	Severity     Severity      `json:"severity"`
	Category     Category      `json:"category"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Location     *TextLocation `json:"location,omitempty"`
	Excerpt      string        `json:"excerpt,omitempty"`
	SuggestedFix string        `json:"suggested_fix,omitempty"`
	AutoFixable  bool          `json:"auto_fixable,omitempty"`
}

// PriorityAction is one recommended next step, ranked 1 (highest) to 5.
type PriorityAction struct {
	Priority      int      `json:"priority"`
	Category      Category `json:"category"`
	Action        string   `json:"action"`
	Impact        Level    `json:"impact"`
	Effort        Level    `json:"effort"`
	AffectedAreas []string `json:"affected_areas,omitempty"`
}

// GenreExpectation is one checked genre convention.
type GenreExpectation struct {
	Element  string `json:"element"`
	Expected string `json:"expected"`
	Found    string `json:"found"`
	Met      bool   `json:"met"`
}

// GenreFitAnalysis is the optional genre enrichment block.
type GenreFitAnalysis struct {
	Genre           string             `json:"genre"`
	FitScore        int                `json:"fit_score"`
	Expectations    []GenreExpectation `json:"expectations,omitempty"`
	Gaps            []string           `json:"gaps,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// SimilarWork is one comparable published title.
type SimilarWork struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
}

// CategoryScores maps category keys to 0-100 scores. After normalization it
// always contains every canonical category.
type CategoryScores map[Category]int

// ManuscriptAnalysis is the persisted critique record. Written once per
// invocation; superseded, never mutated.
type ManuscriptAnalysis struct {
	ID        string        `json:"id"`
	BookID    string        `json:"book_id"`
	ChapterID string        `json:"chapter_id,omitempty"`
	Scope     AnalysisScope `json:"scope"`

	OverallScore int            `json:"overall_score"`
	Scores       CategoryScores `json:"scores"`

	Strengths     []FeedbackItem `json:"strengths"`
	Weaknesses    []FeedbackItem `json:"weaknesses"`
	Opportunities []FeedbackItem `json:"opportunities"`

	Issues           []SpecificIssue  `json:"issues"`
	ExecutiveSummary string           `json:"executive_summary"`
	PriorityActions  []PriorityAction `json:"priority_actions"`

	GenreFit     *GenreFitAnalysis `json:"genre_fit,omitempty"`
	SimilarWorks []SimilarWork     `json:"similar_works,omitempty"`

	// Degraded marks a record whose structured fields could not be
	// recovered; ExecutiveSummary then carries the raw completion text.
	Degraded bool `json:"degraded,omitempty"`

	WordCountAnalyzed int       `json:"word_count_analyzed"`
	AnalysisVersion   string    `json:"analysis_version"`
	CreatedAt         time.Time `json:"created_at"`
}

// Key returns the scope slot this record occupies.
func (a *ManuscriptAnalysis) Key() ScopeKey {
	return ScopeKey{BookID: a.BookID, Scope: a.Scope, ChapterID: a.ChapterID}
}

// QuickResult is the single-aspect analysis payload.
type QuickResult struct {
	Category    Category `json:"category"`
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// AspectDelta is one per-aspect change between two versions, in [-10, 10].
type AspectDelta struct {
	Aspect Category `json:"aspect"`
	Delta  int      `json:"delta"`
	Note   string   `json:"note,omitempty"`
}

// VersionComparison reports how a revision changed the manuscript.
// Improvement is in [-100, 100]; zero value means "no verdict".
type VersionComparison struct {
	Improvement    int           `json:"improvement"`
	ChangedAspects []AspectDelta `json:"changed_aspects"`
	Summary        string        `json:"summary"`
}

// FixSuggestion offers alternative rewrites for a flagged excerpt.
type FixSuggestion struct {
	RewriteOptions []string `json:"rewrite_options"`
	Explanation    string   `json:"explanation"`
}

// AnalysisVersion tags every record produced by this pipeline revision.
const AnalysisVersion = "v2"
