package critique

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// scriptedGateway returns canned completions and records every invocation.
type scriptedGateway struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	lastUser string
}

func (g *scriptedGateway) Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls += 1
	g.lastUser = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// memStore is an in-memory persistence collaborator.
type memStore struct {
	mu      sync.Mutex
	records []*ManuscriptAnalysis
	failErr error
}

func (m *memStore) UpsertAnalysis(ctx context.Context, rec *ManuscriptAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) GetLatestAnalysis(ctx context.Context, key ScopeKey) (*ManuscriptAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Key() == key {
			return m.records[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) ListAnalyses(ctx context.Context, key ScopeKey) ([]*ManuscriptAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ManuscriptAnalysis
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Key() == key {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

const validCompletion = `{
	"overall_score": 81,
	"scores": {"pacing": 60, "dialogue": 90},
	"strengths": [{"category": "dialogue", "title": "Sharp exchanges", "description": "Lines carry subtext."}],
	"weaknesses": [{"category": "pacing", "title": "Slow middle", "description": "Momentum dips."}],
	"opportunities": [],
	"issues": [
		{"type": "pacing_lull", "severity": "minor", "category": "pacing", "title": "Lull", "description": "d"},
		{"type": "plot_hole", "severity": "critical", "category": "plot_structure", "title": "Hole", "description": "d"}
	],
	"executive_summary": "A promising draft.",
	"priority_actions": [
		{"priority": 2, "category": "dialogue", "action": "b", "impact": "low", "effort": "low"},
		{"priority": 1, "category": "pacing", "action": "a", "impact": "high", "effort": "medium"}
	]
}`

func validRequest() AnalysisRequest {
	return AnalysisRequest{
		BookID: "book-1",
		Scope:  ScopeFullBook,
		Text:   "It was a dark and stormy night. The manuscript went on for quite a while after that.",
	}
}

func TestRunAnalysisSuccess(t *testing.T) {
	gateway := &scriptedGateway{response: validCompletion}
	store := &memStore{}
	svc := NewService(gateway, store)

	rec, err := svc.RunAnalysis(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.OverallScore != 81 {
		t.Errorf("overall score %d, want 81", rec.OverallScore)
	}
	if rec.Degraded {
		t.Error("record unexpectedly degraded")
	}
	if len(rec.Scores) != len(Categories) {
		t.Errorf("scores has %d keys, want %d", len(rec.Scores), len(Categories))
	}
	if rec.Scores[CategoryPacing] != 60 || rec.Scores[CategoryDialogue] != 90 {
		t.Error("supplied scores not carried through")
	}
	if rec.Scores[CategoryTension] != defaultScore {
		t.Error("missing category not defaulted")
	}
	if len(rec.Issues) != 2 || rec.Issues[0].Severity != SeverityCritical {
		t.Error("issues not ranked by severity")
	}
	if rec.Issues[0].ID == "" || rec.Issues[0].ID == rec.Issues[1].ID {
		t.Error("issue ids missing or not unique")
	}
	if len(rec.PriorityActions) != 2 || rec.PriorityActions[0].Priority != 1 {
		t.Error("priority actions not sorted ascending")
	}
	if rec.WordCountAnalyzed == 0 {
		t.Error("word count not recorded")
	}
	if rec.AnalysisVersion != AnalysisVersion {
		t.Errorf("analysis version %q", rec.AnalysisVersion)
	}
	if store.count() != 1 {
		t.Errorf("store has %d records, want exactly 1", store.count())
	}
}

func TestRunAnalysisEmptyManuscript(t *testing.T) {
	gateway := &scriptedGateway{response: validCompletion}
	svc := NewService(gateway, &memStore{})

	req := validRequest()
	req.Text = "   \n\t  "
	_, err := svc.RunAnalysis(context.Background(), req)

	if !IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if gateway.callCount() != 0 {
		t.Errorf("completion invoked %d times before validation", gateway.callCount())
	}
}

func TestRunAnalysisValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalysisRequest)
	}{
		{"missing book id", func(r *AnalysisRequest) { r.BookID = "" }},
		{"unknown scope", func(r *AnalysisRequest) { r.Scope = "PAGE" }},
		{"chapter scope without chapter", func(r *AnalysisRequest) { r.Scope = ScopeChapter }},
		{"inverted selection", func(r *AnalysisRequest) {
			r.Scope = ScopeSelection
			r.SelectionStart = 10
			r.SelectionEnd = 5
		}},
		{"unknown focus area", func(r *AnalysisRequest) { r.FocusAreas = []Category{"vibes"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &scriptedGateway{response: validCompletion}
			svc := NewService(gateway, &memStore{})
			req := validRequest()
			tt.mutate(&req)
			if _, err := svc.RunAnalysis(context.Background(), req); !IsValidation(err) {
				t.Errorf("want ValidationError, got %v", err)
			}
			if gateway.callCount() != 0 {
				t.Error("completion invoked despite validation failure")
			}
		})
	}
}

func TestRunAnalysisDegradesOnExtractionFailure(t *testing.T) {
	raw := "I'm sorry, I can't produce structured output today."
	gateway := &scriptedGateway{response: raw}
	store := &memStore{}
	svc := NewService(gateway, store)

	rec, err := svc.RunAnalysis(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("extraction failure must not fail the run: %v", err)
	}

	if !rec.Degraded {
		t.Fatal("record not flagged degraded")
	}
	if rec.ExecutiveSummary != raw {
		t.Error("degraded record must carry the raw completion text")
	}
	if len(rec.Issues) != 0 || len(rec.Strengths) != 0 {
		t.Error("degraded record must have empty structured fields")
	}
	if len(rec.Scores) != len(Categories) {
		t.Error("degraded record still needs the canonical score schema")
	}
	if store.count() != 1 {
		t.Error("degraded record must still be persisted")
	}
}

func TestRunAnalysisPropagatesProviderError(t *testing.T) {
	providerErr := errors.New("completion provider unavailable")
	gateway := &scriptedGateway{err: providerErr}
	store := &memStore{}
	svc := NewService(gateway, store)

	_, err := svc.RunAnalysis(context.Background(), validRequest())
	if !errors.Is(err, providerErr) {
		t.Fatalf("provider error not propagated: %v", err)
	}
	if store.count() != 0 {
		t.Error("no record may be persisted on provider failure")
	}
}

func TestRunAnalysisCancelledBeforePersist(t *testing.T) {
	store := &memStore{}
	ctx, cancel := context.WithCancel(context.Background())
	gateway := &scriptedGateway{response: validCompletion}
	svc := NewService(gatewayFunc(func(c context.Context, system, prompt string, n int) (string, error) {
		cancel() // cancellation arrives while the completion is in flight
		return gateway.Complete(c, system, prompt, n)
	}), store)

	_, err := svc.RunAnalysis(ctx, validRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if store.count() != 0 {
		t.Error("cancelled run must not persist a record")
	}
}

// gatewayFunc adapts a function to the Completer interface.
type gatewayFunc func(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error)

func (f gatewayFunc) Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	return f(ctx, system, prompt, maxOutputTokens)
}

func TestRunAnalysisStoreFailure(t *testing.T) {
	storeErr := errors.New("disk full")
	store := &memStore{failErr: storeErr}
	svc := NewService(&scriptedGateway{response: validCompletion}, store)

	_, err := svc.RunAnalysis(context.Background(), validRequest())
	if !errors.Is(err, storeErr) {
		t.Fatalf("store error not propagated: %v", err)
	}
}

func TestRunAnalysisSelectionBounds(t *testing.T) {
	gateway := &scriptedGateway{response: validCompletion}
	svc := NewService(gateway, &memStore{})

	req := validRequest()
	req.Scope = ScopeSelection
	req.Text = "alpha beta gamma delta"
	req.SelectionStart = 6
	req.SelectionEnd = 10

	rec, err := svc.RunAnalysis(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.WordCountAnalyzed != 1 {
		t.Errorf("selection word count %d, want 1", rec.WordCountAnalyzed)
	}
	if !strings.Contains(gateway.lastUser, "beta") {
		t.Error("selection slice not sent to the gateway")
	}
}

func TestQuickAnalysis(t *testing.T) {
	gateway := &scriptedGateway{response: `{"score": 130, "feedback": "strong", "suggestions": ["s1"]}`}
	svc := NewService(gateway, &memStore{})

	result, err := svc.QuickAnalysis(context.Background(), "some prose", CategoryDialogue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("score %d, want clamped 100", result.Score)
	}
	if result.Category != CategoryDialogue {
		t.Errorf("category %s", result.Category)
	}
}

func TestQuickAnalysisDegrades(t *testing.T) {
	gateway := &scriptedGateway{response: "plain prose, no structure"}
	svc := NewService(gateway, &memStore{})

	result, err := svc.QuickAnalysis(context.Background(), "some prose", CategoryPacing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Feedback != "plain prose, no structure" {
		t.Error("degraded quick result must carry raw text as feedback")
	}
}

func TestQuickAnalysisValidation(t *testing.T) {
	svc := NewService(&scriptedGateway{}, &memStore{})
	if _, err := svc.QuickAnalysis(context.Background(), "", CategoryPacing); !IsValidation(err) {
		t.Error("empty text must be rejected")
	}
	if _, err := svc.QuickAnalysis(context.Background(), "text", Category("vibes")); !IsValidation(err) {
		t.Error("unknown category must be rejected")
	}
}

func TestLatestAndHistory(t *testing.T) {
	gateway := &scriptedGateway{response: validCompletion}
	store := &memStore{}
	svc := NewService(gateway, store)

	req := validRequest()
	if _, err := svc.RunAnalysis(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	second, err := svc.RunAnalysis(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	key := ScopeKey{BookID: req.BookID, Scope: req.Scope}
	latest, err := svc.Latest(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Error("latest must be the most recent record")
	}

	history, err := svc.History(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Errorf("history has %d records, want 2", len(history))
	}
}
