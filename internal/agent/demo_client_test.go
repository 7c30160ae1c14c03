package agent

import (
	"context"
	"encoding/json"
	"testing"
)

func TestDemoClientRouting(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		wantKeys []string
	}{
		{
			name:     "full analysis",
			prompt:   "Critique the manuscript below.",
			wantKeys: []string{"overall_score", "scores", "issues", "executive_summary", "priority_actions"},
		},
		{
			name:     "quick analysis",
			prompt:   "Evaluate only pacing in the text below.",
			wantKeys: []string{"score", "feedback", "suggestions"},
		},
		{
			name:     "comparison",
			prompt:   `Respond with {"improvement": ..., "changed_aspects": [...]}`,
			wantKeys: []string{"improvement", "changed_aspects", "summary"},
		},
		{
			name:     "fix",
			prompt:   `Respond with {"rewrite_options": [...]}`,
			wantKeys: []string{"rewrite_options", "explanation"},
		},
	}

	client := NewDemoClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.Complete(context.Background(), "sys", tt.prompt, 1024)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var payload map[string]any
			if err := json.Unmarshal([]byte(got), &payload); err != nil {
				t.Fatalf("demo response is not valid JSON: %v", err)
			}
			for _, key := range tt.wantKeys {
				if _, ok := payload[key]; !ok {
					t.Errorf("response missing %q", key)
				}
			}
		})
	}
}

func TestDemoClientDeterministic(t *testing.T) {
	client := NewDemoClient()
	first, _ := client.Complete(context.Background(), "s", "Critique the manuscript below.", 10)
	second, _ := client.Complete(context.Background(), "s", "Critique the manuscript below.", 10)
	if first != second {
		t.Error("demo responses differ between calls")
	}
}

func TestDemoClientHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDemoClient().Complete(ctx, "s", "p", 10); err == nil {
		t.Error("expected context error")
	}
}

func TestDemoClientAnalysisHasAllCategories(t *testing.T) {
	got, err := NewDemoClient().Complete(context.Background(), "s", "Critique the manuscript below.", 10)
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Scores map[string]int `json:"scores"`
	}
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Scores) != 15 {
		t.Errorf("demo analysis scores %d categories, want 15", len(payload.Scores))
	}
}
