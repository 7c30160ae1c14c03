package agent

import (
	"context"
	"log/slog"
	"strings"
)

// DemoClient is the completion gateway used when no provider credentials are
// configured. It returns canned, schema-conformant critiques so the product
// stays demonstrable offline. Selected explicitly at construction time, never
// via nil checks at call sites.
type DemoClient struct {
	logger *slog.Logger
}

func NewDemoClient() *DemoClient {
	return &DemoClient{
		logger: slog.Default().With("component", "demo_client"),
	}
}

func (d *DemoClient) Complete(ctx context.Context, system, prompt string, maxOutputTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	promptLower := strings.ToLower(prompt)
	var kind, response string
	switch {
	case strings.Contains(promptLower, "rewrite_options"):
		kind, response = "fix", demoFixResponse
	case strings.Contains(promptLower, "changed_aspects"):
		kind, response = "compare", demoCompareResponse
	case strings.Contains(promptLower, "evaluate only"):
		kind, response = "quick", demoQuickResponse
	default:
		kind, response = "analysis", demoAnalysisResponse
	}

	d.logger.Info("serving demo completion",
		"kind", kind,
		"prompt_length", len(prompt))
	return response, nil
}

const demoAnalysisResponse = `{
  "overall_score": 74,
  "scores": {
    "plot_structure": 76, "character_development": 72, "pacing": 68,
    "dialogue": 78, "prose_quality": 75, "voice_consistency": 80,
    "world_building": 70, "tension": 66, "emotional_impact": 73,
    "theme_development": 71, "opening_hook": 82, "ending_satisfaction": 69,
    "originality": 74, "clarity": 79, "marketability": 72
  },
  "strengths": [
    {"category": "opening_hook", "title": "Strong opening image",
     "description": "The first scene drops the reader into a concrete, charged moment without throat-clearing.",
     "suggestions": []}
  ],
  "weaknesses": [
    {"category": "pacing", "title": "Sagging middle",
     "description": "The mid-section lingers on connective scenes that repeat information the reader already has.",
     "suggestions": ["Cut or merge the two travel chapters", "Move the reveal earlier"]}
  ],
  "opportunities": [
    {"category": "tension", "title": "Raise the cost of failure",
     "description": "The stakes are stated but rarely dramatized; showing a concrete consequence early would sharpen every later choice.",
     "suggestions": ["Dramatize one consequence in the first act"]}
  ],
  "issues": [
    {"type": "pacing_lull", "severity": "moderate", "category": "pacing",
     "title": "Mid-book lull", "description": "Chapters in the middle third restate established conflicts.",
     "location": {"chapter": 2}, "excerpt": "", "suggested_fix": "Compress the travel sequence.", "auto_fixable": false},
    {"type": "telling_not_showing", "severity": "minor", "category": "prose_quality",
     "title": "Emotion named instead of shown", "description": "Several beats name the feeling rather than rendering it.",
     "excerpt": "", "suggested_fix": "Replace named emotions with physical detail.", "auto_fixable": false}
  ],
  "executive_summary": "A confident draft with a strong opening and consistent voice. The main work ahead is pacing: tighten the middle third and dramatize the stakes earlier. Demo analysis; connect a completion provider for a full critique.",
  "priority_actions": [
    {"priority": 1, "category": "pacing", "action": "Tighten the middle third by cutting repeated beats.",
     "impact": "high", "effort": "medium", "affected_areas": ["chapters 8-14"]},
    {"priority": 2, "category": "tension", "action": "Dramatize a concrete consequence of failure in act one.",
     "impact": "medium", "effort": "low", "affected_areas": ["act one"]}
  ]
}`

const demoQuickResponse = `{
  "score": 72,
  "feedback": "Serviceable but uneven; the strongest passages trust the reader while weaker ones over-explain.",
  "suggestions": ["Cut explanatory dialogue tags", "Vary sentence length in action beats"]
}`

const demoCompareResponse = `{
  "improvement": 12,
  "changed_aspects": [
    {"aspect": "pacing", "delta": 3, "note": "Tighter scene transitions."},
    {"aspect": "dialogue", "delta": 2, "note": "Fewer on-the-nose exchanges."}
  ],
  "summary": "The revision reads faster and trusts the reader more; the core scenes are unchanged."
}`

const demoFixResponse = `{
  "rewrite_options": [
    "She said nothing, but her hand found the doorframe and held it.",
    "The answer stuck somewhere behind her teeth; she turned to the window instead.",
    "Instead of answering, she counted the cracks in the tile until the question expired."
  ],
  "explanation": "Each option replaces the named emotion with a physical beat that lets the reader infer it."
}`
