package critique

import (
	"strings"
	"testing"
)

func TestCompileAnalysisPromptDeterministic(t *testing.T) {
	req := AnalysisRequest{
		BookID: "book-1",
		Scope:  ScopeFullBook,
		Title:  "The Long Rain",
		Genre:  "mystery",
		Text:   "irrelevant here",
	}

	sys1, user1 := CompileAnalysisPrompt("sampled text", req)
	sys2, user2 := CompileAnalysisPrompt("sampled text", req)

	if sys1 != sys2 || user1 != user2 {
		t.Fatal("compiled prompts differ for identical inputs")
	}
}

func TestCompileAnalysisPromptContents(t *testing.T) {
	req := AnalysisRequest{
		BookID: "book-1",
		Scope:  ScopeChapter,
		Title:  "The Long Rain",
		Genre:  "mystery",
		Text:   "x",
	}

	system, user := CompileAnalysisPrompt("THE SAMPLED MANUSCRIPT", req)

	if !strings.Contains(system, "mystery") {
		t.Error("system instructions missing genre hint")
	}
	for _, cat := range Categories {
		if !strings.Contains(user, string(cat)) {
			t.Errorf("category %s not enumerated", cat)
		}
	}
	for _, want := range []string{
		"Title: The Long Rain",
		"THE SAMPLED MANUSCRIPT",
		manuscriptDelimiter,
		`"overall_score"`,
		`"priority_actions"`,
		"critical|significant|moderate|minor|suggestion",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestCompileAnalysisPromptOmitsAbsentMetadata(t *testing.T) {
	req := AnalysisRequest{BookID: "b", Scope: ScopeFullBook, Text: "x"}
	_, user := CompileAnalysisPrompt("text", req)
	if strings.Contains(user, "Title:") {
		t.Error("title line present despite empty title")
	}
	if strings.Contains(user, "Genre:") {
		t.Error("genre line present despite empty genre")
	}
}

func TestCompileAnalysisPromptFocusAreas(t *testing.T) {
	req := AnalysisRequest{
		BookID:     "b",
		Scope:      ScopeFullBook,
		Text:       "x",
		FocusAreas: []Category{CategoryPacing, CategoryDialogue},
	}
	_, user := CompileAnalysisPrompt("text", req)
	if !strings.Contains(user, "Concentrate") {
		t.Error("focus narrowing note missing")
	}
	if !strings.Contains(user, "pacing, dialogue") {
		t.Error("focus areas not listed")
	}
}

func TestCompileQuickPrompt(t *testing.T) {
	system, user := CompileQuickPrompt("some prose", CategoryDialogue)
	if system == "" {
		t.Error("empty system instructions")
	}
	if !strings.Contains(user, "dialogue") || !strings.Contains(user, "some prose") {
		t.Error("quick prompt missing category or text")
	}
	if !strings.Contains(user, `"suggestions"`) {
		t.Error("quick prompt missing schema template")
	}
}

func TestCompileComparePrompt(t *testing.T) {
	_, user := CompileComparePrompt("old draft", "new draft")
	if !strings.Contains(user, "old draft") || !strings.Contains(user, "new draft") {
		t.Error("compare prompt missing a version")
	}
	if !strings.Contains(user, `"improvement"`) || !strings.Contains(user, `"changed_aspects"`) {
		t.Error("compare prompt missing schema template")
	}
}

func TestCompileFixPrompt(t *testing.T) {
	issue := SpecificIssue{
		Type:        IssueTellingNotShowing,
		Severity:    SeverityModerate,
		Title:       "Emotion named instead of shown",
		Description: "The beat names the feeling.",
	}
	_, user := CompileFixPrompt("She felt sad.", issue)
	for _, want := range []string{"She felt sad.", "telling_not_showing", `"rewrite_options"`, "exactly 3"} {
		if !strings.Contains(user, want) {
			t.Errorf("fix prompt missing %q", want)
		}
	}
}
