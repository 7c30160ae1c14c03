package critique

import (
	"fmt"
	"strings"
)

const manuscriptDelimiter = "====="

const analysisSystemPrompt = `You are a developmental editor with two decades of experience critiquing commercial and literary fiction. You give honest, specific, actionable feedback grounded in quoted evidence from the text. You respond with a single JSON object and nothing else.`

// analysisSchema is the literal response template embedded in every full
// critique request: field names, allowed enum values, and numeric ranges.
const analysisSchema = `{
  "overall_score": <integer 0-100>,
  "scores": { "<category_key>": <integer 0-100>, ... },
  "strengths": [
    {"category": "<category_key>", "title": "...", "description": "...",
     "excerpts": [{"text": "...", "location": {"chapter": <int>, "paragraph": <int>}}],
     "suggestions": ["..."]}
  ],
  "weaknesses": [ <same shape as strengths> ],
  "opportunities": [ <same shape as strengths> ],
  "issues": [
    {"type": "<issue_type>", "severity": "critical|significant|moderate|minor|suggestion",
     "category": "<category_key>", "title": "...", "description": "...",
     "location": {"chapter": <int>, "paragraph": <int>, "sentence": <int>},
     "excerpt": "...", "suggested_fix": "...", "auto_fixable": <bool>}
  ],
  "executive_summary": "...",
  "priority_actions": [
    {"priority": <integer 1-5>, "category": "<category_key>", "action": "...",
     "impact": "low|medium|high", "effort": "low|medium|high",
     "affected_areas": ["..."]}
  ],
  "genre_fit": {"genre": "...", "fit_score": <integer 0-100>,
    "expectations": [{"element": "...", "expected": "...", "found": "...", "met": <bool>}],
    "gaps": ["..."], "recommendations": ["..."]},
  "similar_works": [{"title": "...", "author": "...", "reason": "..."}]
}`

// CompileAnalysisPrompt turns a sampled manuscript plus request metadata into
// the (system, user) instruction pair for the full critique. Byte-identical
// output for identical inputs: no timestamps, no randomness. The gateway call
// is the only nondeterministic step in the pipeline.
func CompileAnalysisPrompt(sampledText string, req AnalysisRequest) (system, user string) {
	system = analysisSystemPrompt
	if req.Genre != "" {
		system += fmt.Sprintf(" You specialize in %s fiction and judge the work against the conventions of that market.", req.Genre)
	}
	if req.AuthorNote != "" {
		system += " Respect the author's stated intent: " + req.AuthorNote
	}

	var b strings.Builder
	b.WriteString("Critique the manuscript below.\n\n")

	if req.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.Title)
	}
	if req.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", req.Genre)
	}
	fmt.Fprintf(&b, "Scope: %s\n\n", req.Scope)

	b.WriteString("Score each of these categories (use exactly these keys):\n")
	for _, cat := range Categories {
		fmt.Fprintf(&b, "- %s: %s\n", cat, cat.Description())
	}

	if len(req.FocusAreas) > 0 {
		keys := make([]string, len(req.FocusAreas))
		for i, cat := range req.FocusAreas {
			keys[i] = string(cat)
		}
		fmt.Fprintf(&b, "\nConcentrate your issues and priority actions on: %s. Still score every category.\n", strings.Join(keys, ", "))
	}

	b.WriteString("\nRecognized issue types (use exactly these keys):\n")
	for _, t := range IssueTypes {
		fmt.Fprintf(&b, "- %s\n", t)
	}

	if req.IncludeGenreFit && req.Genre != "" {
		b.WriteString("\nInclude the genre_fit block, checking the manuscript against the core conventions of the declared genre.\n")
	}
	if req.IncludeSimilarWorks {
		b.WriteString("\nInclude similar_works: up to five published titles a reader of this manuscript would recognize, with the reason for each comparison.\n")
	}

	fmt.Fprintf(&b, "\nManuscript:\n%s\n%s\n%s\n", manuscriptDelimiter, sampledText, manuscriptDelimiter)

	b.WriteString("\nRespond with one JSON object matching this template exactly:\n")
	b.WriteString(analysisSchema)
	b.WriteString("\n")

	return system, b.String()
}

const quickSystemPrompt = `You are a developmental editor giving rapid single-aspect feedback. You respond with a single JSON object and nothing else.`

// CompileQuickPrompt builds the single-category quick analysis request.
func CompileQuickPrompt(text string, category Category) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate only %s (%s) in the text below.\n", category, category.Description())
	fmt.Fprintf(&b, "\nText:\n%s\n%s\n%s\n", manuscriptDelimiter, text, manuscriptDelimiter)
	b.WriteString("\nRespond with one JSON object matching this template exactly:\n")
	fmt.Fprintf(&b, `{"score": <integer 0-100>, "feedback": "...", "suggestions": ["...", "..."]}`)
	b.WriteString("\n")
	return quickSystemPrompt, b.String()
}

const compareSystemPrompt = `You are a developmental editor comparing two versions of the same manuscript passage. You respond with a single JSON object and nothing else.`

// CompileComparePrompt builds the version comparison request.
func CompileComparePrompt(before, after string) (system, user string) {
	var b strings.Builder
	b.WriteString("Compare the revised version against the original and judge whether the revision improved the writing.\n")
	fmt.Fprintf(&b, "\nOriginal:\n%s\n%s\n%s\n", manuscriptDelimiter, before, manuscriptDelimiter)
	fmt.Fprintf(&b, "\nRevised:\n%s\n%s\n%s\n", manuscriptDelimiter, after, manuscriptDelimiter)
	b.WriteString("\nRespond with one JSON object matching this template exactly:\n")
	b.WriteString(`{"improvement": <integer -100 to 100>,
 "changed_aspects": [{"aspect": "<category_key>", "delta": <integer -10 to 10>, "note": "..."}],
 "summary": "..."}`)
	b.WriteString("\n")
	return compareSystemPrompt, b.String()
}

const fixSystemPrompt = `You are a line editor rewriting flagged prose while preserving the author's voice. You respond with a single JSON object and nothing else.`

// CompileFixPrompt builds the targeted rewrite request for a flagged excerpt.
func CompileFixPrompt(excerpt string, issue SpecificIssue) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "The excerpt below was flagged: %s (%s, severity %s).\n", issue.Title, issue.Type, issue.Severity)
	if issue.Description != "" {
		fmt.Fprintf(&b, "Problem: %s\n", issue.Description)
	}
	fmt.Fprintf(&b, "\nExcerpt:\n%s\n%s\n%s\n", manuscriptDelimiter, excerpt, manuscriptDelimiter)
	b.WriteString("\nWrite exactly 3 alternative rewrites that fix the problem. Respond with one JSON object matching this template exactly:\n")
	b.WriteString(`{"rewrite_options": ["...", "...", "..."], "explanation": "..."}`)
	b.WriteString("\n")
	return fixSystemPrompt, b.String()
}
