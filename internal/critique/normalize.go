package critique

import "encoding/json"

// defaultScore is the neutral substitute for any canonical category the
// model failed to score, and for non-numeric values it supplied.
const defaultScore = 70

// NormalizeScores guarantees the fixed category schema: every canonical key
// present, every value clamped into [0, 100], non-numeric values replaced
// with the neutral default. Non-canonical keys the model supplied are
// preserved but never required. Every downstream renderer depends on this
// invariant.
func NormalizeScores(partial map[string]any) CategoryScores {
	out := make(CategoryScores, len(Categories))
	for _, cat := range Categories {
		out[cat] = defaultScore
	}
	for key, val := range partial {
		out[Category(key)] = coerceScore(val)
	}
	return out
}

func coerceScore(val any) int {
	switch v := val.(type) {
	case float64:
		return clampScore(int(v))
	case int:
		return clampScore(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return defaultScore
		}
		return clampScore(int(f))
	default:
		return defaultScore
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// OverallScore averages the canonical category scores, clamped into [0, 100].
// Used when the model omits an explicit overall verdict.
func (s CategoryScores) OverallScore() int {
	sum := 0
	for _, cat := range Categories {
		sum += s[cat]
	}
	return clampScore(sum / len(Categories))
}
