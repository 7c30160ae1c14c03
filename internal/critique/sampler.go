package critique

import "strings"

// charsPerToken is the rough character-per-token estimate used to map a
// token budget onto a character budget.
const charsPerToken = 4

// Section markers wrapped around each sampled window so the downstream
// consumer knows the excerpt is partial and where each piece sits.
const (
	markerBeginning = "[BEGINNING]"
	markerMiddle    = "[MIDDLE SAMPLE]"
	markerEnding    = "[ENDING]"
)

// Sample reduces text to fit within tokenBudget. Short texts pass through
// unchanged. Longer texts are reduced to three labeled windows: the opening,
// a slice centered on the midpoint, and the ending. Deterministic and
// side-effect free.
func Sample(text string, tokenBudget int) string {
	if tokenBudget <= 0 {
		return ""
	}
	charBudget := tokenBudget * charsPerToken
	if len(text) <= charBudget {
		return text
	}

	window := charBudget / 3

	begin := text[:clampOffset(window, len(text))]

	midStart := clampOffset(len(text)/2-window/2, len(text))
	midEnd := clampOffset(midStart+window, len(text))
	middle := text[midStart:midEnd]

	end := text[clampOffset(len(text)-window, len(text)):]

	var b strings.Builder
	b.Grow(len(begin) + len(middle) + len(end) + 64)
	b.WriteString(markerBeginning)
	b.WriteString("\n")
	b.WriteString(begin)
	b.WriteString("\n\n")
	b.WriteString(markerMiddle)
	b.WriteString("\n")
	b.WriteString(middle)
	b.WriteString("\n\n")
	b.WriteString(markerEnding)
	b.WriteString("\n")
	b.WriteString(end)
	return b.String()
}

func clampOffset(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
