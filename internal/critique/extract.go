package critique

import (
	"encoding/json"
)

// ExtractObject scans raw completion text for the first balanced JSON object
// and returns exactly that span. The scan tracks string literals and escape
// sequences so braces inside quoted dialogue do not unbalance the count; a
// greedy first-{-to-last-} slice would over-consume trailing prose that
// happens to contain a later brace.
func ExtractObject(raw string) (string, *ExtractionFailure) {
	start := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", &ExtractionFailure{Raw: raw, Reason: "no object found"}
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", &ExtractionFailure{Raw: raw, Reason: "unbalanced object"}
}

// Decode extracts the first balanced object from raw and unmarshals it into
// target. Reports failure as data, never as a panic or error chain: every
// call site must keep the raw text available for human review.
func Decode(raw string, target any) *ExtractionFailure {
	span, fail := ExtractObject(raw)
	if fail != nil {
		return fail
	}
	if err := json.Unmarshal([]byte(span), target); err != nil {
		return &ExtractionFailure{Raw: raw, Reason: err.Error()}
	}
	return nil
}
