package critique

import (
	"testing"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "nested braces with trailing prose",
			raw:  `noise {"a": 1, "b": {"c": 2}} trailing`,
			want: `{"a": 1, "b": {"c": 2}}`,
		},
		{
			name: "bare object",
			raw:  `{"score": 80}`,
			want: `{"score": 80}`,
		},
		{
			name: "markdown fenced reply",
			raw:  "Here is the critique:\n```json\n{\"score\": 75}\n```\nHope this helps!",
			want: `{"score": 75}`,
		},
		{
			name: "braces inside quoted dialogue",
			raw:  `{"excerpt": "she slammed the door yelling {enough}", "n": 1} and then a stray }`,
			want: `{"excerpt": "she slammed the door yelling {enough}", "n": 1}`,
		},
		{
			name: "escaped quote inside string",
			raw:  `{"text": "he said \"{wait}\" twice"} extra`,
			want: `{"text": "he said \"{wait}\" twice"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fail := ExtractObject(tt.raw)
			if fail != nil {
				t.Fatalf("unexpected failure: %s", fail.Reason)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractObjectFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json at all", "no json here"},
		{"empty input", ""},
		{"unbalanced object", `{"a": {"b": 1}`},
		{"open brace only", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fail := ExtractObject(tt.raw)
			if fail == nil {
				t.Fatal("expected extraction failure")
			}
			if fail.Raw != tt.raw {
				t.Errorf("failure must carry the original text, got %q", fail.Raw)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	var target struct {
		Score int `json:"score"`
	}
	if fail := Decode("prefix {\"score\": 42} suffix", &target); fail != nil {
		t.Fatalf("unexpected failure: %s", fail.Reason)
	}
	if target.Score != 42 {
		t.Errorf("got score %d, want 42", target.Score)
	}
}

func TestDecodeMalformedSpan(t *testing.T) {
	var target struct {
		Score int `json:"score"`
	}
	fail := Decode(`{"score": "not closed`, &target)
	if fail == nil {
		t.Fatal("expected failure for malformed span")
	}
	if fail.Raw == "" {
		t.Error("failure must carry the raw text")
	}
}
