package jsonutil

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", "{}"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("%s: StripFences = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	got, err := Extract(`Here is the result: [{"category":"Photography"}] Hope that helps!`)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != `[{"category":"Photography"}]` {
		t.Errorf("Extract = %q", got)
	}

	if _, err := Extract("no json here at all"); err == nil {
		t.Error("Extract on prose: want error, got nil")
	}
	if _, err := Extract(`{"unclosed": true`); err == nil {
		t.Error("Extract on unterminated object: want error, got nil")
	}
}

func TestParse(t *testing.T) {
	type result struct {
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}

	raw := "```json\n[{\"category\":\"Street Art\",\"tags\":[\"mural\",\"urban\"]}]\n```"
	got, err := Parse[[]result](raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Street Art" || len(got[0].Tags) != 2 {
		t.Errorf("Parse = %+v", got)
	}

	if _, err := Parse[[]result]("the model refused to answer"); err == nil {
		t.Error("Parse on prose: want error, got nil")
	}
	if _, err := Parse[[]result]("[{\"category\": 42}]"); err == nil {
		t.Error("Parse on type-mismatched JSON: want error, got nil")
	}
}
