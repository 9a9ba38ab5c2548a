package cli

import (
	"testing"

	"github.com/c-bata/go-prompt"
)

func documentWith(text string) prompt.Document {
	buf := prompt.NewBuffer()
	buf.InsertText(text, false, true)
	return *buf.Document()
}

func TestCompleteQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"annual report ", nil},
		{"annual report file", []string{"filetype:"}},
		{"annual report SI", []string{"site:"}},
		{"annual in", []string{"intitle:", "inurl:"}},
		{"xyz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := completeQuery(documentWith(tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("completeQuery(%q) returned %d suggestions, want %d", tt.input, len(got), len(tt.expected))
			}
			for i, s := range got {
				if s.Text != tt.expected[i] {
					t.Errorf("suggestion %d = %s, want %s", i, s.Text, tt.expected[i])
				}
			}
		})
	}
}
