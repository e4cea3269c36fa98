package markdown

import (
	"strings"
	"testing"
)

func TestParseUsernames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain lines",
			input: "alice\nbob\ncharlie\n",
			want:  []string{"alice", "bob", "charlie"},
		},
		{
			name:  "indexed lines",
			input: "1→alice\n2→bob\n",
			want:  []string{"alice", "bob"},
		},
		{
			name:  "mixed with blanks and whitespace",
			input: "alice\n\n  3→bob  \n\n  charlie\n",
			want:  []string{"alice", "bob", "charlie"},
		},
		{
			name:  "delimiter with empty username dropped",
			input: "4→\nalice\n",
			want:  []string{"alice"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUsernames(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("username %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
