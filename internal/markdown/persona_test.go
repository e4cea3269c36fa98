package markdown

import (
	"testing"
)

func TestParsePersona(t *testing.T) {
	content := `# User Persona: u/TestUser

**Generated:** 2024-05-01 10:00:00

## User Persona Summary
A curious tinkerer who answers questions at length.

## Jungian Archetype
**The Sage** – seeks truth and knowledge, shares it generously.

## Subreddit Activity Analysis
- **Most Active Communities:** r/golang (daily contributor), r/programming, r/selfhosted
- **Community Role:** expert in r/golang
`

	p := ParsePersona(content)

	if p.Username != "TestUser" {
		t.Errorf("expected username TestUser, got %q", p.Username)
	}
	if p.Archetype != "The Sage" {
		t.Errorf("expected archetype %q, got %q", "The Sage", p.Archetype)
	}

	wantSubs := []string{"golang", "programming", "selfhosted"}
	if len(p.TopSubreddits) != len(wantSubs) {
		t.Fatalf("expected %d subreddits, got %v", len(wantSubs), p.TopSubreddits)
	}
	for i, want := range wantSubs {
		if p.TopSubreddits[i] != want {
			t.Errorf("subreddit %d: expected %q, got %q", i, want, p.TopSubreddits[i])
		}
	}

	if p.PersonaText != content {
		t.Error("expected full text to be retained")
	}
}

func TestParsePersonaMissingFields(t *testing.T) {
	content := "Some freeform model output without any of the expected structure."

	p := ParsePersona(content)

	if p.Username != "" {
		t.Errorf("expected empty username, got %q", p.Username)
	}
	if p.Archetype != "" {
		t.Errorf("expected empty archetype, got %q", p.Archetype)
	}
	if len(p.TopSubreddits) != 0 {
		t.Errorf("expected no subreddits, got %v", p.TopSubreddits)
	}
	if p.PersonaText != content {
		t.Error("expected full text to be retained even when nothing parses")
	}
}

func TestParsePersonaHyphenArchetype(t *testing.T) {
	content := `# User Persona: u/other

**The Jester** - uses humor to connect.
`
	p := ParsePersona(content)
	if p.Archetype != "The Jester" {
		t.Errorf("expected archetype with plain hyphen to parse, got %q", p.Archetype)
	}
}
