package service

import (
	"context"
	"strings"
	"testing"

	"github.com/mreed/personalens/internal/repository"
)

type fakeSearcher struct {
	commentHits []repository.SearchHit
	personaHits []repository.SearchHit

	commentQueries []string
	personaQueries []string
}

func (f *fakeSearcher) SearchComments(ctx context.Context, query string, limit int) ([]repository.SearchHit, error) {
	f.commentQueries = append(f.commentQueries, query)
	return f.commentHits, nil
}

func (f *fakeSearcher) SearchPersonas(ctx context.Context, query string, limit int) ([]repository.SearchHit, error) {
	f.personaQueries = append(f.personaQueries, query)
	return f.personaHits, nil
}

func TestFormatContext(t *testing.T) {
	hits := []repository.SearchHit{
		{
			ID:         "id1",
			Similarity: 0.9,
			Payload: map[string]interface{}{
				"text":      "I use vim btw",
				"username":  "alice",
				"subreddit": "golang",
				"score":     int64(42),
			},
		},
		{
			ID:         "id2",
			Similarity: 0.8,
			Payload: map[string]interface{}{
				"username":     "bob",
				"persona_text": "A thoughtful builder of small tools.",
			},
		},
	}

	out := FormatContext(hits)

	if !strings.Contains(out, "u/alice in r/golang (score 42): I use vim btw") {
		t.Errorf("comment hit not rendered as expected:\n%s", out)
	}
	if !strings.Contains(out, "Persona of u/bob:\nA thoughtful builder of small tools.") {
		t.Errorf("persona hit not rendered as expected:\n%s", out)
	}
}

func TestFormatContextTruncatesPersona(t *testing.T) {
	long := strings.Repeat("p", 2000)
	hits := []repository.SearchHit{
		{
			Payload: map[string]interface{}{
				"username":     "bob",
				"persona_text": long,
			},
		},
	}

	out := FormatContext(hits)
	if strings.Contains(out, long) {
		t.Error("expected long persona text to be truncated")
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected truncation marker, got tail %q", out[len(out)-10:])
	}
}

func TestAskNoContext(t *testing.T) {
	store := &fakeSearcher{}
	gen := &fakeGenerator{responses: []string{"should not be called"}}
	svc := NewAskService(store, gen, 0.7)

	answer, err := svc.Ask(context.Background(), "what do they think?", 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Error("expected no generation call when retrieval is empty")
	}
	if !strings.Contains(answer.Text, "No relevant context") {
		t.Errorf("unexpected empty-context answer: %q", answer.Text)
	}
}

func TestAskGeneratesFromHits(t *testing.T) {
	store := &fakeSearcher{
		commentHits: []repository.SearchHit{
			{
				Similarity: 0.91,
				Payload: map[string]interface{}{
					"text":      "Static typing saves me daily.",
					"username":  "alice",
					"subreddit": "golang",
					"score":     int64(10),
				},
			},
		},
		personaHits: []repository.SearchHit{
			{
				Similarity: 0.85,
				Payload: map[string]interface{}{
					"username":     "alice",
					"persona_text": "Pragmatic engineer persona.",
				},
			},
		},
	}
	gen := &fakeGenerator{responses: []string{"<think>x</think>They value static typing."}}
	svc := NewAskService(store, gen, 0.7)

	answer, err := svc.Ask(context.Background(), "how do users feel about typing?", 5, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer.Text != "They value static typing." {
		t.Errorf("expected cleaned answer, got %q", answer.Text)
	}
	if len(answer.Hits) != 2 {
		t.Errorf("expected 2 hits (comment + persona), got %d", len(answer.Hits))
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{
		"how do users feel about typing?",
		"Static typing saves me daily.",
		"Pragmatic engineer persona.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if len(store.personaQueries) != 1 {
		t.Error("expected persona search when includePersonas is set")
	}
}

func TestAskSkipsPersonasByDefault(t *testing.T) {
	store := &fakeSearcher{
		commentHits: []repository.SearchHit{
			{Payload: map[string]interface{}{"text": "t", "username": "u", "subreddit": "s", "score": int64(1)}},
		},
	}
	gen := &fakeGenerator{responses: []string{"answer"}}
	svc := NewAskService(store, gen, 0.7)

	if _, err := svc.Ask(context.Background(), "q", 5, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.personaQueries) != 0 {
		t.Error("expected no persona search without includePersonas")
	}
}
