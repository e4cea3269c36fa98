package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mreed/personalens/internal/prompts"
	"github.com/mreed/personalens/internal/repository"
)

// Searcher is the retrieval surface the ask flow needs from the vector
// store.
type Searcher interface {
	SearchComments(ctx context.Context, query string, limit int) ([]repository.SearchHit, error)
	SearchPersonas(ctx context.Context, query string, limit int) ([]repository.SearchHit, error)
}

// AskService answers free-text questions by retrieving relevant comments
// and personas and prompting the LLM with them.
type AskService struct {
	store       Searcher
	generator   Generator
	temperature float64
}

// NewAskService creates an ask service.
func NewAskService(store Searcher, gen Generator, temperature float64) *AskService {
	return &AskService{
		store:       store,
		generator:   gen,
		temperature: temperature,
	}
}

// Answer holds the generated answer together with the hits it was
// grounded on.
type Answer struct {
	Text string
	Hits []repository.SearchHit
}

// Ask embeds the question, retrieves nearest neighbors, and generates an
// answer from the assembled context.
func (s *AskService) Ask(ctx context.Context, question string, limit int, includePersonas bool) (*Answer, error) {
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.store.SearchComments(ctx, question, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search comments: %w", err)
	}

	if includePersonas {
		personaHits, err := s.store.SearchPersonas(ctx, question, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to search personas: %w", err)
		}
		hits = append(hits, personaHits...)
	}

	if len(hits) == 0 {
		return &Answer{Text: "No relevant context found in the research database."}, nil
	}

	prompt := fmt.Sprintf(prompts.AskPromptTemplate, FormatContext(hits), question)

	response, err := s.generator.Generate(ctx, prompt, GenerateOptions{Temperature: s.temperature})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Answer{Text: cleanResponse(response), Hits: hits}, nil
}

// FormatContext renders retrieved hits as a plain text block for the
// prompt. Comment hits carry text/username/subreddit, persona hits carry
// persona_text/username; unknown payload shapes fall back to the text
// field alone.
func FormatContext(hits []repository.SearchHit) string {
	var blocks []string

	for _, hit := range hits {
		username, _ := hit.Payload["username"].(string)

		if personaText, ok := hit.Payload["persona_text"].(string); ok {
			blocks = append(blocks, fmt.Sprintf("Persona of u/%s:\n%s", username, truncate(personaText, 1500)))
			continue
		}

		text, _ := hit.Payload["text"].(string)
		subreddit, _ := hit.Payload["subreddit"].(string)
		score, _ := hit.Payload["score"].(int64)
		blocks = append(blocks, fmt.Sprintf("u/%s in r/%s (score %d): %s", username, subreddit, score, text))
	}

	return strings.Join(blocks, "\n\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
