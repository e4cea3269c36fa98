package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mreed/personalens/internal/domain"
	"github.com/mreed/personalens/internal/prompts"
)

var blankRunRe = regexp.MustCompile(`\n\s*\n\s*\n`)

// PersonaGenerator synthesizes a narrative persona from a user's raw
// comments markdown with a single LLM call.
type PersonaGenerator struct {
	generator   Generator
	temperature float64
	numCtx      int
}

// PersonaGeneratorConfig holds generation parameters. NumCtx should be
// large enough to fit a full comment history (~32K tokens by default).
type PersonaGeneratorConfig struct {
	Temperature float64
	NumCtx      int
}

// NewPersonaGenerator creates a persona generator.
func NewPersonaGenerator(gen Generator, cfg *PersonaGeneratorConfig) *PersonaGenerator {
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	numCtx := cfg.NumCtx
	if numCtx <= 0 {
		numCtx = 32768
	}

	return &PersonaGenerator{
		generator:   gen,
		temperature: temperature,
		numCtx:      numCtx,
	}
}

// Generate produces the persona markdown document for username from the
// raw contents of their comments file. The model response is cleaned of
// reasoning blocks and wrapped with a title header and timestamp.
func (g *PersonaGenerator) Generate(ctx context.Context, username, commentsMarkdown string) (string, error) {
	prompt := fmt.Sprintf(prompts.PersonaPromptTemplate,
		username, commentsMarkdown, strings.Join(domain.Archetypes, ", "))

	response, err := g.generator.Generate(ctx, prompt, GenerateOptions{
		Temperature: g.temperature,
		TopP:        0.9,
		NumCtx:      g.numCtx,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate persona for %s: %w", username, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# User Persona: u/%s\n\n", username)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(cleanResponse(response))

	return b.String(), nil
}

// cleanResponse strips <think> reasoning blocks and collapses runs of
// blank lines left behind.
func cleanResponse(response string) string {
	cleaned := thinkBlockRe.ReplaceAllString(response, "")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
