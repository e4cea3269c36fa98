package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mreed/personalens/internal/domain"
	"github.com/mreed/personalens/internal/logger"
	"github.com/mreed/personalens/internal/prompts"
)

var (
	thinkBlockRe   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	openFenceRe    = regexp.MustCompile("^```(?:json)?\n?")
	closeFenceRe   = regexp.MustCompile("\n?```$")
	maxBodyPreview = 500
)

// SentimentAnalyzer classifies batches of thread comments by sentiment
// toward the post, one LLM call per batch.
type SentimentAnalyzer struct {
	generator   Generator
	batchSize   int
	temperature float64
	logger      *logger.Logger
}

// SentimentConfig holds configuration for the sentiment analyzer.
type SentimentConfig struct {
	BatchSize   int
	Temperature float64
}

// NewSentimentAnalyzer creates a sentiment analyzer. The batch size is
// validated here: oversized batches risk overflowing the model's context
// window and undersized ones waste round-trips.
func NewSentimentAnalyzer(gen Generator, cfg *SentimentConfig, log *logger.Logger) (*SentimentAnalyzer, error) {
	if cfg.BatchSize < 1 || cfg.BatchSize > 100 {
		return nil, fmt.Errorf("batch_size must be between 1 and 100, got %d", cfg.BatchSize)
	}
	if log == nil {
		log = logger.Default()
	}

	return &SentimentAnalyzer{
		generator:   gen,
		batchSize:   cfg.BatchSize,
		temperature: cfg.Temperature,
		logger:      log,
	}, nil
}

// BatchSize returns the configured batch size.
func (a *SentimentAnalyzer) BatchSize() int {
	return a.batchSize
}

// AnalyzeAll partitions comments into consecutive batches of the configured
// size (the last batch may be shorter) and concatenates results in
// partition order. Sequential, no retries.
func (a *SentimentAnalyzer) AnalyzeAll(ctx context.Context, comments []domain.ThreadComment, postTitle, postBody string) ([]domain.SentimentResult, error) {
	var all []domain.SentimentResult

	for i := 0; i < len(comments); i += a.batchSize {
		end := i + a.batchSize
		if end > len(comments) {
			end = len(comments)
		}
		batch := comments[i:end]

		a.logger.WithFields(logger.Fields{
			logger.FieldBatch: i/a.batchSize + 1,
			logger.FieldCount: len(batch),
		}).Debug("Analyzing sentiment batch")

		results, err := a.AnalyzeBatch(ctx, batch, postTitle, postBody)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}

	return all, nil
}

// AnalyzeBatch classifies a single batch with one LLM call.
func (a *SentimentAnalyzer) AnalyzeBatch(ctx context.Context, comments []domain.ThreadComment, postTitle, postBody string) ([]domain.SentimentResult, error) {
	prompt := a.buildPrompt(comments, postTitle, postBody)

	response, err := a.generator.Generate(ctx, prompt, GenerateOptions{Temperature: a.temperature})
	if err != nil {
		return nil, fmt.Errorf("sentiment generation failed: %w", err)
	}

	return a.parseResponse(response, comments)
}

func (a *SentimentAnalyzer) buildPrompt(comments []domain.ThreadComment, postTitle, postBody string) string {
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		lines = append(lines, fmt.Sprintf("[%s] u/%s: %q", c.ID, c.Author, c.Body))
	}

	bodyPreview := "(no body text)"
	if postBody != "" {
		runes := []rune(postBody)
		if len(runes) > maxBodyPreview {
			runes = runes[:maxBodyPreview]
		}
		bodyPreview = string(runes)
	}

	return fmt.Sprintf(prompts.SentimentPromptTemplate, postTitle, bodyPreview, strings.Join(lines, "\n"))
}

type sentimentItem struct {
	ID        string  `json:"id"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// parseResponse decodes the model output into per-comment results. It
// tolerates a leading <think> reasoning block and a wrapping code fence;
// anything that still fails strict JSON parsing is a contract violation
// surfaced with the raw text for diagnosis, never retried.
func (a *SentimentAnalyzer) parseResponse(responseText string, comments []domain.ThreadComment) ([]domain.SentimentResult, error) {
	idToAuthor := make(map[string]string, len(comments))
	for _, c := range comments {
		idToAuthor[c.ID] = c.Author
	}

	cleaned := strings.TrimSpace(responseText)
	cleaned = strings.TrimSpace(thinkBlockRe.ReplaceAllString(cleaned, ""))

	if strings.HasPrefix(cleaned, "```") {
		cleaned = openFenceRe.ReplaceAllString(cleaned, "")
		cleaned = closeFenceRe.ReplaceAllString(cleaned, "")
	}

	var items []sentimentItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w\nResponse: %s", err, responseText)
	}

	results := make([]domain.SentimentResult, 0, len(items))
	for _, item := range items {
		// The id→author mapping from request time is authoritative; any
		// author field in the response is not trusted.
		username, ok := idToAuthor[item.ID]
		if !ok {
			username = "unknown"
		}
		results = append(results, domain.SentimentResult{
			CommentID: item.ID,
			Username:  username,
			Score:     item.Score,
			Rationale: item.Rationale,
		})
	}

	return results, nil
}
