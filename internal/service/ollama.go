package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Generator produces free text from a prompt. Satisfied by OllamaClient;
// tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions tune a single generation call.
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	NumCtx      int
}

// OllamaClient talks to a locally hosted Ollama server for text generation
// and embeddings.
type OllamaClient struct {
	client         *resty.Client
	model          string
	embeddingModel string
	baseURL        string
}

// OllamaConfig holds configuration for the Ollama client.
type OllamaConfig struct {
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg *OllamaConfig) *OllamaClient {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	// Persona generation over a full comment history can take minutes on
	// local hardware.
	client.SetTimeout(10 * time.Minute)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaClient{
		client:         client,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		baseURL:        baseURL,
	}
}

// GetModel returns the generation model name being used.
func (c *OllamaClient) GetModel() string {
	return c.model
}

// GetEmbeddingModel returns the embedding model name being used.
func (c *OllamaClient) GetEmbeddingModel() string {
	return c.embeddingModel
}

// Ollama API request/response structures
type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Generate runs a single non-streaming completion and returns the raw
// response text, including any reasoning preamble the model emits.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	options := map[string]interface{}{
		"temperature": opts.Temperature,
	}
	if opts.TopP > 0 {
		options["top_p"] = opts.TopP
	}
	if opts.NumCtx > 0 {
		options["num_ctx"] = opts.NumCtx
	}

	req := ollamaGenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	}

	var resp ollamaGenerateResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.baseURL + "/api/generate")

	if err != nil {
		return "", fmt.Errorf("failed to call Ollama generate API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != "" {
			return "", fmt.Errorf("Ollama generate error: HTTP %d: %s", httpResp.StatusCode(), resp.Error)
		}
		return "", fmt.Errorf("Ollama generate error: HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	if resp.Error != "" {
		return "", fmt.Errorf("Ollama generate error: %s", resp.Error)
	}

	return resp.Response, nil
}

// Embed generates an embedding for a single text.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single call.
func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := ollamaEmbedRequest{
		Model: c.embeddingModel,
		Input: texts,
	}

	var resp ollamaEmbedResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.baseURL + "/api/embed")

	if err != nil {
		return nil, fmt.Errorf("failed to call Ollama embed API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != "" {
			return nil, fmt.Errorf("Ollama embed error: HTTP %d: %s", httpResp.StatusCode(), resp.Error)
		}
		return nil, fmt.Errorf("Ollama embed error: HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("Ollama embed error: %s", resp.Error)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("unexpected number of embeddings: got %d, expected %d", len(resp.Embeddings), len(texts))
	}

	return resp.Embeddings, nil
}
