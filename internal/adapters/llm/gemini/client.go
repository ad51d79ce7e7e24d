// Package gemini adapts Google's Gemini API to ports.TextGenerator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/ArielDRighi/tarot/internal/domain"
	"github.com/ArielDRighi/tarot/internal/ports"
)

var errNoCandidates = errors.New("no candidates in response")

// Client implements ports.TextGenerator with the genai SDK.
type Client struct {
	client *genai.Client
	logger *slog.Logger
}

var _ ports.TextGenerator = (*Client)(nil)

// NewClient builds a Gemini API client. baseURL overrides the API endpoint
// when non-empty.
func NewClient(ctx context.Context, httpClient *http.Client, apiKey, baseURL string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, logger: logger}, nil
}

// Complete issues a single GenerateContent call.
func (c *Client) Complete(ctx context.Context, system, user string, cfg domain.GenerationConfig) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(cfg.Temperature)),
	}
	if cfg.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(cfg.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, cfg.Model, genai.Text(user), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}

	c.logger.DebugContext(ctx, "gemini generation done",
		"model", cfg.Model,
		"finish_reason", string(resp.Candidates[0].FinishReason),
	)
	return strings.TrimSpace(resp.Text()), nil
}
