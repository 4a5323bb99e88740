// Package gemini provides a hosted text generator backed by Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Client implements outbound.TextGenerator using the Gemini API
type Client struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

// NewClient creates a new Gemini API client.
func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:    client,
		modelName: model,
		logger:    logger.Named("gemini-client"),
	}, nil
}

// Name identifies the provider
func (c *Client) Name() string {
	return "gemini:" + c.modelName
}

// Generate sends the prompt to the model and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string, opts outbound.GenerateOptions) (string, error) {
	// GenerativeModel carries its generation config, so build one per call.
	model := c.client.GenerativeModel(c.modelName)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	model.SetTemperature(float32(opts.Temperature))
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("generated content is not text")
	}

	c.logger.Debug("Gemini generation completed",
		zap.String("finish_reason", resp.Candidates[0].FinishReason.String()))

	return out.String(), nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}
