// Package openrouter implements the provider interface against the
// OpenRouter chat-completions API.
package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"recipe-extractor/internal/core/ai/provider"
	"recipe-extractor/internal/infrastructure/config"
	"recipe-extractor/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://openrouter.ai/api/v1"

// Client talks to OpenRouter.
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient creates an OpenRouter client configured from cfg.
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-extractor.com").
		SetHeader("X-Title", "Recipe Extractor")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.OpenRouter.Model
}

// Generate sends one chat-completion request. All images in req are
// attached to the same message as ordered content parts.
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	content := []map[string]interface{}{
		{
			"type": "text",
			"text": req.Prompt,
		},
	}
	for _, img := range req.Images {
		content = append(content, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": dataURI(img),
			},
		})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.OpenRouter.MaxTokens
	}

	body := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
		"max_tokens": maxTokens,
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("image_count", len(req.Images)),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			common.LogError("OpenRouter request timed out",
				zap.String("model", c.config.OpenRouter.Model),
				zap.Duration("timeout", c.config.OpenRouter.Timeout),
			)
			return nil, provider.ErrTimeout
		}
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("OpenRouter returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.config.OpenRouter.Model),
		)
		return nil, fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage provider.TokenUsage `json:"usage"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content0 := result.Choices[0].Message.Content
	if content0 == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogInfo("OpenRouter request completed",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("content_length", len(content0)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &provider.Response{
		Content: content0,
		Usage:   result.Usage,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func dataURI(img provider.ImageBlob) string {
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(img.Data))
}
