// Package llm provides a thin chat-completion client over OpenAI-compatible
// endpoints: a blocking call for structured agent steps and a streaming call
// for incremental answer synthesis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	apperrors "github.com/lexrag/lexrag/errors"
)

// Endpoint identifies an OpenAI-compatible service and the model to use.
type Endpoint struct {
	BaseURL string
	APIKey  string
	Model   string
}

// normalizedBaseURL ensures the base URL carries a trailing slash so that
// SDK path joining keeps any /v1 suffix intact.
func (e Endpoint) normalizedBaseURL() string {
	base := strings.TrimSpace(e.BaseURL)
	if base == "" {
		return base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// Client issues chat completions against a single endpoint.
type Client struct {
	endpoint Endpoint
	api      openai.Client
}

// NewClient builds a client for the given endpoint.
func NewClient(endpoint Endpoint) *Client {
	opts := []option.RequestOption{option.WithAPIKey(endpoint.APIKey)}
	if base := endpoint.normalizedBaseURL(); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Client{
		endpoint: endpoint,
		api:      openai.NewClient(opts...),
	}
}

// Complete sends prompt as a single user message at low temperature and
// returns the assistant text. Agent steps that expect JSON output go through
// here; the deterministic temperature keeps the format stable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.endpoint.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: param.NewOpt(0.1),
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("llm: completion status %d: %w", apiErr.StatusCode, apperrors.ErrUpstreamStatus)
		}
		return "", fmt.Errorf("llm: completion request: %v: %w", err, apperrors.ErrTransport)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("llm: completion returned no choices: %w", apperrors.ErrDecode)
	}
	return completion.Choices[0].Message.Content, nil
}
