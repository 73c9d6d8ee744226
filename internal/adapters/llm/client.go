package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"booking_bot/internal/adapters/observability"
)

var ErrEmptyCompletion = errors.New("llm: completion has no choices")

type Options struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type Client struct {
	client *openai.Client
	model  string
	maxTok int
	temp   float32
}

func New(key string, opt Options) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	cfg := openai.DefaultConfig(key)
	if opt.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opt.BaseURL, "/")
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: opt.Timeout}
	if opt.Model == "" {
		opt.Model = openai.GPT3Dot5Turbo16K
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  opt.Model,
		maxTok: opt.MaxTokens,
		temp:   opt.Temperature,
	}, nil
}

// Complete sends a system + user turn and returns the first choice verbatim.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.maxTok,
		Temperature: c.temp,
	})
	observability.ObserveExternal("llm", "chat_completions", statusOf(err), time.Since(start))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	out := resp.Choices[0].Message.Content
	zerolog.Ctx(ctx).Debug().
		Str("model", resp.Model).
		Int("tokens", resp.Usage.TotalTokens).
		Str("content", observability.Truncate(out, 200)).
		Msg("llm completion")
	return out, nil
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
