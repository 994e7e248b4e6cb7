// Package llm adapts an OpenAI-compatible chat completions endpoint to core.LLMClient.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/contratai/contratai/internal/config"
	"github.com/contratai/contratai/internal/core"
)

// Client calls the chat completions API with function tools bound.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	maxRetries  int
	// Backoff is the wait before the first retry; it doubles on each further retry.
	Backoff time.Duration
	logger  zerolog.Logger
}

// New builds a client from cfg. An empty BaseURL targets OpenAI.
func New(cfg config.LLMConfig, logger zerolog.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		api:         openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		maxRetries:  cfg.MaxRetries,
		Backoff:     time.Second,
		logger:      logger.With().Str("component", "llm").Logger(),
	}
}

// ChatCompletionWithTools sends messages with tools bound and returns the first
// choice's content and tool calls. Rate limits, 5xx and network errors are
// retried with exponential backoff.
func (c *Client) ChatCompletionWithTools(ctx context.Context, messages []core.Message, tools []core.ToolDefinition) (string, []core.ToolCall, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
		req.ToolChoice = "auto"
	}

	backoff := c.Backoff
	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn().Err(err).Int("attempt", attempt).Int("max_retries", c.maxRetries).
				Dur("backoff", backoff).Msg("retrying chat completion")
			select {
			case <-ctx.Done():
				return "", nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		resp, err = c.api.CreateChatCompletion(ctx, req)
		if err == nil || !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return "", nil, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, errors.New("llm: no choices in response")
	}
	msg := resp.Choices[0].Message
	c.logger.Debug().Str("model", resp.Model).Int("tool_calls", len(msg.ToolCalls)).
		Int("total_tokens", resp.Usage.TotalTokens).Msg("chat completion")
	return msg.Content, fromOpenAIToolCalls(msg.ToolCalls), nil
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func toOpenAIMessages(msgs []core.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		om := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, om)
	}
	return out
}

func toOpenAITools(defs []core.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Function.Name,
				Description: d.Function.Description,
				Parameters:  d.Function.Parameters,
			},
		})
	}
	return out
}

func fromOpenAIToolCalls(calls []openai.ToolCall) []core.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]core.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, core.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: core.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}
