package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"habitcoach/internal/observability"
)

// TogetherClient calls an OpenAI-compatible chat completions endpoint
// (Together AI by default).
type TogetherClient struct {
	url     string
	apiKey  string
	model   string
	timeout time.Duration
}

func NewTogetherClient(url, apiKey, model string, timeout time.Duration) (*TogetherClient, error) {
	if apiKey == "" {
		return nil, errors.New("TOGETHER_API_KEY must be set")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TogetherClient{url: url, apiKey: apiKey, model: model, timeout: timeout}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *TogetherClient) Motivation(ctx context.Context, h HabitContext) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: motivationSystemPrompt},
			{Role: "user", Content: BuildMotivationPrompt(h)},
		},
		Temperature: 0.9,
		MaxTokens:   180,
	})
}

func (c *TogetherClient) Advice(ctx context.Context, h HabitContext, question string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: adviceSystemPrompt},
			{Role: "user", Content: BuildAdvicePrompt(h, question)},
		},
		Temperature: 0.85,
		MaxTokens:   300,
	})
}

func (c *TogetherClient) complete(ctx context.Context, req chatRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.url)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	agent.JSON(req)
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("together request: %w", errors.Join(errs...))
	}

	observability.LoggerFromContext(ctx).Debug("together response", "status", code, "bytes", len(body))
	return parseCompletion(code, body)
}

func parseCompletion(code int, body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("together response (status %d): %w", code, err)
	}
	if len(resp.Choices) == 0 {
		msg := "unknown error from Together.ai"
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return "", fmt.Errorf("together (status %d): %s", code, msg)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("together returned empty text")
	}
	return text, nil
}
