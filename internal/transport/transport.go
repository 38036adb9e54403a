// Package transport delivers prompts to users outside of a request cycle.
package transport

import (
	"context"
	"fmt"
	"time"

	"habitcoach/internal/models"
	"habitcoach/internal/observability"
)

// Sender delivers one prompt to one user. Implementations must not assume
// the user is reachable.
type Sender interface {
	SendPrompt(ctx context.Context, userID models.UserID, prompt models.Prompt) error
}

type timeoutSender struct {
	next    Sender
	timeout time.Duration
}

// WithTimeout bounds every SendPrompt call on next.
func WithTimeout(next Sender, timeout time.Duration) Sender {
	if timeout <= 0 {
		return next
	}
	return &timeoutSender{next: next, timeout: timeout}
}

func (s *timeoutSender) SendPrompt(ctx context.Context, userID models.UserID, prompt models.Prompt) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.next.SendPrompt(ctx, userID, prompt) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send to %s: %w", userID, ctx.Err())
	}
}

// LogSender writes prompts to the log. Used when no push channel is set up.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) SendPrompt(ctx context.Context, userID models.UserID, prompt models.Prompt) error {
	observability.LoggerFromContext(ctx).Info("prompt (log delivery)",
		"user_id", userID,
		"text", prompt.Text,
		"actions", len(prompt.Actions),
	)
	return nil
}
