package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"habitcoach/internal/auth"
	"habitcoach/internal/models"
	"habitcoach/internal/observability"
	"habitcoach/internal/store"
)

var ErrNoSubscriptions = errors.New("no push subscriptions")

// PushAction is a notification button as understood by the service worker.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// PushPayload represents the notification payload sent to clients
type PushPayload struct {
	Title   string                 `json:"title"`
	Body    string                 `json:"body"`
	Tag     string                 `json:"tag,omitempty"`
	Actions []PushAction           `json:"actions,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string
}

type sendFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// WebPushSender delivers prompts to every push subscription of a user.
// Reminder outcome buttons become notification actions whose callback URL
// carries a signed token.
type WebPushSender struct {
	subs   store.SubscriptionStore
	signer *auth.ActionSigner
	vapid  VAPIDConfig
	send   sendFunc
}

func NewWebPushSender(subs store.SubscriptionStore, signer *auth.ActionSigner, vapid VAPIDConfig) *WebPushSender {
	return &WebPushSender{
		subs:   subs,
		signer: signer,
		vapid:  vapid,
		send:   webpush.SendNotificationWithContext,
	}
}

func (s *WebPushSender) options() *webpush.Options {
	return &webpush.Options{
		Subscriber:      s.vapid.Subject,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             30,
	}
}

// BuildPayload converts a prompt into a notification payload.
func (s *WebPushSender) BuildPayload(userID models.UserID, prompt models.Prompt) (PushPayload, error) {
	title, body, _ := strings.Cut(prompt.Text, "\n")
	if body == "" {
		title, body = "21Day", prompt.Text
	}
	payload := PushPayload{
		Title: title,
		Body:  body,
		Tag:   fmt.Sprintf("habitcoach-%d", time.Now().Unix()),
		Data:  map[string]interface{}{},
	}

	callbacks := map[string]string{}
	for _, a := range prompt.Actions {
		payload.Actions = append(payload.Actions, PushAction{Action: a.Data, Title: a.Label})
		status, habitID, ok := models.ParseOutcomeAction(a.Data)
		if !ok || s.signer == nil {
			continue
		}
		token, err := s.signer.Sign(userID, habitID, status)
		if err != nil {
			return payload, fmt.Errorf("sign action %s: %w", a.Data, err)
		}
		callbacks[a.Data] = "/api/actions/" + token
		payload.Tag = "habitcoach-" + string(habitID)
	}
	if len(callbacks) > 0 {
		payload.Data["callbacks"] = callbacks
	}
	return payload, nil
}

func (s *WebPushSender) SendPrompt(ctx context.Context, userID models.UserID, prompt models.Prompt) error {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	subs, err := s.subs.ListSubscriptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return fmt.Errorf("%w for user %s", ErrNoSubscriptions, userID)
	}

	payload, err := s.BuildPayload(userID, prompt)
	if err != nil {
		return err
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	options := s.options()
	successCount := 0
	failCount := 0

	for _, sub := range subs {
		subscription := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}

		resp, err := s.send(ctx, payloadJSON, subscription, options)
		if err != nil {
			log.Warn("push send failed", "endpoint", sub.Endpoint, "error", err)
			failCount++
			continue
		}

		status := resp.StatusCode
		if status >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			log.Warn("push service error", "endpoint", sub.Endpoint, "status", status, "body", string(body))
		}
		resp.Body.Close()

		switch {
		case status == http.StatusGone || status == http.StatusNotFound:
			// Expired subscription.
			s.prune(ctx, sub.Endpoint)
			failCount++
			continue
		case status == http.StatusForbidden:
			// VAPID keys changed; the client re-subscribes with the current key.
			s.prune(ctx, sub.Endpoint)
			failCount++
			continue
		case status >= 400:
			failCount++
			continue
		}

		successCount++
	}

	log.Info("push notification summary", "subscriptions", len(subs), "success", successCount, "failed", failCount)

	if successCount == 0 {
		return fmt.Errorf("failed to send any push notifications (attempted %d)", failCount)
	}
	return nil
}

func (s *WebPushSender) prune(ctx context.Context, endpoint string) {
	if err := s.subs.DeleteSubscriptionByEndpoint(ctx, endpoint); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to prune subscription", "endpoint", endpoint, "error", err)
		return
	}
	observability.LoggerFromContext(ctx).Info("removed stale subscription", "endpoint", endpoint)
}
