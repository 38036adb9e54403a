package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"habitcoach/internal/api"
	"habitcoach/internal/auth"
	"habitcoach/internal/coach"
	"habitcoach/internal/dialog"
	"habitcoach/internal/dispatch"
	"habitcoach/internal/models"
	"habitcoach/internal/outcome"
	"habitcoach/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	app    *fiber.App
	repo   *store.SQLiteStore
	signer *auth.ActionSigner
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	repo, err := store.NewSQLiteStore(":memory:", "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	signer, err := auth.NewActionSigner(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	outcomes := outcome.NewService(repo, coach.NewMockGenerator())
	engine := dialog.NewEngine(repo, dialog.NewSessions(time.Hour))

	app := api.NewApp(api.Deps{
		Dispatcher:     dispatch.New(engine, outcomes),
		Outcomes:       outcomes,
		Subscriptions:  repo,
		Signer:         signer,
		VAPIDPublicKey: "test-public-key",
	}, "*", false)
	return &testEnv{app: app, repo: repo, signer: signer}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return resp, bodyBytes
}

func sendEvent(t *testing.T, app *fiber.App, ev models.Event) []models.Prompt {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/events", ev, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 for %+v, got %d: %s", ev, resp.StatusCode, body)
	}
	var out api.EventResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	return out.Prompts
}

func createHabitViaEvents(t *testing.T, app *fiber.App, user models.UserID) {
	t.Helper()
	steps := []models.Event{
		{Kind: models.EventButton, Payload: dialog.ActionStartHabit},
		{Kind: models.EventButton, Payload: "category:health"},
		{Kind: models.EventText, Payload: "Drink water"},
		{Kind: models.EventText, Payload: "8 glasses"},
		{Kind: models.EventText, Payload: "feel better"},
		{Kind: models.EventButton, Payload: "toggle_day:Monday"},
		{Kind: models.EventButton, Payload: dialog.ActionDaysDone},
		{Kind: models.EventButton, Payload: "timezone:2"},
		{Kind: models.EventText, Payload: "08:00"},
		{Kind: models.EventButton, Payload: dialog.ActionConfirm},
	}
	for _, ev := range steps {
		ev.UserID = user
		sendEvent(t, app, ev)
	}
}

func TestHealth(t *testing.T) {
	env := setupTestApp(t)
	resp, _ := doJSON(t, env.app, "GET", "/health", nil, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(api.HeaderRequestID) == "" {
		t.Fatal("Expected request id header")
	}
}

func TestEventsDriveSetupAndProgress(t *testing.T) {
	env := setupTestApp(t)
	createHabitViaEvents(t, env.app, "alice")

	habits, _ := env.repo.GetHabitsByUser(context.Background(), "alice")
	if len(habits) != 1 || habits[0].Name != "Drink water" {
		t.Fatalf("Expected created habit, got %+v", habits)
	}

	prompts := sendEvent(t, env.app, models.Event{
		UserID: "alice", Kind: models.EventButton,
		Payload: models.OutcomeAction(models.StatusDone, habits[0].ID),
	})
	if prompts[0].Text != outcome.Ack(models.StatusDone) {
		t.Fatalf("Unexpected ack %q", prompts[0].Text)
	}

	resp, body := doJSON(t, env.app, "GET", "/api/users/alice/progress", nil, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
	}
	var progress struct {
		Day   int          `json:"day"`
		Tally models.Tally `json:"tally"`
	}
	json.Unmarshal(body, &progress)
	if progress.Day != 1 || progress.Tally.Done != 1 {
		t.Fatalf("Unexpected progress %s", body)
	}

	resp, _ = doJSON(t, env.app, "GET", "/api/users/nobody/progress", nil, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestEventsValidation(t *testing.T) {
	env := setupTestApp(t)

	resp, _ := doJSON(t, env.app, "POST", "/api/events", models.Event{Kind: models.EventText, Payload: "/start"}, nil)
	if resp.StatusCode != 400 {
		t.Fatalf("Expected status 400 without user, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, env.app, "POST", "/api/events", models.Event{UserID: "a", Kind: "swipe"}, nil)
	if resp.StatusCode != 400 {
		t.Fatalf("Expected status 400 for unknown kind, got %d", resp.StatusCode)
	}

	resp, body := doJSON(t, env.app, "POST", "/api/events",
		models.Event{Payload: "/start"}, map[string]string{api.HeaderUserID: "bob"})
	if resp.StatusCode != 200 {
		t.Fatalf("Expected header user to be accepted, got %d: %s", resp.StatusCode, body)
	}
}

func TestActionTokenRecordsOutcome(t *testing.T) {
	env := setupTestApp(t)
	createHabitViaEvents(t, env.app, "carol")
	habits, _ := env.repo.GetHabitsByUser(context.Background(), "carol")
	id := habits[0].ID

	token, err := env.signer.Sign("carol", id, models.StatusMissed)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		resp, body := doJSON(t, env.app, "POST", "/api/actions/"+token, nil, nil)
		if resp.StatusCode != 200 {
			t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
		}
	}
	logs, _ := env.repo.GetLogs(context.Background(), "carol", id)
	if len(logs) != 1 || logs[0] != models.StatusMissed {
		t.Fatalf("Expected a single missed log, got %v", logs)
	}

	resp, _ := doJSON(t, env.app, "POST", "/api/actions/not-a-token", nil, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}

	env.repo.Deactivate(context.Background(), id)
	resp, _ = doJSON(t, env.app, "POST", "/api/actions/"+token, nil, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("Expected status 409 for finished habit, got %d", resp.StatusCode)
	}
}

func TestPushSubscriptions(t *testing.T) {
	env := setupTestApp(t)
	sub := models.PushSubscription{Endpoint: "https://push.example/1", P256dh: "key", Auth: "auth"}

	resp, _ := doJSON(t, env.app, "POST", "/api/push/subscribe", sub, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401 without user header, got %d", resp.StatusCode)
	}

	headers := map[string]string{api.HeaderUserID: "dave"}
	resp, body := doJSON(t, env.app, "POST", "/api/push/subscribe", sub, headers)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
	}
	subs, _ := env.repo.ListSubscriptions(context.Background(), "dave")
	if len(subs) != 1 {
		t.Fatalf("Expected one subscription, got %d", len(subs))
	}

	resp, _ = doJSON(t, env.app, "POST", "/api/push/subscribe", models.PushSubscription{Endpoint: "x"}, headers)
	if resp.StatusCode != 400 {
		t.Fatalf("Expected status 400 for incomplete subscription, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.app, "DELETE", "/api/push/unsubscribe", models.UnsubscribeRequest{Endpoint: sub.Endpoint}, headers)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	subs, _ = env.repo.ListSubscriptions(context.Background(), "dave")
	if len(subs) != 0 {
		t.Fatalf("Expected subscription removed, got %d", len(subs))
	}

	resp, body = doJSON(t, env.app, "GET", "/api/push/vapid-public-key", nil, nil)
	if resp.StatusCode != 200 || !bytes.Contains(body, []byte("test-public-key")) {
		t.Fatalf("Unexpected vapid response %d: %s", resp.StatusCode, body)
	}
}
