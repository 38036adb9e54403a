package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"habitcoach/internal/coach"
	"habitcoach/internal/dialog"
	"habitcoach/internal/models"
	"habitcoach/internal/outcome"
	"habitcoach/internal/store"
)

const user models.UserID = "u1"

type harness struct {
	t        *testing.T
	d        *Dispatcher
	repo     *store.MemoryStore
	sessions *dialog.Sessions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := store.NewMemoryStore()
	sessions := dialog.NewSessions(time.Hour)
	engine := dialog.NewEngine(repo, sessions)
	svc := outcome.NewService(repo, coach.NewMockGenerator())
	return &harness{t: t, d: New(engine, svc), repo: repo, sessions: sessions}
}

func (h *harness) text(payload string) []models.Prompt {
	h.t.Helper()
	return h.do(models.EventText, payload)
}

func (h *harness) tap(payload string) []models.Prompt {
	h.t.Helper()
	return h.do(models.EventButton, payload)
}

func (h *harness) do(kind models.EventKind, payload string) []models.Prompt {
	h.t.Helper()
	prompts, err := h.d.Dispatch(context.Background(), models.Event{UserID: user, Kind: kind, Payload: payload})
	if err != nil {
		h.t.Fatalf("dispatch %s %q: %v", kind, payload, err)
	}
	if len(prompts) == 0 {
		h.t.Fatalf("dispatch %s %q returned no prompts", kind, payload)
	}
	return prompts
}

func (h *harness) state() dialog.State {
	sess, ok := h.sessions.Get(user)
	if !ok {
		return ""
	}
	return sess.State
}

func (h *harness) createHabit() models.HabitID {
	h.t.Helper()
	h.text(CommandStart)
	h.tap(dialog.ActionStartHabit)
	h.tap("category:fitness")
	h.text("Run")
	h.text("3 km")
	h.text("10k")
	h.tap("toggle_day:Tuesday")
	h.tap(dialog.ActionDaysDone)
	h.tap("timezone:1")
	h.text("06:30")
	h.tap(dialog.ActionConfirm)
	habits, _ := h.repo.GetHabitsByUser(context.Background(), user)
	if len(habits) == 0 {
		h.t.Fatal("habit not created")
	}
	return habits[len(habits)-1].ID
}

func last(prompts []models.Prompt) models.Prompt {
	return prompts[len(prompts)-1]
}

func TestStartAndSetup(t *testing.T) {
	h := newHarness(t)
	p := h.text(CommandStart)
	if len(p[0].Actions) != 1 || p[0].Actions[0].Data != dialog.ActionStartHabit {
		t.Fatalf("unexpected welcome %+v", p)
	}
	h.createHabit()
	if h.state() != "" {
		t.Fatalf("session left open in %s", h.state())
	}
}

func TestOutcomeButtons(t *testing.T) {
	h := newHarness(t)
	id := h.createHabit()

	p := h.tap(models.OutcomeAction(models.StatusPartial, id))
	if p[0].Text != outcome.Ack(models.StatusPartial) {
		t.Fatalf("unexpected ack %q", p[0].Text)
	}
	again := h.tap(models.OutcomeAction(models.StatusPartial, id))
	if again[0].Text != p[0].Text {
		t.Fatal("repeated tap changed the acknowledgement")
	}
	logs, _ := h.repo.GetLogs(context.Background(), user, id)
	if len(logs) != 1 {
		t.Fatalf("expected one log, got %v", logs)
	}

	p = h.tap(models.OutcomeAction(models.StatusDone, "nope"))
	if !strings.Contains(p[0].Text, "no longer exists") {
		t.Fatalf("unexpected reply %q", p[0].Text)
	}
}

func TestMenuCommands(t *testing.T) {
	h := newHarness(t)
	if p := h.text(models.MenuProgress); p[0].Text != noHabitText {
		t.Fatalf("expected no-habit notice, got %q", p[0].Text)
	}
	h.createHabit()

	if p := h.text(models.MenuProgress); !strings.Contains(p[0].Text, "📊 Run") {
		t.Fatalf("unexpected progress %q", p[0].Text)
	}
	if p := h.text(models.MenuMotivation); !strings.HasPrefix(p[0].Text, "🔥 ") {
		t.Fatalf("unexpected motivation %q", p[0].Text)
	}
	if p := h.text(models.MenuRestart); !strings.Contains(p[0].Text, "No completed habit") {
		t.Fatalf("restart of active habit should fail, got %q", p[0].Text)
	}
	if p := h.text("what now?"); p[0].Text != helpText {
		t.Fatalf("expected fallback, got %q", p[0].Text)
	}
}

func TestAIChatMode(t *testing.T) {
	h := newHarness(t)
	h.createHabit()

	h.text(models.MenuAssistant)
	if h.state() != dialog.StateAIChat {
		t.Fatalf("expected chat mode, got %s", h.state())
	}
	p := h.text("How do I keep going when it rains?")
	if p[0].Text == helpText || len(p[0].Menu) != 1 {
		t.Fatalf("question not answered: %+v", p)
	}
	p = h.text(models.MenuBack)
	if h.state() != "" || len(p[0].Menu) != len(models.MainMenu) {
		t.Fatalf("back did not leave chat: %s %+v", h.state(), p)
	}
}

func TestAIChatWithoutHabitCloses(t *testing.T) {
	h := newHarness(t)
	h.text(models.MenuAssistant)
	p := h.text("hi")
	if p[0].Text != noHabitText || h.state() != "" {
		t.Fatalf("expected chat closed with notice, got %q in %s", p[0].Text, h.state())
	}
}

func TestCancelConfirmWipesEverything(t *testing.T) {
	h := newHarness(t)
	id := h.createHabit()
	h.tap(models.OutcomeAction(models.StatusDone, id))

	h.text(models.MenuCancel)
	if h.state() != dialog.StateConfirmCancel {
		t.Fatalf("expected cancel confirmation, got %s", h.state())
	}
	p := h.tap(ActionConfirmCancel)
	if last(p).Actions[0].Data != dialog.ActionStartHabit {
		t.Fatalf("expected restart offer, got %+v", p)
	}
	habits, _ := h.repo.GetHabitsByUser(context.Background(), user)
	if len(habits) != 0 || h.state() != "" {
		t.Fatalf("cancel left %d habits and state %s", len(habits), h.state())
	}
}

func TestCancelDeclinedRestoresDialog(t *testing.T) {
	h := newHarness(t)
	h.tap(dialog.ActionStartHabit)
	h.tap("category:sleep")
	h.text("Sleep")

	h.text(models.MenuCancel)
	p := h.tap(ActionKeepHabit)
	if h.state() != dialog.StateEnterDescription {
		t.Fatalf("expected description step restored, got %s", h.state())
	}
	if !strings.Contains(last(p).Text, "Describe your habit") {
		t.Fatalf("expected step re-prompt, got %q", last(p).Text)
	}
	sess, _ := h.sessions.Get(user)
	if sess.Draft.Name != "Sleep" {
		t.Fatal("draft lost while cancelling")
	}

	// Anything but yes or no asks again.
	h.text(models.MenuCancel)
	h.text("hmm")
	if h.state() != dialog.StateConfirmCancel {
		t.Fatalf("expected confirmation to stay open, got %s", h.state())
	}
	h.tap(ActionKeepHabit)
	if h.state() != dialog.StateEnterDescription {
		t.Fatalf("expected description step after second decline, got %s", h.state())
	}
}

func TestOutcomeWhileCancelPending(t *testing.T) {
	h := newHarness(t)
	id := h.createHabit()
	h.text(models.MenuCancel)

	p := h.tap(models.OutcomeAction(models.StatusDone, id))
	if p[0].Text != outcome.Ack(models.StatusDone) {
		t.Fatalf("expected outcome ack, got %q", p[0].Text)
	}
	logs, _ := h.repo.GetLogs(context.Background(), user, id)
	if len(logs) != 1 || logs[0] != models.StatusDone {
		t.Fatalf("expected one done log, got %v", logs)
	}
	if h.state() != dialog.StateConfirmCancel {
		t.Fatalf("expected confirmation to stay open, got %s", h.state())
	}

	p = h.text(models.MenuProgress)
	if !strings.Contains(p[0].Text, "Run") {
		t.Fatalf("expected progress summary, got %q", p[0].Text)
	}
	if h.state() != dialog.StateConfirmCancel {
		t.Fatalf("progress closed the confirmation: %s", h.state())
	}

	h.tap(ActionKeepHabit)
	if h.state() != "" {
		t.Fatalf("expected main menu after decline, got %s", h.state())
	}
}

func TestCancelDeclinedWithoutDialog(t *testing.T) {
	h := newHarness(t)
	h.createHabit()
	h.text(models.MenuCancel)
	p := h.tap(ActionKeepHabit)
	if h.state() != "" || len(last(p).Menu) != len(models.MainMenu) {
		t.Fatalf("expected main menu, got %s %+v", h.state(), p)
	}
	habits, _ := h.repo.GetHabitsByUser(context.Background(), user)
	if len(habits) != 1 {
		t.Fatal("declined cancel removed habits")
	}
}

func TestRestartAndNewHabitAfterCompletion(t *testing.T) {
	h := newHarness(t)
	id := h.createHabit()
	h.tap(models.OutcomeAction(models.StatusDone, id))
	h.repo.Deactivate(context.Background(), id)

	p := h.text(models.MenuRestart)
	if !strings.Contains(p[0].Text, "restarted") {
		t.Fatalf("unexpected restart reply %q", p[0].Text)
	}
	logs, _ := h.repo.GetLogs(context.Background(), user, id)
	if len(logs) != 0 {
		t.Fatal("restart kept logs")
	}

	p = h.text(models.MenuNewHabit)
	if h.state() != dialog.StateChooseCategory || len(p) != 2 {
		t.Fatalf("new habit did not open setup: %s %+v", h.state(), p)
	}
}
