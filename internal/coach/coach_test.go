package coach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"habitcoach/internal/models"
)

var testHabit = HabitContext{
	Name:        "Read",
	Description: "Read before bed",
	Goal:        "Finish two books",
	Tally:       models.Tally{Done: 5, Partial: 2, Missed: 1},
}

func TestBuildPromptsIncludeProgress(t *testing.T) {
	p := BuildMotivationPrompt(testHabit)
	for _, want := range []string{"Habit: Read", "Today: Day 8/21", "Completed: 5", "Partial: 2", "Missed: 1"} {
		if !strings.Contains(p, want) {
			t.Errorf("motivation prompt missing %q:\n%s", want, p)
		}
	}
	a := BuildAdvicePrompt(testHabit, "How do I stay focused?")
	if !strings.Contains(a, "Question: How do I stay focused?") || !strings.Contains(a, "Day: 8/21") {
		t.Errorf("unexpected advice prompt:\n%s", a)
	}
}

func TestParseCompletion(t *testing.T) {
	text, err := parseCompletion(200, []byte(`{"choices":[{"message":{"role":"assistant","content":"  Keep going!  "}}]}`))
	if err != nil || text != "Keep going!" {
		t.Fatalf("got %q, %v", text, err)
	}

	_, err = parseCompletion(429, []byte(`{"error":{"message":"rate limited"}}`))
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected provider error message, got %v", err)
	}

	if _, err := parseCompletion(502, []byte("<html>bad gateway</html>")); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestTogetherClientRoundTrip(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Stay strong 🔥"}}]}`))
	}))
	defer srv.Close()

	client, err := NewTogetherClient(srv.URL, "secret", "test-model", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	text, err := client.Motivation(context.Background(), testHabit)
	if err != nil {
		t.Fatalf("motivation: %v", err)
	}
	if text != "Stay strong 🔥" {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.MaxTokens != 180 {
		t.Fatalf("expected motivation max tokens 180, got %d", got.MaxTokens)
	}
}

func TestNewTogetherClientRequiresKey(t *testing.T) {
	if _, err := NewTogetherClient("http://localhost", "", "m", time.Second); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestMockGenerator(t *testing.T) {
	m := NewMockGenerator()
	text, err := m.Motivation(context.Background(), testHabit)
	if err != nil || !strings.Contains(text, "8/21") {
		t.Fatalf("got %q, %v", text, err)
	}
	text, err = m.Advice(context.Background(), testHabit, "tips?")
	if err != nil || !strings.Contains(text, "tips?") {
		t.Fatalf("got %q, %v", text, err)
	}
}
