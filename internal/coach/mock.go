package coach

import (
	"context"
	"fmt"
)

// MockGenerator answers from templates; used in local mode and tests.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Motivation(_ context.Context, h HabitContext) (string, error) {
	return fmt.Sprintf("Day %s of %q. You've shown up %d times already. Don't stop now! 💪",
		dayLabel(h.Tally), h.Name, h.Tally.Done), nil
}

func (m *MockGenerator) Advice(_ context.Context, h HabitContext, question string) (string, error) {
	return fmt.Sprintf("About %q: keep %q small and tie it to something you already do every day. You've got this!",
		question, h.Name), nil
}
