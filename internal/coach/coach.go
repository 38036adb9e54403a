// Package coach produces motivation and advice text for a habit.
package coach

import (
	"context"

	"habitcoach/internal/models"
)

// HabitContext is what the generator knows about the user's habit.
type HabitContext struct {
	Name        string
	Description string
	Goal        string
	Tally       models.Tally
}

// Generator is the text-generation collaborator. Calls may fail; callers
// turn failures into degraded text.
type Generator interface {
	Motivation(ctx context.Context, habit HabitContext) (string, error)
	Advice(ctx context.Context, habit HabitContext, question string) (string, error)
}
