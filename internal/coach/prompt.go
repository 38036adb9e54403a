package coach

import (
	"fmt"
	"strings"

	"habitcoach/internal/models"
)

const motivationSystemPrompt = `You are a powerful motivational coach who helps people build habits.
Your tone is direct, emotional, and inspiring, but also human and encouraging.
Speak in second person, use emojis, and end with a call to action.`

const adviceSystemPrompt = `You are a helpful, supportive and smart AI assistant helping a user stay consistent with their habit.
You understand their goal and progress, and you answer their questions with insight and empathy.
Give specific advice, avoid generic responses, and end with a short encouragement. max 100 words`

func dayLabel(t models.Tally) string {
	return fmt.Sprintf("%d/%d", t.CompletedDays(), models.ChallengeDays)
}

// BuildMotivationPrompt renders the user message for a motivation request.
func BuildMotivationPrompt(h HabitContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Habit: %s\n", h.Name)
	fmt.Fprintf(&b, "Description: %s\n", h.Description)
	fmt.Fprintf(&b, "Goal: %s\n", h.Goal)
	fmt.Fprintf(&b, "Today: Day %s\n", dayLabel(h.Tally))
	fmt.Fprintf(&b, "✅ Completed: %d\n", h.Tally.Done)
	fmt.Fprintf(&b, "⚠️ Partial: %d\n", h.Tally.Partial)
	fmt.Fprintf(&b, "❌ Missed: %d\n\n", h.Tally.Missed)
	b.WriteString("You are a tough but inspiring motivational coach. ")
	b.WriteString("Write a short, powerful message to the user. (max 4-6 lines) ")
	b.WriteString("Speak directly using 'you'. Be emotional, intense, and encouraging. ")
	b.WriteString("Make it clear why giving up is NOT an option. Use strong language and emojis to energize them.")
	return b.String()
}

// BuildAdvicePrompt renders the user message for an assistant question.
func BuildAdvicePrompt(h HabitContext, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Habit: %s\n", h.Name)
	fmt.Fprintf(&b, "Description: %s\n", h.Description)
	fmt.Fprintf(&b, "Goal: %s\n", h.Goal)
	fmt.Fprintf(&b, "Day: %s\n", dayLabel(h.Tally))
	fmt.Fprintf(&b, "✅ Completed: %d | ⚠️ Partial: %d | ❌ Missed: %d\n\n", h.Tally.Done, h.Tally.Partial, h.Tally.Missed)
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Based on the above, give your best answer.")
	return b.String()
}
