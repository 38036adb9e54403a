package models

// Reply-keyboard labels. Taps arrive as text events carrying the label.
const (
	MenuProgress   = "📈 My Progress"
	MenuAssistant  = "🧠 AI Assistant"
	MenuMotivation = "💪 Motivation"
	MenuCancel     = "❌ Cancel Habit"
	MenuRestart    = "🔁 Restart Habit"
	MenuNewHabit   = "🆕 New Habit"
	MenuBack       = "🔙 Back"
)

var (
	MainMenu      = []string{MenuProgress, MenuAssistant, MenuMotivation, MenuCancel}
	CompletedMenu = []string{MenuRestart, MenuNewHabit}
	ChatMenu      = []string{MenuBack}
)
