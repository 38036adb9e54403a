package dialog

import (
	"fmt"
	"strings"

	"habitcoach/internal/models"
)

// Button payloads understood by the engine.
const (
	ActionStartHabit  = "start_habit"
	ActionDaysDone    = "days_done"
	ActionConfirm     = "confirm_habit"
	prefixCategory    = "category:"
	prefixToggleDay   = "toggle_day:"
	prefixTimezone    = "timezone:"
	prefixEdit        = "edit:"
	invalidTimeNotice = "❌ Invalid time format. Please enter time as HH:MM."
	noDaysNotice      = "Please select at least one day."
)

var categoryLabels = map[models.Category]string{
	models.CategoryHealth:   "🧠 Health",
	models.CategoryLearning: "📚 Learning",
	models.CategoryFitness:  "🏃 Fitness",
	models.CategorySleep:    "🛏️ Sleep",
	models.CategoryCustom:   "✍️ Custom",
}

// editTargets maps edit:<field> payloads to the step that re-collects it.
var editTargets = map[string]State{
	"name":        StateEnterName,
	"description": StateEnterDescription,
	"goal":        StateSetGoal,
	"days":        StateSelectDays,
	"timezone":    StateSelectTimezone,
	"time":        StateSelectTime,
}

func categoryPrompt() models.Prompt {
	p := models.Prompt{Text: "📂 Choose a category for your habit:"}
	for _, c := range models.Categories {
		p.Actions = append(p.Actions, models.Action{Label: categoryLabels[c], Data: prefixCategory + string(c)})
	}
	return p
}

func daysPrompt(selected []string) models.Prompt {
	p := models.Prompt{Text: "Select the days for your habit:"}
	if len(selected) > 0 {
		p.Text = "You have selected: " + strings.Join(models.SortDays(selected), ", ") + "\nYou can select more or press Done."
	}
	chosen := map[string]bool{}
	for _, d := range selected {
		chosen[d] = true
	}
	for _, d := range models.Weekdays {
		label := d
		if chosen[d] {
			label = "✅ " + d
		}
		p.Actions = append(p.Actions, models.Action{Label: label, Data: prefixToggleDay + d})
	}
	p.Actions = append(p.Actions, models.Action{Label: "✅ Done", Data: ActionDaysDone})
	return p
}

func timezonePrompt() models.Prompt {
	p := models.Prompt{Text: "🌍 Select your timezone:"}
	for off := models.MinTimezoneOffset; off <= models.MaxTimezoneOffset; off++ {
		p.Actions = append(p.Actions, models.Action{Label: models.FormatOffset(off), Data: fmt.Sprintf("%s%d", prefixTimezone, off)})
	}
	return p
}

func confirmPrompt(d Draft) models.Prompt {
	var b strings.Builder
	b.WriteString("🧾 Please confirm your habit setup:\n")
	fmt.Fprintf(&b, "• Category: %s\n", *d.Category)
	fmt.Fprintf(&b, "• Name: %s\n", d.Name)
	fmt.Fprintf(&b, "• Description: %s\n", d.Description)
	fmt.Fprintf(&b, "• Goal: %s\n", d.Goal)
	fmt.Fprintf(&b, "• Days: %s\n", strings.Join(models.SortDays(d.Days), ", "))
	fmt.Fprintf(&b, "• Timezone: %s\n", models.FormatOffset(*d.Timezone))
	fmt.Fprintf(&b, "• Reminder Time: %s", d.ReminderTime)
	return models.Prompt{
		Text: b.String(),
		Actions: []models.Action{
			{Label: "✅ Confirm", Data: ActionConfirm},
			{Label: "✏️ Change Name", Data: prefixEdit + "name"},
			{Label: "✏️ Change Description", Data: prefixEdit + "description"},
			{Label: "✏️ Change Goal", Data: prefixEdit + "goal"},
			{Label: "📆 Change Days", Data: prefixEdit + "days"},
			{Label: "🌍 Change Timezone", Data: prefixEdit + "timezone"},
			{Label: "⏰ Change Time", Data: prefixEdit + "time"},
		},
	}
}

// stepPrompt asks for the field collected in state. editing switches the
// free-text prompts to their "enter a new ..." wording.
func stepPrompt(state State, d Draft, editing bool) models.Prompt {
	switch state {
	case StateChooseCategory:
		return categoryPrompt()
	case StateEnterName:
		if editing {
			return models.Prompt{Text: "✏️ Enter a new name for your habit:"}
		}
		return models.Prompt{Text: "✏️ What habit would you like to develop?\nLet's make a name for it!"}
	case StateEnterDescription:
		if editing {
			return models.Prompt{Text: "✏️ Enter a new description for your habit:"}
		}
		return models.Prompt{Text: "📝 Describe your habit in a few words:"}
	case StateSetGoal:
		if editing {
			return models.Prompt{Text: "✏️ Enter a new goal for your habit:"}
		}
		return models.Prompt{Text: "Great! Now let's set a goal for the next 21 days"}
	case StateSelectDays:
		return daysPrompt(d.Days)
	case StateSelectTimezone:
		return timezonePrompt()
	case StateSelectTime:
		if editing {
			return models.Prompt{Text: "⏰ Enter a new time for the reminder (e.g. 07:00):"}
		}
		return models.Prompt{Text: "⏰ Now enter the time for the reminder (e.g. 07:00):"}
	case StateConfirm:
		return confirmPrompt(d)
	}
	return models.Prompt{Text: "⚠️ Not all fields are filled. Please continue setup."}
}
