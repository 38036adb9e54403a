package outcome

import "habitcoach/internal/models"

// Tier selects the closing message shown when a habit reaches 21 days.
type Tier string

const (
	TierVictory       Tier = "victory"
	TierSolid         Tier = "solid"
	TierEncouragement Tier = "encouragement"
)

const (
	victoryThreshold = 18
	solidThreshold   = 14
)

// TierFor keys the tier on the number of fully completed days.
func TierFor(done int) Tier {
	switch {
	case done >= victoryThreshold:
		return TierVictory
	case done >= solidThreshold:
		return TierSolid
	default:
		return TierEncouragement
	}
}

// IsComplete reports whether a habit with this tally has finished its run.
func IsComplete(t models.Tally) bool {
	return t.CompletedDays() >= models.ChallengeDays
}

// ClosingMessage returns the congratulation text for a tier.
func ClosingMessage(tier Tier) string {
	switch tier {
	case TierVictory:
		return "🏆 *ABSOLUTE VICTORY!* 🏆\n\n" +
			"You stayed strong, consistent, and unstoppable for 21 days, and now you've reached the finish line like a true champion! 🥇\n\n" +
			"What you've done isn't just a streak. It's a transformation. You showed up even when it was hard, and that means everything. 💥\n\n" +
			"Be proud. Be loud. And remember: this is just your beginning. 🌟\n\n" +
			"_Ready to conquer the next one?_ 💪"
	case TierSolid:
		return "🎯 *Great job sticking with it!* 🎯\n\n" +
			"You've completed a tough 21-day challenge. It wasn't perfect, but it was *real*. You showed up, made progress, and pushed forward. 💪\n\n" +
			"The dedication you showed matters *so much more* than perfection.\n\n" +
			"_Next time? You'll fly even further._ Keep going! 🌱"
	default:
		return "💡 *You showed courage just by starting.* 💡\n\n" +
			"These 21 days may not have gone as planned, but *you showed up*. You tried. You learned. And you're still here. 💪\n\n" +
			"Progress isn't linear. This was *not a failure*; it was your first step toward growth. 🌱\n\n" +
			"_Fall down seven times, stand up eight._ Let's go!"
	}
}

// CompletionPrompts is what a user receives when a habit finishes: the
// tiered message, then the follow-up menu.
func CompletionPrompts(t models.Tally) []models.Prompt {
	return []models.Prompt{
		{Text: "🎉 " + ClosingMessage(TierFor(t.Done))},
		{Text: "💬 Here's what you can do next:", Menu: models.CompletedMenu},
	}
}
