package spacedrep

import (
	"fmt"
	"math"
	"time"

	"github.com/civicprep/civicprep/internal/i18n"
)

const day = 24 * time.Hour

// NextReviewText describes when the card is due next, relative to now.
func NextReviewText(card Card, now time.Time) i18n.Bilingual {
	days := int(math.Ceil(float64(card.Due.Sub(now)) / float64(day)))

	switch {
	case days <= 0:
		return i18n.Bilingual{EN: "Now", MY: "ယခု"}
	case days == 1:
		return i18n.Bilingual{EN: "1 day", MY: "၁ ရက်"}
	case days < 7:
		return i18n.Bilingual{
			EN: fmt.Sprintf("%d days", days),
			MY: i18n.BurmeseNumber(days) + " ရက်",
		}
	case days < 30:
		weeks := int(math.Round(float64(days) / 7))
		return i18n.Bilingual{
			EN: plural(weeks, "week"),
			MY: i18n.BurmeseNumber(weeks) + " ပတ်",
		}
	default:
		months := int(math.Round(float64(days) / 30))
		return i18n.Bilingual{
			EN: plural(months, "month"),
			MY: i18n.BurmeseNumber(months) + " လ",
		}
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Status is the display status of a card in the deck list.
type Status string

const (
	StatusNew  Status = "new"
	StatusDue  Status = "due"
	StatusDone Status = "done"
)

// StatusLabel classifies a card as new, due or done, with a bilingual label.
func StatusLabel(card Card, now time.Time) (Status, i18n.Bilingual) {
	switch {
	case card.State == StateNew && card.Reps == 0:
		return StatusNew, i18n.Bilingual{EN: "New", MY: "အသစ်"}
	case card.IsDue(now):
		return StatusDue, i18n.Bilingual{EN: "Due", MY: "ပြန်လည်ရန်"}
	default:
		return StatusDone, i18n.Bilingual{EN: "Done", MY: "ပြီးဆုံး"}
	}
}

// Strength buckets a card by how long its current interval is.
type Strength string

const (
	StrengthLearning Strength = "learning"
	StrengthShort    Strength = "short"
	StrengthMedium   Strength = "medium"
	StrengthStrong   Strength = "strong"
)

// IntervalStrength buckets the card's scheduled interval: up to a day is
// learning, up to a week short, up to a month medium, beyond that strong.
func IntervalStrength(card Card) Strength {
	switch d := card.ScheduledDays; {
	case d <= 1:
		return StrengthLearning
	case d <= 7:
		return StrengthShort
	case d <= 30:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
