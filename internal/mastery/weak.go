package mastery

import (
	"math"
	"sort"
	"time"

	"github.com/civicprep/civicprep/internal/store"
)

// DefaultWeakThreshold is the mastery below which a category is weak.
const DefaultWeakThreshold = 60

// DefaultStaleDays is how long a category may go unpracticed before it is stale.
const DefaultStaleDays = 7

// WeakArea is a category whose mastery is below the threshold.
type WeakArea struct {
	CategoryID string `json:"categoryId"`
	Mastery    int    `json:"mastery"`
}

// DetectWeakAreas returns the entries below threshold, weakest first.
func DetectWeakAreas(entries []CategoryEntry, threshold int) []WeakArea {
	out := []WeakArea{}
	for _, e := range entries {
		if e.Mastery < threshold {
			out = append(out, WeakArea{CategoryID: e.CategoryID, Mastery: e.Mastery})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mastery < out[j].Mastery })
	return out
}

// StaleCategory is a category that was never practiced, or not recently.
// LastPracticed and DaysSincePractice are nil when never practiced.
type StaleCategory struct {
	CategoryID        string     `json:"categoryId"`
	LastPracticed     *time.Time `json:"lastPracticed"`
	DaysSincePractice *int       `json:"daysSincePractice"`
}

// DetectStaleCategories returns categories with no answers, plus those whose
// latest answer is older than staleDays. Output is ordered by category ID.
func DetectStaleCategories(history []store.StoredAnswer, categoryMap map[string][]string, staleDays int, now time.Time) []StaleCategory {
	threshold := now.Add(-time.Duration(staleDays) * 24 * time.Hour)

	ids := make([]string, 0, len(categoryMap))
	for id := range categoryMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []StaleCategory{}
	for _, id := range ids {
		qs := make(map[string]bool, len(categoryMap[id]))
		for _, q := range categoryMap[id] {
			qs[q] = true
		}

		var last time.Time
		for _, a := range history {
			if qs[a.QuestionID] && a.Timestamp.After(last) {
				last = a.Timestamp
			}
		}

		if last.IsZero() {
			out = append(out, StaleCategory{CategoryID: id})
			continue
		}
		if last.Before(threshold) {
			days := int(math.Floor(now.Sub(last).Hours() / 24))
			out = append(out, StaleCategory{
				CategoryID:        id,
				LastPracticed:     &last,
				DaysSincePractice: &days,
			})
		}
	}
	return out
}

// Level is a mastery milestone tier.
type Level string

const (
	LevelBronze Level = "bronze"
	LevelSilver Level = "silver"
	LevelGold   Level = "gold"
)

// Milestone is the next mastery goal.
type Milestone struct {
	Level     Level `json:"level"`
	Target    int   `json:"target"`
	Remaining int   `json:"remaining"`
}

// NextMilestone returns the next goal above mastery, or nil at 100.
func NextMilestone(mastery int) *Milestone {
	switch {
	case mastery >= 100:
		return nil
	case mastery < 50:
		return &Milestone{Level: LevelBronze, Target: 50, Remaining: 50 - mastery}
	case mastery < 75:
		return &Milestone{Level: LevelSilver, Target: 75, Remaining: 75 - mastery}
	default:
		return &Milestone{Level: LevelGold, Target: 100, Remaining: 100 - mastery}
	}
}
