// Package stats assembles the learner's progress report from the answer
// history and the review deck.
package stats

import (
	"fmt"
	"time"

	"github.com/civicprep/civicprep/internal/mastery"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/readiness"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
)

// MasteryReport is the per-category mastery view.
type MasteryReport struct {
	Overall         int                     `json:"overall"`
	Categories      []mastery.CategoryEntry `json:"categories"`
	WeakAreas       []mastery.WeakArea      `json:"weakAreas"`
	StaleCategories []mastery.StaleCategory `json:"staleCategories"`
	Milestone       *mastery.Milestone      `json:"milestone"`
}

// Report is everything the progress views display.
type Report struct {
	Readiness   *readiness.Result `json:"readiness"`
	Mastery     MasteryReport     `json:"mastery"`
	Answered    int               `json:"answered"`
	Attempted   int               `json:"attempted"`
	BankSize    int               `json:"bankSize"`
	DeckSize    int               `json:"deckSize"`
	DueCount    int               `json:"dueCount"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Mastery computes the mastery view at now.
func Mastery(bank *question.Bank, history []store.StoredAnswer, now time.Time) (MasteryReport, error) {
	catMap := bank.CategoryQuestionIDs()
	entries, err := mastery.Compute(history, catMap, now)
	if err != nil {
		return MasteryReport{}, fmt.Errorf("compute mastery: %w", err)
	}
	overall, err := mastery.OverallMastery(entries)
	if err != nil {
		return MasteryReport{}, fmt.Errorf("overall mastery: %w", err)
	}
	return MasteryReport{
		Overall:         overall,
		Categories:      entries,
		WeakAreas:       mastery.DetectWeakAreas(entries, mastery.DefaultWeakThreshold),
		StaleCategories: mastery.DetectStaleCategories(history, catMap, mastery.DefaultStaleDays, now),
		Milestone:       mastery.NextMilestone(overall),
	}, nil
}

// Build computes the full report at now.
func Build(bank *question.Bank, history []store.StoredAnswer, cards []spacedrep.Card, now time.Time) (*Report, error) {
	m, err := Mastery(bank, history, now)
	if err != nil {
		return nil, err
	}

	catMastery := make(map[string]int, len(m.Categories))
	for _, e := range m.Categories {
		catMastery[e.CategoryID] = e.Mastery
	}
	attempted := make(map[string]bool)
	for _, a := range history {
		attempted[a.QuestionID] = true
	}

	res, err := readiness.Calculate(readiness.Input{
		CategoryMastery:       catMastery,
		TotalQuestions:        bank.Len(),
		Attempted:             attempted,
		Cards:                 cards,
		CategoryQuestions:     bank.CategoryQuestionIDs(),
		MainCategoryQuestions: bank.MainCategoryQuestionIDs(),
	}, now)
	if err != nil {
		return nil, fmt.Errorf("compute readiness: %w", err)
	}

	due := 0
	for _, c := range cards {
		if c.IsDue(now) {
			due++
		}
	}

	return &Report{
		Readiness:   res,
		Mastery:     m,
		Answered:    len(history),
		Attempted:   len(attempted),
		BankSize:    bank.Len(),
		DeckSize:    len(cards),
		DueCount:    due,
		GeneratedAt: now,
	}, nil
}
