package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicprep/civicprep/internal/mastery"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testBank(t *testing.T) *question.Bank {
	t.Helper()
	mk := func(id string, c question.Category) question.Question {
		return question.Question{
			ID:         id,
			QuestionEN: id + "?",
			Category:   c,
			Answers:    []question.Answer{{TextEN: "yes", Correct: true}, {TextEN: "no"}},
		}
	}
	b, err := question.New([]question.Question{
		mk("GOV-1", question.CategoryPrinciples),
		mk("GOV-2", question.CategorySystem),
		mk("HIS-1", question.CategoryColonial),
		mk("CIV-1", question.CategorySymbols),
	})
	require.NoError(t, err)
	return b
}

func TestBuild_EmptyHistory(t *testing.T) {
	rep, err := Build(testBank(t), nil, nil, now)
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Readiness.Score)
	assert.True(t, rep.Readiness.IsCapped)
	assert.Len(t, rep.Readiness.CappedCategories, 3)
	assert.Equal(t, 0, rep.Mastery.Overall)
	assert.Len(t, rep.Mastery.Categories, len(question.AllCategories()))
	require.NotNil(t, rep.Mastery.Milestone)
	assert.Equal(t, mastery.LevelBronze, rep.Mastery.Milestone.Level)
	assert.Equal(t, 4, rep.BankSize)
	assert.Zero(t, rep.Attempted)
}

func TestBuild_WithHistoryAndDeck(t *testing.T) {
	history := []store.StoredAnswer{
		{QuestionID: "GOV-1", IsCorrect: true, Timestamp: now.Add(-time.Hour), SessionType: store.SessionTest},
		{QuestionID: "GOV-1", IsCorrect: true, Timestamp: now.Add(-30 * time.Minute), SessionType: store.SessionTest},
		{QuestionID: "HIS-1", IsCorrect: false, Timestamp: now.Add(-time.Hour), SessionType: store.SessionPractice},
		{QuestionID: "CIV-1", IsCorrect: true, Timestamp: now.Add(-time.Hour)},
	}
	cards := []spacedrep.Card{
		spacedrep.NewCard("HIS-1", now.Add(-time.Hour)),
		{QuestionID: "GOV-2", Due: now.Add(48 * time.Hour), State: spacedrep.StateReview, Reps: 2},
	}

	rep, err := Build(testBank(t), history, cards, now)
	require.NoError(t, err)

	assert.False(t, rep.Readiness.IsCapped)
	assert.Empty(t, rep.Readiness.CappedCategories)
	assert.Greater(t, rep.Readiness.Score, 0)
	assert.Equal(t, 4, rep.Answered)
	assert.Equal(t, 3, rep.Attempted)
	assert.Equal(t, 2, rep.DeckSize)
	assert.Equal(t, 1, rep.DueCount)

	byID := make(map[string]int)
	for _, e := range rep.Mastery.Categories {
		byID[e.CategoryID] = e.Mastery
	}
	assert.Equal(t, 100, byID[string(question.CategoryPrinciples)])
	assert.Equal(t, 0, byID[string(question.CategoryColonial)])

	weak := make(map[string]bool)
	for _, w := range rep.Mastery.WeakAreas {
		weak[w.CategoryID] = true
	}
	assert.True(t, weak[string(question.CategoryColonial)])
	assert.False(t, weak[string(question.CategoryPrinciples)])
}
