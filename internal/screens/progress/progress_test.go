package progress

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
)

type memAnswers struct {
	got []store.StoredAnswer
}

func (m *memAnswers) Append(_ context.Context, a store.StoredAnswer) error {
	m.got = append(m.got, a)
	return nil
}

func (m *memAnswers) History(context.Context) ([]store.StoredAnswer, error) {
	return m.got, nil
}

func testDeps(t *testing.T) screen.Deps {
	t.Helper()
	bank, err := question.New([]question.Question{
		{ID: "GOV-01", QuestionEN: "Supreme law?", Category: question.CategoryPrinciples,
			Answers: []question.Answer{{TextEN: "the Constitution", Correct: true}}},
		{ID: "HIS-01", QuestionEN: "First President?", Category: question.CategoryColonial,
			Answers: []question.Answer{{TextEN: "George Washington", Correct: true}}},
	})
	if err != nil {
		t.Fatalf("question.New: %v", err)
	}
	now := time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC)
	answers := &memAnswers{got: []store.StoredAnswer{
		{QuestionID: "GOV-01", IsCorrect: true, Timestamp: now.Add(-time.Hour), SessionType: store.SessionTest},
	}}
	return screen.Deps{
		Bank:    bank,
		Answers: answers,
		Deck:    spacedrep.NewDeck(spacedrep.NewMemoryRepo(), spacedrep.NewFSRS(), nil),
		Clock:   func() time.Time { return now },
	}
}

func TestProgressScreen_Loading(t *testing.T) {
	p := New(testDeps(t))
	if !strings.Contains(p.View(100, 40), "Loading") {
		t.Error("expected loading view before stats arrive")
	}
}

func TestProgressScreen_ShowsReport(t *testing.T) {
	p := New(testDeps(t))
	msg, ok := p.Init()().(screen.StatsLoadedMsg)
	if !ok {
		t.Fatal("expected StatsLoadedMsg from Init")
	}
	if msg.Err != nil {
		t.Fatalf("stats: %v", msg.Err)
	}
	p.Update(msg)

	view := p.View(120, 50)
	for _, want := range []string{"Readiness", "1 of 2 questions attempted"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
