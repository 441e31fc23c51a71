package review

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/spacedrep"
)

var testNow = time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testDeps(t *testing.T, dueIDs ...string) screen.Deps {
	t.Helper()
	bank, err := question.New([]question.Question{
		{
			ID: "HIS-01", QuestionEN: "Who was the first President?", QuestionMY: "ပထမဆုံးသမ္မတ",
			Category:     question.CategoryColonial,
			StudyAnswers: []question.StudyAnswer{{TextEN: "George Washington"}},
			Answers:      []question.Answer{{TextEN: "George Washington", Correct: true}, {TextEN: "Abraham Lincoln"}},
		},
		{
			ID: "GOV-01", QuestionEN: "What is the supreme law of the land?",
			Category: question.CategoryPrinciples,
			Answers:  []question.Answer{{TextEN: "the Constitution", Correct: true}, {TextEN: "the Bill of Rights"}},
		},
	})
	if err != nil {
		t.Fatalf("question.New: %v", err)
	}
	deck := spacedrep.NewDeck(spacedrep.NewMemoryRepo(), spacedrep.NewFSRS(), nil)
	for _, id := range dueIDs {
		if _, err := deck.Add(context.Background(), id, testNow.Add(-time.Hour)); err != nil {
			t.Fatalf("deck.Add: %v", err)
		}
	}
	return screen.Deps{Bank: bank, Deck: deck, Clock: func() time.Time { return testNow }}
}

func TestReviewScreen_NoDueCards(t *testing.T) {
	s := New(testDeps(t))
	s.Update(specialKey(tea.KeyEnter))

	if s.sess.Phase() != spacedrep.PhaseSetup {
		t.Fatalf("phase = %v, want setup", s.sess.Phase())
	}
	if !strings.Contains(s.View(80, 24), "No cards are due") {
		t.Error("expected no-due notice in view")
	}
	if s.HandlesBack() {
		t.Error("setup should let Esc pop the screen")
	}
}

func TestReviewScreen_FullReview(t *testing.T) {
	deps := testDeps(t, "HIS-01", "GOV-01")
	s := New(deps)

	s.Update(specialKey(tea.KeyEnter))
	if s.sess.Phase() != spacedrep.PhaseReviewing {
		t.Fatalf("phase = %v, want reviewing", s.sess.Phase())
	}
	if !s.HandlesBack() {
		t.Error("reviewing should keep Esc")
	}

	// Grading before the answer is shown does nothing.
	s.Update(keyPress('e'))
	if got := len(s.sess.Summary().Results); got != 0 {
		t.Fatalf("graded %d cards before flip", got)
	}

	s.Update(specialKey(' '))
	if !s.flipped {
		t.Fatal("expected card flipped")
	}
	s.Update(keyPress('e'))
	if s.last == nil {
		t.Fatal("expected last rating recorded")
	}

	s.Update(specialKey(' '))
	s.Update(keyPress('h'))

	if s.sess.Phase() != spacedrep.PhaseSummary {
		t.Fatalf("phase = %v, want summary", s.sess.Phase())
	}
	sum := s.sess.Summary()
	if sum.Easy != 1 || sum.Hard != 1 {
		t.Errorf("easy/hard = %d/%d, want 1/1", sum.Easy, sum.Hard)
	}
	if !strings.Contains(s.View(80, 24), "Review complete") {
		t.Error("expected summary view")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestReviewScreen_ExitEarly(t *testing.T) {
	s := New(testDeps(t, "HIS-01", "GOV-01"))
	s.Update(specialKey(tea.KeyEnter))
	s.Update(specialKey(tea.KeyEscape))

	if s.sess.Phase() != spacedrep.PhaseSummary {
		t.Fatalf("phase = %v, want summary", s.sess.Phase())
	}
	if got := s.sess.Summary().Skipped; got != 2 {
		t.Errorf("skipped = %d, want 2", got)
	}

	s.Update(keyPress('r'))
	if s.sess.Phase() != spacedrep.PhaseSetup {
		t.Errorf("phase after reset = %v, want setup", s.sess.Phase())
	}
}

func TestReviewScreen_SizeSelection(t *testing.T) {
	s := New(testDeps(t))
	if sizes[s.sizeSel] != 10 {
		t.Fatalf("default size = %d, want 10", sizes[s.sizeSel])
	}
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyRight))
	if sizes[s.sizeSel] != 0 {
		t.Errorf("size = %d, want all (0)", sizes[s.sizeSel])
	}
	s.Update(keyPress('t'))
	if !s.timer {
		t.Error("expected timer toggled on")
	}
}
