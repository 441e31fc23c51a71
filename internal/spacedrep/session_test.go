package spacedrep

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newReviewFixture(t *testing.T, ids ...string) (*Session, *Deck, *fakeClock) {
	t.Helper()
	ctx := context.Background()
	deck := NewDeck(NewMemoryRepo(), nil, nil)
	for i, id := range ids {
		if _, err := deck.Add(ctx, id, testNow.Add(-time.Duration(len(ids)-i)*time.Hour)); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	clock := &fakeClock{now: testNow}
	return NewSession(deck, clock.Now), deck, clock
}

func TestSession_NoDueCardsStaysInSetup(t *testing.T) {
	s, _, _ := newReviewFixture(t)
	err := s.Start(context.Background(), 10, false)
	if !errors.Is(err, ErrNoDueCards) {
		t.Fatalf("err = %v, want ErrNoDueCards", err)
	}
	if s.Phase() != PhaseSetup {
		t.Errorf("phase = %s, want setup", s.Phase())
	}
}

func TestSession_RateOutsideReviewing(t *testing.T) {
	s, _, _ := newReviewFixture(t, "a")
	if _, err := s.Rate(context.Background(), true); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("err = %v, want ErrNotReviewing", err)
	}
}

func TestSession_FullRun(t *testing.T) {
	ctx := context.Background()
	s, deck, clock := newReviewFixture(t, "a", "b", "c")

	if err := s.Start(ctx, 2, true); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Phase() != PhaseReviewing {
		t.Fatalf("phase = %s, want reviewing", s.Phase())
	}

	cur, ok := s.Current()
	if !ok || cur.QuestionID != "a" {
		t.Fatalf("first card = %q, want a (most overdue)", cur.QuestionID)
	}

	clock.now = testNow.Add(30 * time.Second)
	if _, err := s.Rate(ctx, true); err != nil {
		t.Fatalf("rate a: %v", err)
	}
	clock.now = testNow.Add(90 * time.Second)
	r, err := s.Rate(ctx, false)
	if err != nil {
		t.Fatalf("rate b: %v", err)
	}
	if r.QuestionID != "b" || r.Grade != GradeHard {
		t.Errorf("rated = %+v", r)
	}

	if s.Phase() != PhaseSummary {
		t.Fatalf("phase = %s, want summary", s.Phase())
	}
	sum := s.Summary()
	if sum.Reviewed != 2 || sum.Easy != 1 || sum.Hard != 1 || sum.Skipped != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Elapsed != 90*time.Second {
		t.Errorf("elapsed = %v, want 90s", sum.Elapsed)
	}

	// c was never part of the session and is still due.
	if !deck.Has(ctx, "c") || deck.DueCount(ctx, clock.now) < 1 {
		t.Error("c should remain due")
	}

	s.Reset()
	if s.Phase() != PhaseSetup {
		t.Errorf("phase after reset = %s, want setup", s.Phase())
	}
}

func TestSession_ExitKeepsUngradedDue(t *testing.T) {
	ctx := context.Background()
	s, deck, _ := newReviewFixture(t, "a", "b", "c", "d", "e")

	before := make(map[string]time.Time)
	for _, c := range deck.All(ctx) {
		before[c.QuestionID] = c.Due
	}
	if len(before) != 5 {
		t.Fatalf("deck has %d cards, want 5", len(before))
	}

	if err := s.Start(ctx, 0, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	graded := make(map[string]bool)
	for range 2 {
		r, err := s.Rate(ctx, true)
		if err != nil {
			t.Fatalf("rate: %v", err)
		}
		graded[r.QuestionID] = true
	}
	s.Exit()

	if s.Phase() != PhaseSummary {
		t.Fatalf("phase = %s, want summary", s.Phase())
	}
	sum := s.Summary()
	if sum.Reviewed != 2 || sum.Skipped != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Elapsed != 0 {
		t.Errorf("elapsed = %v, want 0 with timer off", sum.Elapsed)
	}

	for _, c := range deck.All(ctx) {
		if graded[c.QuestionID] {
			if !c.Due.After(testNow) {
				t.Errorf("%s due = %v, want after %v", c.QuestionID, c.Due, testNow)
			}
			continue
		}
		if !c.Due.Equal(before[c.QuestionID]) {
			t.Errorf("%s due = %v, want unchanged %v", c.QuestionID, c.Due, before[c.QuestionID])
		}
	}
	if due := deck.Due(ctx, testNow); len(due) != 3 {
		t.Errorf("due after exit = %d cards, want 3", len(due))
	}
}
