package spacedrep

import (
	"testing"
	"time"
)

func TestFSRS_EasyPushesDueIntoFuture(t *testing.T) {
	algo := NewFSRS()
	card := NewCard("GOV-P01", testNow)

	next := algo.Schedule(card, GradeEasy, testNow)

	if !next.Due.After(testNow) {
		t.Errorf("due %v should be after %v", next.Due, testNow)
	}
	if next.Reps != 1 {
		t.Errorf("reps = %d, want 1", next.Reps)
	}
	if next.State == StateNew {
		t.Error("state should leave new after a review")
	}
	if next.QuestionID != "GOV-P01" {
		t.Errorf("question ID = %q, not preserved", next.QuestionID)
	}
	if !next.AddedAt.Equal(testNow) {
		t.Errorf("added_at = %v, not preserved", next.AddedAt)
	}
	if !next.HasReview() {
		t.Error("last review should be set")
	}
}

func TestFSRS_HardSchedulesShortTerm(t *testing.T) {
	algo := NewFSRS()
	card := NewCard("GOV-P01", testNow)

	hard := algo.Schedule(card, GradeHard, testNow)
	easy := algo.Schedule(card, GradeEasy, testNow)

	if !hard.Due.After(testNow) {
		t.Errorf("hard due %v should be after now", hard.Due)
	}
	if hard.Due.Sub(testNow) > time.Hour {
		t.Errorf("hard due in %v, want within the hour", hard.Due.Sub(testNow))
	}
	if !hard.Due.Before(easy.Due) {
		t.Errorf("hard due %v should precede easy due %v", hard.Due, easy.Due)
	}
}

func TestFSRS_RepeatedEasyGrowsInterval(t *testing.T) {
	algo := NewFSRS()
	card := NewCard("GOV-P01", testNow)
	now := testNow

	var prevInterval time.Duration
	for i := 0; i < 4; i++ {
		card = algo.Schedule(card, GradeEasy, now)
		interval := card.Due.Sub(now)
		if i > 1 && interval < prevInterval {
			t.Errorf("review %d: interval %v shrank from %v", i, interval, prevInterval)
		}
		prevInterval = interval
		now = card.Due
	}
	if card.State != StateReview {
		t.Errorf("state = %s, want review", card.State)
	}
}

func TestFSRS_IntervalCapped(t *testing.T) {
	algo := NewFSRS()
	card := NewCard("GOV-P01", testNow)
	now := testNow
	for i := 0; i < 20; i++ {
		card = algo.Schedule(card, GradeEasy, now)
		now = card.Due
	}
	if card.ScheduledDays > MaxIntervalDays {
		t.Errorf("scheduled days = %d, want <= %d", card.ScheduledDays, MaxIntervalDays)
	}

	card = algo.Schedule(card, GradeEasy, now)
	if card.ScheduledDays != MaxIntervalDays {
		t.Errorf("mature card scheduled %d days, want %d", card.ScheduledDays, MaxIntervalDays)
	}
	if gap := card.Due.Sub(now); gap > MaxIntervalDays*24*time.Hour {
		t.Errorf("due in %v, beyond the %d day cap", gap, MaxIntervalDays)
	}
}

func TestGradeFromEasy(t *testing.T) {
	if GradeFromEasy(true) != GradeEasy || GradeFromEasy(false) != GradeHard {
		t.Error("GradeFromEasy mapping wrong")
	}
}
