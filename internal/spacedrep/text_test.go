package spacedrep

import (
	"testing"
	"time"

	"github.com/civicprep/civicprep/internal/i18n"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNextReviewText(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want i18n.Bilingual
	}{
		{"overdue", testNow.Add(-2 * day), i18n.Bilingual{EN: "Now", MY: "ယခု"}},
		{"exactly now", testNow, i18n.Bilingual{EN: "Now", MY: "ယခု"}},
		{"ten minutes", testNow.Add(10 * time.Minute), i18n.Bilingual{EN: "1 day", MY: "၁ ရက်"}},
		{"one day", testNow.Add(day), i18n.Bilingual{EN: "1 day", MY: "၁ ရက်"}},
		{"three days", testNow.Add(3 * day), i18n.Bilingual{EN: "3 days", MY: "၃ ရက်"}},
		{"six and a half days", testNow.Add(6*day + 12*time.Hour), i18n.Bilingual{EN: "1 week", MY: "၁ ပတ်"}},
		{"ten days", testNow.Add(10 * day), i18n.Bilingual{EN: "1 week", MY: "၁ ပတ်"}},
		{"eleven days", testNow.Add(11 * day), i18n.Bilingual{EN: "2 weeks", MY: "၂ ပတ်"}},
		{"twenty nine days", testNow.Add(29 * day), i18n.Bilingual{EN: "4 weeks", MY: "၄ ပတ်"}},
		{"thirty days", testNow.Add(30 * day), i18n.Bilingual{EN: "1 month", MY: "၁ လ"}},
		{"ninety days", testNow.Add(90 * day), i18n.Bilingual{EN: "3 months", MY: "၃ လ"}},
		{"a year", testNow.Add(365 * day), i18n.Bilingual{EN: "12 months", MY: "၁၂ လ"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextReviewText(Card{Due: tt.due}, testNow)
			if got != tt.want {
				t.Errorf("NextReviewText = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	newCard := NewCard("GOV-P01", testNow)
	if s, label := StatusLabel(newCard, testNow); s != StatusNew || label.MY != "အသစ်" {
		t.Errorf("new card: got %s %+v", s, label)
	}

	due := Card{State: StateReview, Reps: 3, Due: testNow.Add(-time.Hour)}
	if s, label := StatusLabel(due, testNow); s != StatusDue || label.EN != "Due" {
		t.Errorf("due card: got %s %+v", s, label)
	}

	done := Card{State: StateReview, Reps: 3, Due: testNow.Add(48 * time.Hour)}
	if s, label := StatusLabel(done, testNow); s != StatusDone || label.MY != "ပြီးဆုံး" {
		t.Errorf("done card: got %s %+v", s, label)
	}
}

func TestIntervalStrength(t *testing.T) {
	tests := []struct {
		days int64
		want Strength
	}{
		{0, StrengthLearning},
		{1, StrengthLearning},
		{2, StrengthShort},
		{7, StrengthShort},
		{8, StrengthMedium},
		{30, StrengthMedium},
		{31, StrengthStrong},
		{365, StrengthStrong},
	}
	for _, tt := range tests {
		if got := IntervalStrength(Card{ScheduledDays: tt.days}); got != tt.want {
			t.Errorf("IntervalStrength(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}
