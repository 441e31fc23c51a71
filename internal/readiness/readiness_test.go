package readiness

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicprep/civicprep/internal/mastery"
	"github.com/civicprep/civicprep/internal/spacedrep"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i+1)
	}
	return out
}

func attemptedSet(lists ...[]string) map[string]bool {
	set := map[string]bool{}
	for _, l := range lists {
		for _, id := range l {
			set[id] = true
		}
	}
	return set
}

func TestMasteryTerm_CategoryCap(t *testing.T) {
	// One category holds 35 of 47 questions and is fully mastered.
	cats := map[string][]string{
		"big":   ids("B", 35),
		"small": ids("S", 12),
	}
	got := MasteryTerm(map[string]int{"big": 100, "small": 0}, cats)
	assert.InDelta(t, 60.0, got, 1e-9)
	assert.LessOrEqual(t, got, 60.0)
}

func TestMasteryTerm_UncappedCategories(t *testing.T) {
	cats := map[string][]string{
		"a": ids("A", 10),
		"b": ids("B", 10),
	}
	assert.InDelta(t, 50.0, MasteryTerm(map[string]int{"a": 100, "b": 0}, cats), 1e-9)
	assert.InDelta(t, 100.0, MasteryTerm(map[string]int{"a": 100, "b": 100}, cats), 1e-9)
	assert.Zero(t, MasteryTerm(nil, nil))
}

func TestMasteryTerm_IndependentOfMapOrder(t *testing.T) {
	cats := map[string][]string{
		"a": ids("A", 71),
		"b": ids("B", 7),
		"c": ids("C", 3),
		"d": ids("D", 11),
		"e": ids("E", 5),
		"f": ids("F", 2),
	}
	scores := map[string]int{"a": 97, "b": 33, "c": 67, "d": 13, "e": 89, "f": 41}

	const total = 99.0
	limit := MaxCategoryShare * total
	var want float64
	for _, cat := range []string{"a", "b", "c", "d", "e", "f"} {
		want += float64(scores[cat]) * min(float64(len(cats[cat])), limit)
	}
	want /= total

	for range 50 {
		assert.Equal(t, want, MasteryTerm(scores, cats))
	}
}

func TestBreadthTerm(t *testing.T) {
	assert.Zero(t, BreadthTerm(5, 0))
	assert.InDelta(t, 25.0, BreadthTerm(30, 120), 1e-9)
	assert.InDelta(t, 100.0, BreadthTerm(200, 120), 1e-9)
}

func TestSRSTerm(t *testing.T) {
	assert.Zero(t, SRSTerm(nil, now))

	cards := []spacedrep.Card{
		{QuestionID: "a", Due: now.Add(-time.Hour)},
		{QuestionID: "b", Due: now},
		{QuestionID: "c", Due: now.Add(time.Hour)},
		{QuestionID: "d", Due: now.Add(72 * time.Hour)},
	}
	assert.InDelta(t, 50.0, SRSTerm(cards, now), 1e-9)
}

func TestCalculate_FullCoverage(t *testing.T) {
	gov, hist, civ := ids("G", 20), ids("H", 20), ids("C", 10)
	in := Input{
		CategoryMastery:       map[string]int{"gov": 80, "hist": 60, "civ": 100},
		TotalQuestions:        50,
		Attempted:             attemptedSet(gov[:10], hist[:10], civ[:5]),
		Cards:                 []spacedrep.Card{{Due: now.Add(time.Hour)}, {Due: now.Add(-time.Hour)}},
		CategoryQuestions:     map[string][]string{"gov": gov, "hist": hist, "civ": civ},
		MainCategoryQuestions: map[string][]string{"Government": gov, "History": hist, "Civics": civ},
	}

	res, err := Calculate(in, now)
	require.NoError(t, err)

	// mastery = (80*20 + 60*20 + 100*10)/50 = 76, breadth = 50, srs = 50
	assert.InDelta(t, 76.0, res.Dimensions.Mastery.Raw, 1e-9)
	assert.Equal(t, 50, res.Dimensions.Breadth.Value)
	assert.Equal(t, 50, res.Dimensions.SRS.Value)
	assert.Equal(t, 60, res.Score) // round(30.4 + 15 + 15)
	assert.False(t, res.IsCapped)
	assert.Empty(t, res.CappedCategories)
	assert.Equal(t, "Almost Ready", res.Tier.EN)
}

func TestCalculate_ZeroCoverageCap(t *testing.T) {
	gov, hist, civ := ids("G", 10), ids("H", 10), ids("C", 10)
	cards := make([]spacedrep.Card, 10)
	for i := range cards {
		cards[i] = spacedrep.Card{Due: now.Add(24 * time.Hour)}
	}
	in := Input{
		CategoryMastery:       map[string]int{"gov": 100, "hist": 100, "civ": 0},
		TotalQuestions:        30,
		Attempted:             attemptedSet(gov, hist),
		Cards:                 cards,
		CategoryQuestions:     map[string][]string{"gov": gov, "hist": hist, "civ": civ},
		MainCategoryQuestions: map[string][]string{"Government": gov, "History": hist, "Civics": civ},
	}

	res, err := Calculate(in, now)
	require.NoError(t, err)

	// uncapped = round(0.4*66.67 + 0.3*66.67 + 0.3*100) = 77
	assert.Equal(t, 77, res.Uncapped)
	assert.Equal(t, ZeroCoverageCap, res.Score)
	assert.True(t, res.IsCapped)
	assert.Equal(t, []string{"Civics"}, res.CappedCategories)
	assert.Equal(t, "Almost Ready", res.Tier.EN)
}

func TestCalculate_EmptyState(t *testing.T) {
	res, err := Calculate(Input{}, now)
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.False(t, res.IsCapped)
	assert.Equal(t, "Getting Started", res.Tier.EN)
}

func TestCalculate_RoundedTermsWithinTolerance(t *testing.T) {
	gov, hist := ids("G", 7), ids("H", 11)
	in := Input{
		CategoryMastery:       map[string]int{"gov": 33, "hist": 67},
		TotalQuestions:        18,
		Attempted:             attemptedSet(gov[:3], hist[:4]),
		Cards:                 []spacedrep.Card{{Due: now.Add(time.Hour)}, {Due: now.Add(time.Hour)}, {Due: now.Add(-time.Hour)}},
		CategoryQuestions:     map[string][]string{"gov": gov, "hist": hist},
		MainCategoryQuestions: map[string][]string{"Government": gov, "History": hist},
	}
	res, err := Calculate(in, now)
	require.NoError(t, err)

	d := res.Dimensions
	fromRounded := math.Round(float64(d.Mastery.Value)*d.Mastery.Weight +
		float64(d.Breadth.Value)*d.Breadth.Weight +
		float64(d.SRS.Value)*d.SRS.Weight)
	assert.LessOrEqual(t, math.Abs(float64(res.Score)-fromRounded), 1.0)
}

func TestCalculate_Deterministic(t *testing.T) {
	gov := ids("G", 5)
	in := Input{
		CategoryMastery:       map[string]int{"gov": 42},
		TotalQuestions:        5,
		Attempted:             attemptedSet(gov[:2]),
		CategoryQuestions:     map[string][]string{"gov": gov},
		MainCategoryQuestions: map[string][]string{"Government": gov, "History": ids("H", 3)},
	}
	a, err := Calculate(in, now)
	require.NoError(t, err)
	b, err := Calculate(in, now)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCalculate_RejectsMalformed(t *testing.T) {
	var inputErr *mastery.InputError

	_, err := Calculate(Input{TotalQuestions: -1}, now)
	assert.True(t, errors.As(err, &inputErr))

	_, err = Calculate(Input{CategoryMastery: map[string]int{"gov": 140}}, now)
	assert.True(t, errors.As(err, &inputErr))
}

func TestTierLabel(t *testing.T) {
	tests := []struct {
		score int
		en    string
	}{
		{0, "Getting Started"},
		{25, "Getting Started"},
		{26, "Building Up"},
		{50, "Building Up"},
		{51, "Almost Ready"},
		{75, "Almost Ready"},
		{76, "Test Ready"},
		{100, "Test Ready"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.en, TierLabel(tt.score).EN, "score %d", tt.score)
	}
	assert.Equal(t, "စတင်နေပါသည်", TierLabel(10).MY)
}
