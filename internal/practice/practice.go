// Package practice picks practice questions, weighted toward the learner's
// weakest questions.
package practice

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/civicprep/civicprep/internal/mastery"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/shuffle"
	"github.com/civicprep/civicprep/internal/store"
)

// DefaultWeakRatio is the share of a practice set drawn from the weakest
// questions.
const DefaultWeakRatio = 0.7

// DefaultWeakThreshold is the accuracy below which a question is weak.
const DefaultWeakThreshold = 60.0

type scored struct {
	q        question.Question
	accuracy float64
}

// rank orders questions by accuracy, weakest first. Unattempted questions
// score 0. Ties keep their input order.
func rank(questions []question.Question, history []store.StoredAnswer) []scored {
	idx := mastery.AccuracyIndex(history)
	out := make([]scored, len(questions))
	for i, q := range questions {
		out[i] = scored{q: q, accuracy: idx[q.ID].Accuracy}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].accuracy < out[j].accuracy })
	return out
}

// SelectPracticeQuestions returns min(count, len(questions)) questions. The
// weakest ceil(n*weakRatio) are always included; the rest are sampled
// uniformly from the remaining pool. The combined set is shuffled. A
// weakRatio of zero or less uses DefaultWeakRatio.
func SelectPracticeQuestions(questions []question.Question, history []store.StoredAnswer, count int, weakRatio float64, rng *rand.Rand) []question.Question {
	if len(questions) == 0 || count <= 0 {
		return []question.Question{}
	}
	if weakRatio <= 0 {
		weakRatio = DefaultWeakRatio
	}
	weakRatio = min(weakRatio, 1)

	actual := min(count, len(questions))
	weakCount := int(math.Ceil(float64(actual) * weakRatio))
	strongCount := actual - weakCount

	ranked := rank(questions, history)
	selected := make([]question.Question, 0, actual)
	for _, s := range ranked[:weakCount] {
		selected = append(selected, s.q)
	}
	for _, s := range shuffle.Take(ranked[weakCount:], strongCount, rng) {
		selected = append(selected, s.q)
	}
	return shuffle.Shuffle(selected, rng)
}

// GetWeakQuestions returns every question with accuracy strictly below
// threshold, shuffled.
func GetWeakQuestions(questions []question.Question, history []store.StoredAnswer, threshold float64, rng *rand.Rand) []question.Question {
	idx := mastery.AccuracyIndex(history)
	weak := []question.Question{}
	for _, q := range questions {
		if idx[q.ID].Accuracy < threshold {
			weak = append(weak, q)
		}
	}
	return shuffle.Shuffle(weak, rng)
}

// SelectDrillQuestions returns the count weakest questions in the pool,
// shuffled.
func SelectDrillQuestions(pool []question.Question, history []store.StoredAnswer, count int, rng *rand.Rand) []question.Question {
	if len(pool) == 0 || count <= 0 {
		return []question.Question{}
	}
	ranked := rank(pool, history)
	n := min(count, len(ranked))
	selected := make([]question.Question, n)
	for i := range selected {
		selected[i] = ranked[i].q
	}
	return shuffle.Shuffle(selected, rng)
}

// Focus selects how a practice set is drawn.
type Focus string

const (
	// FocusMixed is the weak-heavy mix of SelectPracticeQuestions.
	FocusMixed Focus = "mixed"
	// FocusWeak practices every weak question, up to the count.
	FocusWeak Focus = "weak"
	// FocusDrill practices only the weakest questions.
	FocusDrill Focus = "drill"
)

// ParseFocus maps a name to a Focus. Empty is FocusMixed.
func ParseFocus(name string) (Focus, bool) {
	switch f := Focus(name); f {
	case "":
		return FocusMixed, true
	case FocusMixed, FocusWeak, FocusDrill:
		return f, true
	}
	return "", false
}

// Options configures Select.
type Options struct {
	Focus     Focus
	Count     int
	WeakRatio float64
	// WeakThreshold applies to FocusWeak. Zero uses DefaultWeakThreshold.
	WeakThreshold float64
}

// Select draws a practice set from pool according to opts.Focus.
func Select(pool []question.Question, history []store.StoredAnswer, opts Options, rng *rand.Rand) []question.Question {
	switch opts.Focus {
	case FocusWeak:
		threshold := opts.WeakThreshold
		if threshold <= 0 {
			threshold = DefaultWeakThreshold
		}
		weak := GetWeakQuestions(pool, history, threshold, rng)
		if opts.Count > 0 && len(weak) > opts.Count {
			weak = weak[:opts.Count]
		}
		return weak
	case FocusDrill:
		return SelectDrillQuestions(pool, history, opts.Count, rng)
	default:
		return SelectPracticeQuestions(pool, history, opts.Count, opts.WeakRatio, rng)
	}
}

// Accuracies returns the accuracy of each question, keyed by ID.
func Accuracies(questions []question.Question, history []store.StoredAnswer) map[string]float64 {
	idx := mastery.AccuracyIndex(history)
	out := make(map[string]float64, len(questions))
	for _, q := range questions {
		out[q.ID] = idx[q.ID].Accuracy
	}
	return out
}
