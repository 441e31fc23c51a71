// Package mastery turns answer history into time-decayed per-category
// mastery percentages and per-question accuracy.
package mastery

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/civicprep/civicprep/internal/store"
)

// DecayHalfLifeDays is the age at which an answer counts half as much.
const DecayHalfLifeDays = 14

// Session multipliers applied on top of the decay weight.
const (
	TestWeight     = 1.0
	PracticeWeight = 0.7
)

// InputError reports malformed input to a calculator. It indicates a bug in
// the caller, not a runtime condition.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CategoryEntry is the mastery of one category.
type CategoryEntry struct {
	CategoryID    string `json:"categoryId"`
	Mastery       int    `json:"mastery"`
	QuestionCount int    `json:"questionCount"`
}

func sessionMultiplier(t store.SessionType) float64 {
	if t == store.SessionPractice {
		return PracticeWeight
	}
	return TestWeight
}

func answerWeight(a store.StoredAnswer, now time.Time) float64 {
	ageDays := max(now.Sub(a.Timestamp).Hours()/24, 0)
	return math.Pow(0.5, ageDays/DecayHalfLifeDays) * sessionMultiplier(a.SessionType)
}

// CategoryMastery returns the decay-weighted share of correct answers among
// the answers to questionIDs, as a rounded percentage. Questions that were
// never answered carry no weight. No matching history yields 0.
func CategoryMastery(history []store.StoredAnswer, questionIDs []string, now time.Time) (int, error) {
	ids := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		ids[id] = true
	}

	var total, correct float64
	for i, a := range history {
		if !ids[a.QuestionID] {
			continue
		}
		if a.Timestamp.IsZero() {
			return 0, &InputError{Field: fmt.Sprintf("history[%d].timestamp", i), Reason: "missing"}
		}
		w := answerWeight(a, now)
		total += w
		if a.IsCorrect {
			correct += w
		}
	}
	if total == 0 {
		return 0, nil
	}
	return int(math.Round(correct / total * 100)), nil
}

// Compute returns the mastery of every category in categoryMap, ordered by
// category ID.
func Compute(history []store.StoredAnswer, categoryMap map[string][]string, now time.Time) ([]CategoryEntry, error) {
	ids := make([]string, 0, len(categoryMap))
	for id := range categoryMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]CategoryEntry, 0, len(ids))
	for _, id := range ids {
		m, err := CategoryMastery(history, categoryMap[id], now)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", id, err)
		}
		out = append(out, CategoryEntry{
			CategoryID:    id,
			Mastery:       m,
			QuestionCount: len(categoryMap[id]),
		})
	}
	return out, nil
}

// OverallMastery is the question-count-weighted mean of the entries, so
// larger categories pull the result harder.
func OverallMastery(entries []CategoryEntry) (int, error) {
	var totalQuestions, weighted int
	for _, e := range entries {
		if e.QuestionCount < 0 {
			return 0, &InputError{Field: e.CategoryID + ".questionCount", Reason: "negative"}
		}
		if e.Mastery < 0 || e.Mastery > 100 {
			return 0, &InputError{Field: e.CategoryID + ".mastery", Reason: fmt.Sprintf("%d outside 0-100", e.Mastery)}
		}
		totalQuestions += e.QuestionCount
		weighted += e.Mastery * e.QuestionCount
	}
	if totalQuestions == 0 {
		return 0, nil
	}
	return int(math.Round(float64(weighted) / float64(totalQuestions))), nil
}

// Accuracy is the plain, unweighted success rate on one question.
type Accuracy struct {
	Correct  int     `json:"correct"`
	Attempts int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// QuestionAccuracy returns the unweighted accuracy for questionID, rounded to
// two decimals. An unattempted question has accuracy 0, which ranks it as
// the weakest during practice selection.
func QuestionAccuracy(history []store.StoredAnswer, questionID string) Accuracy {
	var acc Accuracy
	for _, a := range history {
		if a.QuestionID != questionID {
			continue
		}
		acc.Attempts++
		if a.IsCorrect {
			acc.Correct++
		}
	}
	if acc.Attempts == 0 {
		return acc
	}
	acc.Accuracy = math.Round(float64(acc.Correct)/float64(acc.Attempts)*10000) / 100
	return acc
}

// AccuracyIndex computes QuestionAccuracy for every question in one pass.
func AccuracyIndex(history []store.StoredAnswer) map[string]Accuracy {
	idx := make(map[string]Accuracy)
	for _, a := range history {
		acc := idx[a.QuestionID]
		acc.Attempts++
		if a.IsCorrect {
			acc.Correct++
		}
		idx[a.QuestionID] = acc
	}
	for id, acc := range idx {
		acc.Accuracy = math.Round(float64(acc.Correct)/float64(acc.Attempts)*10000) / 100
		idx[id] = acc
	}
	return idx
}
