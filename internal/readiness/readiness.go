// Package readiness combines mastery, breadth and review health into a single
// 0-100 test readiness score.
package readiness

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/civicprep/civicprep/internal/i18n"
	"github.com/civicprep/civicprep/internal/mastery"
	"github.com/civicprep/civicprep/internal/spacedrep"
)

// Dimension weights.
const (
	MasteryWeight = 0.4
	BreadthWeight = 0.3
	SRSWeight     = 0.3
)

// MaxCategoryShare caps any single category's share of the mastery term.
const MaxCategoryShare = 0.6

// ZeroCoverageCap is the highest score allowed while a main category has
// no attempted questions.
const ZeroCoverageCap = 60

// Input bundles everything the score is computed from.
type Input struct {
	// CategoryMastery is the 0-100 mastery per sub-category.
	CategoryMastery map[string]int
	// TotalQuestions is the size of the question bank.
	TotalQuestions int
	// Attempted is the set of question IDs answered at least once.
	Attempted map[string]bool
	// Cards is the learner's SRS deck.
	Cards []spacedrep.Card
	// CategoryQuestions maps each sub-category to its questions and sets the
	// mastery weighting.
	CategoryQuestions map[string][]string
	// MainCategoryQuestions maps each main category to its questions. A main
	// category with no attempts caps the score.
	MainCategoryQuestions map[string][]string
}

// Dimension is one component of the score.
type Dimension struct {
	Raw    float64 `json:"raw"`
	Value  int     `json:"value"`
	Weight float64 `json:"weight"`
}

// Dimensions holds the three score components.
type Dimensions struct {
	Mastery Dimension `json:"mastery"`
	Breadth Dimension `json:"breadth"`
	SRS     Dimension `json:"srs"`
}

// Result is a readiness score with its explanation.
type Result struct {
	Score            int            `json:"score"`
	Uncapped         int            `json:"uncapped"`
	IsCapped         bool           `json:"isCapped"`
	CappedCategories []string       `json:"cappedCategories"`
	Dimensions       Dimensions     `json:"dimensions"`
	Tier             i18n.Bilingual `json:"tier"`
}

// Calculate computes the readiness score at now. It is deterministic and
// performs no I/O.
func Calculate(in Input, now time.Time) (*Result, error) {
	if in.TotalQuestions < 0 {
		return nil, &mastery.InputError{Field: "totalQuestions", Reason: "negative"}
	}
	for cat, m := range in.CategoryMastery {
		if m < 0 || m > 100 {
			return nil, &mastery.InputError{Field: "categoryMastery." + cat, Reason: fmt.Sprintf("%d outside 0-100", m)}
		}
	}

	m := MasteryTerm(in.CategoryMastery, in.CategoryQuestions)
	b := BreadthTerm(len(in.Attempted), in.TotalQuestions)
	s := SRSTerm(in.Cards, now)

	uncapped := int(math.Round(m*MasteryWeight + b*BreadthWeight + s*SRSWeight))

	capped := ZeroCoverageCategories(in.Attempted, in.MainCategoryQuestions)
	score := uncapped
	if len(capped) > 0 {
		score = min(uncapped, ZeroCoverageCap)
	}

	return &Result{
		Score:            score,
		Uncapped:         uncapped,
		IsCapped:         len(capped) > 0,
		CappedCategories: capped,
		Dimensions: Dimensions{
			Mastery: Dimension{Raw: m, Value: int(math.Round(m)), Weight: MasteryWeight},
			Breadth: Dimension{Raw: b, Value: int(math.Round(b)), Weight: BreadthWeight},
			SRS:     Dimension{Raw: s, Value: int(math.Round(s)), Weight: SRSWeight},
		},
		Tier: TierLabel(score),
	}, nil
}

// MasteryTerm is the question-weighted mastery across categories, where no
// category's weight may exceed MaxCategoryShare of the total. The divisor
// stays the uncapped total, so a single category can contribute at most 60
// points.
func MasteryTerm(categoryMastery map[string]int, categoryQuestions map[string][]string) float64 {
	cats := make([]string, 0, len(categoryQuestions))
	var total float64
	for cat, qs := range categoryQuestions {
		cats = append(cats, cat)
		total += float64(len(qs))
	}
	if total == 0 {
		return 0
	}
	// Summed in key order so the result does not depend on map iteration.
	sort.Strings(cats)

	limit := MaxCategoryShare * total
	var sum float64
	for _, cat := range cats {
		w := min(float64(len(categoryQuestions[cat])), limit)
		sum += float64(categoryMastery[cat]) * w
	}
	return sum / total
}

// BreadthTerm is the percentage of the bank attempted at least once.
func BreadthTerm(attempted, total int) float64 {
	if total == 0 {
		return 0
	}
	return min(float64(attempted)/float64(total)*100, 100)
}

// SRSTerm is the percentage of cards that are not overdue. An empty deck
// scores 0.
func SRSTerm(cards []spacedrep.Card, now time.Time) float64 {
	if len(cards) == 0 {
		return 0
	}
	var ok int
	for _, c := range cards {
		if c.Due.After(now) {
			ok++
		}
	}
	return float64(ok) / float64(len(cards)) * 100
}

// ZeroCoverageCategories returns, sorted, the main categories with no
// attempted question.
func ZeroCoverageCategories(attempted map[string]bool, mainCategories map[string][]string) []string {
	out := []string{}
	for cat, qs := range mainCategories {
		hit := false
		for _, id := range qs {
			if attempted[id] {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}

// TierLabel names the readiness band a score falls in.
func TierLabel(score int) i18n.Bilingual {
	switch {
	case score <= 25:
		return i18n.Bilingual{EN: "Getting Started", MY: "စတင်နေပါသည်"}
	case score <= 50:
		return i18n.Bilingual{EN: "Building Up", MY: "တည်ဆောက်နေပါသည်"}
	case score <= 75:
		return i18n.Bilingual{EN: "Almost Ready", MY: "အဆင်သင့်နီးပါပြီ"}
	default:
		return i18n.Bilingual{EN: "Test Ready", MY: "စာမေးပွဲ အဆင်သင့်!"}
	}
}
