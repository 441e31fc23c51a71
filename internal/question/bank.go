package question

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed questions.json
var bundled []byte

// Bank is an immutable, indexed set of questions.
type Bank struct {
	questions []Question
	byID      map[string]*Question
}

// Load returns the bundled question bank.
func Load() (*Bank, error) {
	return Parse(bundled)
}

// LoadFile reads a question bank from a JSON file on disk.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON question bank.
func Parse(data []byte) (*Bank, error) {
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return New(qs)
}

// New builds a bank from questions after validating them.
func New(qs []Question) (*Bank, error) {
	if err := validate(qs); err != nil {
		return nil, err
	}
	b := &Bank{
		questions: qs,
		byID:      make(map[string]*Question, len(qs)),
	}
	for i := range b.questions {
		b.byID[b.questions[i].ID] = &b.questions[i]
	}
	return b, nil
}

// MustLoad returns the bundled bank and panics if it is invalid.
func MustLoad() *Bank {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// All returns a copy of every question in bank order.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Get looks up a question by ID.
func (b *Bank) Get(id string) (Question, bool) {
	q, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return *q, true
}

// InCategories returns the questions belonging to any of the given sub-categories.
func (b *Bank) InCategories(cats []Category) []Question {
	want := make(map[Category]bool, len(cats))
	for _, c := range cats {
		want[c] = true
	}
	var out []Question
	for _, q := range b.questions {
		if want[q.Category] {
			out = append(out, q)
		}
	}
	return out
}

// CategoryQuestionIDs maps every sub-category to its question IDs.
func (b *Bank) CategoryQuestionIDs() map[string][]string {
	out := make(map[string][]string, len(subCategoryNames))
	for _, c := range AllCategories() {
		out[string(c)] = nil
	}
	for _, q := range b.questions {
		out[string(q.Category)] = append(out[string(q.Category)], q.ID)
	}
	return out
}

// MainCategoryQuestionIDs maps every main category to its question IDs.
func (b *Bank) MainCategoryQuestionIDs() map[string][]string {
	out := make(map[string][]string, len(USCISCategories))
	for _, def := range USCISCategories {
		out[string(def.ID)] = nil
	}
	for _, q := range b.questions {
		m := string(MainCategoryOf(q.Category))
		out[m] = append(out[m], q.ID)
	}
	return out
}

func validate(qs []Question) error {
	var errs []string
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if q.ID == "" {
			errs = append(errs, fmt.Sprintf("question %q has empty ID", q.QuestionEN))
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		seen[q.ID] = true
		if !q.Category.Valid() {
			errs = append(errs, fmt.Sprintf("question %q has unknown category %q", q.ID, q.Category))
		}
		correct := 0
		for _, a := range q.Answers {
			if a.Correct {
				correct++
			}
		}
		if correct != 1 {
			errs = append(errs, fmt.Sprintf("question %q has %d correct answers, want 1", q.ID, correct))
		}
	}
	if len(errs) > 0 {
		return errors.New("invalid question bank:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
