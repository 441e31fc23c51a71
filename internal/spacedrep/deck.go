package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/civicprep/civicprep/internal/i18n"
)

// ErrCardNotFound is returned when grading or removing a question that is
// not in the deck.
var ErrCardNotFound = errors.New("card not found")

// CardRepo persists cards. Get returns ErrCardNotFound for a missing card.
type CardRepo interface {
	GetCard(ctx context.Context, questionID string) (Card, error)
	PutCard(ctx context.Context, card Card) error
	DeleteCard(ctx context.Context, questionID string) error
	ListCards(ctx context.Context) ([]Card, error)
}

// GradeResult is the outcome of grading one card.
type GradeResult struct {
	Card         Card
	IntervalText i18n.Bilingual
}

// Deck is the learner's set of review cards.
type Deck struct {
	repo   CardRepo
	algo   Algorithm
	logger *slog.Logger
}

// NewDeck creates a deck over repo. A nil algo uses FSRS and a nil logger
// uses slog.Default().
func NewDeck(repo CardRepo, algo Algorithm, logger *slog.Logger) *Deck {
	if algo == nil {
		algo = NewFSRS()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deck{repo: repo, algo: algo, logger: logger}
}

// Add puts a new card for questionID in the deck. Adding a question that is
// already present leaves its schedule untouched and reports false.
func (d *Deck) Add(ctx context.Context, questionID string, now time.Time) (bool, error) {
	_, err := d.repo.GetCard(ctx, questionID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrCardNotFound) {
		return false, fmt.Errorf("look up card %s: %w", questionID, err)
	}
	if err := d.repo.PutCard(ctx, NewCard(questionID, now)); err != nil {
		return false, fmt.Errorf("add card %s: %w", questionID, err)
	}
	return true, nil
}

// Has reports whether questionID is in the deck.
func (d *Deck) Has(ctx context.Context, questionID string) bool {
	_, err := d.repo.GetCard(ctx, questionID)
	return err == nil
}

// Remove deletes the card for questionID.
func (d *Deck) Remove(ctx context.Context, questionID string) error {
	if err := d.repo.DeleteCard(ctx, questionID); err != nil {
		return fmt.Errorf("remove card %s: %w", questionID, err)
	}
	return nil
}

// Import writes cards as given, replacing any stored card with the same ID.
func (d *Deck) Import(ctx context.Context, cards []Card) error {
	for _, c := range cards {
		if err := d.repo.PutCard(ctx, c); err != nil {
			return fmt.Errorf("import card %s: %w", c.QuestionID, err)
		}
	}
	return nil
}

// All returns every card. Storage failures are logged and yield an empty deck.
func (d *Deck) All(ctx context.Context) []Card {
	cards, err := d.repo.ListCards(ctx)
	if err != nil {
		d.logger.Warn("list cards failed", "error", err)
		return []Card{}
	}
	return cards
}

// Due returns the cards due at now, most overdue first.
func (d *Deck) Due(ctx context.Context, now time.Time) []Card {
	var due []Card
	for _, c := range d.All(ctx) {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Due.Before(due[j].Due)
	})
	return due
}

// DueCount returns how many cards are due at now.
func (d *Deck) DueCount(ctx context.Context, now time.Time) int {
	return len(d.Due(ctx, now))
}

// Grade schedules the card for questionID and persists it.
func (d *Deck) Grade(ctx context.Context, questionID string, isEasy bool, now time.Time) (GradeResult, error) {
	card, err := d.repo.GetCard(ctx, questionID)
	if err != nil {
		return GradeResult{}, fmt.Errorf("grade card %s: %w", questionID, err)
	}

	next := d.algo.Schedule(card, GradeFromEasy(isEasy), now)
	if err := d.repo.PutCard(ctx, next); err != nil {
		return GradeResult{}, fmt.Errorf("save graded card %s: %w", questionID, err)
	}

	return GradeResult{
		Card:         next,
		IntervalText: NextReviewText(next, now),
	}, nil
}
