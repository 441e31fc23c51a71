package spacedrep

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-process CardRepo.
type MemoryRepo struct {
	mu    sync.Mutex
	cards map[string]Card
}

// NewMemoryRepo returns an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{cards: make(map[string]Card)}
}

func (r *MemoryRepo) GetCard(_ context.Context, questionID string) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[questionID]
	if !ok {
		return Card{}, ErrCardNotFound
	}
	return c, nil
}

func (r *MemoryRepo) PutCard(_ context.Context, card Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.QuestionID] = card
	return nil
}

func (r *MemoryRepo) DeleteCard(_ context.Context, questionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[questionID]; !ok {
		return ErrCardNotFound
	}
	delete(r.cards, questionID)
	return nil
}

func (r *MemoryRepo) ListCards(_ context.Context) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Card, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}
