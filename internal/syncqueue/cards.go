package syncqueue

import (
	"context"
	"fmt"

	"github.com/civicprep/civicprep/internal/spacedrep"
)

// CardStore is the remote copy of a learner's review deck.
type CardStore interface {
	PullCards(ctx context.Context, userID string) ([]spacedrep.Card, error)
	UpsertCards(ctx context.Context, userID string, cards []spacedrep.Card) error
}

// CardSyncResult counts a deck sync.
type CardSyncResult struct {
	Local  int `json:"local"`
	Remote int `json:"remote"`
	Merged int `json:"merged"`
}

// SyncCards merges the local deck with the remote one, keeping the most
// recently touched copy of each card, and writes the result to both sides.
func SyncCards(ctx context.Context, deck *spacedrep.Deck, remote CardStore, userID string) (CardSyncResult, error) {
	local := deck.All(ctx)
	pulled, err := remote.PullCards(ctx, userID)
	if err != nil {
		return CardSyncResult{}, fmt.Errorf("pull cards: %w", err)
	}
	merged := spacedrep.Merge(local, pulled)
	if err := deck.Import(ctx, merged); err != nil {
		return CardSyncResult{}, err
	}
	if err := remote.UpsertCards(ctx, userID, merged); err != nil {
		return CardSyncResult{}, fmt.Errorf("push cards: %w", err)
	}
	return CardSyncResult{Local: len(local), Remote: len(pulled), Merged: len(merged)}, nil
}
