package syncqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicprep/civicprep/internal/spacedrep"
)

type fakeCardStore struct {
	cards   map[string][]spacedrep.Card
	pullErr error
}

func (f *fakeCardStore) PullCards(_ context.Context, userID string) ([]spacedrep.Card, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return f.cards[userID], nil
}

func (f *fakeCardStore) UpsertCards(_ context.Context, userID string, cards []spacedrep.Card) error {
	f.cards[userID] = cards
	return nil
}

func TestSyncCards_MergesBothWays(t *testing.T) {
	ctx := context.Background()
	deck := spacedrep.NewDeck(spacedrep.NewMemoryRepo(), spacedrep.NewFSRS(), nil)
	_, err := deck.Add(ctx, "GOV-01", testNow)
	require.NoError(t, err)

	remote := &fakeCardStore{cards: map[string][]spacedrep.Card{
		"user-1": {
			{QuestionID: "HIS-02", Due: testNow, AddedAt: testNow.Add(-time.Hour)},
		},
	}}

	res, err := SyncCards(ctx, deck, remote, "user-1")
	require.NoError(t, err)
	assert.Equal(t, CardSyncResult{Local: 1, Remote: 1, Merged: 2}, res)

	assert.True(t, deck.Has(ctx, "HIS-02"))
	assert.Len(t, remote.cards["user-1"], 2)
}

func TestSyncCards_PullFailureLeavesDeck(t *testing.T) {
	ctx := context.Background()
	deck := spacedrep.NewDeck(spacedrep.NewMemoryRepo(), spacedrep.NewFSRS(), nil)
	_, err := deck.Add(ctx, "GOV-01", testNow)
	require.NoError(t, err)

	remote := &fakeCardStore{cards: map[string][]spacedrep.Card{}, pullErr: errors.New("connection refused")}
	_, err = SyncCards(ctx, deck, remote, "user-1")
	require.Error(t, err)
	assert.Len(t, deck.All(ctx), 1)
	assert.Empty(t, remote.cards)
}
