package remote

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicprep/civicprep/internal/retry"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations(), "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, name := range files {
		body, err := fs.ReadFile(Migrations(), name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	err := classify("insert", &pgconn.PgError{Code: "23505"})
	assert.False(t, retry.IsTransient(err))
	assert.Contains(t, err.Error(), "insert")

	err = classify("insert", &pgconn.PgError{Code: "08006"})
	assert.True(t, retry.IsTransient(err))

	err = classify("connect", syscall.ECONNREFUSED)
	assert.True(t, retry.IsTransient(err))
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
}

func TestOpen_NotConfigured(t *testing.T) {
	_, err := Open(context.Background(), "", DefaultPoolConfig(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// openTestDB connects to CIVICPREP_TEST_DATABASE_URL and migrates it.
func openTestDB(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("CIVICPREP_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CIVICPREP_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url, DefaultPoolConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.Migrate(ctx)
	require.NoError(t, err)
	return s
}

func TestInsertResult_Idempotent(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	userID := "test-" + uuid.NewString()

	r := store.PendingResult{
		ID:             uuid.NewString(),
		UserID:         userID,
		Score:          12,
		TotalQuestions: 20,
		Passed:         true,
		EndReason:      "passThreshold",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		Responses: []store.PendingResponse{
			{QuestionID: "GOV-P01", SelectedAnswer: "the Constitution", IsCorrect: true},
		},
	}
	require.NoError(t, s.InsertResult(ctx, r))
	require.NoError(t, s.InsertResult(ctx, r))

	recent, err := s.RecentResults(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, r.ID, recent[0].ClientID)
	assert.Equal(t, 12, recent[0].Score)
}

func TestCards_UpsertPullDueDelete(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	userID := "test-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)

	due := spacedrep.NewCard("GOV-P01", now.Add(-time.Hour))
	later := spacedrep.NewCard("GOV-P02", now)
	later.Due = now.Add(24 * time.Hour)
	later.LastReview = now
	later.State = spacedrep.StateReview

	require.NoError(t, s.UpsertCards(ctx, userID, []spacedrep.Card{due, later}))
	require.NoError(t, s.UpsertCards(ctx, userID, []spacedrep.Card{due}))

	cards, err := s.PullCards(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, spacedrep.StateReview, cards[1].State)
	assert.True(t, cards[1].LastReview.Equal(now))
	assert.False(t, cards[0].HasReview())

	counts, err := s.DueCountsByUser(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[userID])

	require.NoError(t, s.DeleteCard(ctx, userID, "GOV-P01"))
	require.NoError(t, s.DeleteCard(ctx, userID, "GOV-P01"))
	cards, err = s.PullCards(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestSubscriptions(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	userID := "test-" + uuid.NewString()

	sub := Subscription{
		UserID:   userID,
		Endpoint: "https://push.example.com/1",
		Keys:     SubscriptionKeys{P256dh: "p", Auth: "a"},
	}
	require.NoError(t, s.UpsertSubscription(ctx, sub))
	sub.Endpoint = "https://push.example.com/2"
	sub.ReminderFrequency = "weekly"
	require.NoError(t, s.UpsertSubscription(ctx, sub))

	subs, err := s.Subscriptions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example.com/2", subs[0].Endpoint)
	assert.Equal(t, "a", subs[0].Keys.Auth)

	weekly, err := s.SubscriptionsByFrequency(ctx, "weekly")
	require.NoError(t, err)
	found := false
	for _, w := range weekly {
		found = found || w.UserID == userID
	}
	assert.True(t, found)

	require.NoError(t, s.DeleteSubscription(ctx, userID))
	subs, err = s.Subscriptions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestMigrationStatuses(t *testing.T) {
	s := openTestDB(t)
	statuses, err := s.MigrationStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for _, st := range statuses {
		assert.True(t, st.Applied, st.Path)
		assert.True(t, strings.HasSuffix(st.Path, ".sql"))
	}
}

func TestMigrate_WithoutPool(t *testing.T) {
	s := New(nil, nil)
	_, err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotConfigured))
}
