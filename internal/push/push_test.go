package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	mrand "math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicprep/civicprep/internal/remote"
	"github.com/civicprep/civicprep/internal/retry"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestSRSReminder(t *testing.T) {
	one := SRSReminder(1)
	assert.Contains(t, one.Body, "You have 1 card ready to review.")
	assert.Equal(t, "/study#review", one.URL)
	assert.Equal(t, TagSRSReminder, one.Tag)
	assert.True(t, strings.HasPrefix(one.Title, "Cards Due for Review! / "))

	many := SRSReminder(5)
	assert.Contains(t, many.Body, "You have 5 cards ready to review.")
	assert.Contains(t, many.Body, " 5 ")
}

func TestWeakAreaNudge(t *testing.T) {
	for pick := range NumWeakAreaTemplates {
		p := WeakAreaNudge("Rights and Responsibilities", 4, pick)
		assert.NotContains(t, p.Body, "{category}")
		assert.NotContains(t, p.Body, "{days}")
		assert.Contains(t, p.Body, "Rights and Responsibilities")
		assert.Equal(t, TagWeakAreaNudge, p.Tag)
		assert.Equal(t, "/practice?category=Rights%20and%20Responsibilities", p.URL)
	}

	first := WeakAreaNudge("History", 3, 0)
	assert.True(t, strings.HasPrefix(first.Body, "You haven't practiced History in 3 days."))

	unknown := WeakAreaNudge("History", -1, 0)
	assert.Contains(t, unknown.Body, "in ? days")

	assert.Equal(t, WeakAreaNudge("X", 1, 1), WeakAreaNudge("X", 1, 1+NumWeakAreaTemplates))
	assert.Equal(t, WeakAreaNudge("X", 1, NumWeakAreaTemplates-1), WeakAreaNudge("X", 1, -1))
}

func TestStudyReminder(t *testing.T) {
	for pick := range NumStudyTemplates {
		p := StudyReminder(pick)
		assert.Equal(t, "/home", p.URL)
		assert.Equal(t, TagStudyReminder, p.Tag)
		assert.Contains(t, p.Body, "\n")
	}
}

type fakeStore struct {
	mu       sync.Mutex
	due      map[string]int
	subs     map[string][]remote.Subscription
	subErr   map[string]error
	deleted  []string
	dueError error
}

func (f *fakeStore) DueCountsByUser(context.Context, time.Time) (map[string]int, error) {
	return f.due, f.dueError
}

func (f *fakeStore) Subscriptions(_ context.Context, userID string) ([]remote.Subscription, error) {
	if err := f.subErr[userID]; err != nil {
		return nil, err
	}
	return f.subs[userID], nil
}

func (f *fakeStore) SubscriptionsByFrequency(_ context.Context, frequency string) ([]remote.Subscription, error) {
	var out []remote.Subscription
	for _, subs := range f.subs {
		for _, s := range subs {
			if s.ReminderFrequency == frequency {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSubscription(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	fail  map[string]error
	sent  map[string][]Payload
	calls int
}

func (f *fakeSender) Send(_ context.Context, sub remote.Subscription, p Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[sub.Endpoint]; err != nil {
		return err
	}
	if f.sent == nil {
		f.sent = map[string][]Payload{}
	}
	f.sent[sub.UserID] = append(f.sent[sub.UserID], p)
	return nil
}

type memDeduper struct {
	held map[string]bool
	err  error
}

func (m *memDeduper) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func sub(user, endpoint string) remote.Subscription {
	return remote.Subscription{UserID: user, Endpoint: endpoint, ReminderFrequency: "daily"}
}

func TestRemindDue(t *testing.T) {
	st := &fakeStore{
		due: map[string]int{"alice": 3, "bob": 1, "carol": 2, "dave": 4},
		subs: map[string][]remote.Subscription{
			"alice": {sub("alice", "https://push/a")},
			"bob":   {sub("bob", "https://push/b")},
			"dave":  nil,
		},
		subErr: map[string]error{"carol": errors.New("db down")},
	}
	sender := &fakeSender{fail: map[string]error{
		"https://push/b": &retry.StatusError{Code: http.StatusGone},
	}}

	n := NewNotifier(st, sender, nil, nil)
	rep, err := n.RemindDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, Report{Notified: 1, Errors: 2}, rep)
	assert.Equal(t, []string{"bob"}, st.deleted)
	require.Len(t, sender.sent["alice"], 1)
	assert.Contains(t, sender.sent["alice"][0].Body, "You have 3 cards")
}

func TestRemindDue_Dedupe(t *testing.T) {
	st := &fakeStore{
		due:  map[string]int{"alice": 2},
		subs: map[string][]remote.Subscription{"alice": {sub("alice", "https://push/a")}},
	}
	sender := &fakeSender{}
	n := NewNotifier(st, sender, &memDeduper{held: map[string]bool{}}, nil)

	rep, err := n.RemindDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Notified)

	rep, err = n.RemindDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)
	assert.Equal(t, 1, sender.calls)
}

func TestRemindDue_DedupeUnavailableStillSends(t *testing.T) {
	st := &fakeStore{
		due:  map[string]int{"alice": 2},
		subs: map[string][]remote.Subscription{"alice": {sub("alice", "https://push/a")}},
	}
	sender := &fakeSender{}
	n := NewNotifier(st, sender, &memDeduper{err: errors.New("redis down")}, nil)

	rep, err := n.RemindDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Notified)
}

func TestRemindDue_StoreError(t *testing.T) {
	n := NewNotifier(&fakeStore{dueError: errors.New("boom")}, &fakeSender{}, nil, nil)
	_, err := n.RemindDue(context.Background(), testNow)
	require.Error(t, err)
}

func TestNudgeWeakArea(t *testing.T) {
	st := &fakeStore{subs: map[string][]remote.Subscription{"alice": {sub("alice", "https://push/a")}}}
	sender := &fakeSender{}
	n := NewNotifier(st, sender, nil, nil).WithRand(mrand.New(mrand.NewPCG(1, 2)))

	rep, err := n.NudgeWeakArea(context.Background(), "alice", "American History", 5)
	require.NoError(t, err)
	assert.Equal(t, SendReport{Sent: 1}, rep)
	assert.Contains(t, sender.sent["alice"][0].Body, "American History")

	rep, err = n.NudgeWeakArea(context.Background(), "nobody", "History", 5)
	require.NoError(t, err)
	assert.Equal(t, SendReport{}, rep)
}

func TestSendStudyReminder(t *testing.T) {
	weekly := sub("bob", "https://push/b")
	weekly.ReminderFrequency = "weekly"
	st := &fakeStore{subs: map[string][]remote.Subscription{
		"alice": {sub("alice", "https://push/a")},
		"bob":   {weekly},
	}}
	sender := &fakeSender{}
	n := NewNotifier(st, sender, nil, nil)

	rep, err := n.SendStudyReminder(context.Background(), "daily")
	require.NoError(t, err)
	assert.Equal(t, SendReport{Sent: 1}, rep)
	assert.Equal(t, TagStudyReminder, sender.sent["alice"][0].Tag)
}

func TestIsGone(t *testing.T) {
	assert.True(t, IsGone(&retry.StatusError{Code: 410}))
	assert.True(t, IsGone(&retry.StatusError{Code: 404}))
	assert.False(t, IsGone(&retry.StatusError{Code: 500}))
	assert.False(t, IsGone(errors.New("x")))
}

func TestNewWebPush_RequiresKeys(t *testing.T) {
	_, err := NewWebPush(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// browserKeys returns a subscription key pair as a browser would encode it.
func browserKeys(t *testing.T) remote.SubscriptionKeys {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return remote.SubscriptionKeys{
		P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func TestWebPush_Send(t *testing.T) {
	var status = http.StatusCreated
	var gotTopic string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTopic = r.Header.Get("Topic")
		w.WriteHeader(status)
	}))
	defer srv.Close()

	pub, priv, err := GenerateKeys()
	require.NoError(t, err)
	wp, err := NewWebPush(Config{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subject:         "mailto:ops@example.com",
		RatePerSecond:   100,
		HTTPClient:      srv.Client(),
	})
	require.NoError(t, err)

	s := remote.Subscription{UserID: "alice", Endpoint: srv.URL + "/" + uuid.NewString(), Keys: browserKeys(t)}
	require.NoError(t, wp.Send(context.Background(), s, SRSReminder(2)))
	assert.Equal(t, TagSRSReminder, gotTopic)

	status = http.StatusGone
	err = wp.Send(context.Background(), s, SRSReminder(2))
	require.Error(t, err)
	assert.True(t, IsGone(err))
}

func TestRedisDeduper(t *testing.T) {
	url := os.Getenv("CIVICPREP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CIVICPREP_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	d, err := NewRedisDeduper(ctx, url)
	require.NoError(t, err)
	defer d.Close()

	key := "test:" + uuid.NewString()
	ok, err := d.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
