package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/civicprep/civicprep/internal/retry"
	"github.com/civicprep/civicprep/internal/saveguard"
	"github.com/civicprep/civicprep/internal/store"
)

type scriptedWriter struct {
	mu    sync.Mutex
	errs  []error
	calls int
	got   []store.PendingResult
}

func (w *scriptedWriter) InsertResult(_ context.Context, r store.PendingResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if len(w.errs) > 0 {
		err := w.errs[0]
		w.errs = w.errs[1:]
		if err != nil {
			return err
		}
	}
	w.got = append(w.got, r)
	return nil
}

type memQueue struct {
	items []store.PendingResult
	err   error
}

func (q *memQueue) Enqueue(_ context.Context, r store.PendingResult) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.items = append(q.items, r)
	return r.ID, nil
}

func fastSaverRetry() SaverOption {
	return WithSaverRetry(retry.Config{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})
}

func pendingResult() store.PendingResult {
	return store.PendingResult{UserID: "u1", Score: 12, TotalQuestions: 14, Passed: true, EndReason: "passThreshold"}
}

func TestSaver_SavesRemotely(t *testing.T) {
	w := &scriptedWriter{}
	q := &memQueue{}
	s := NewSaver(w, q, fastSaverRetry())

	out, err := s.Save(context.Background(), pendingResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out != OutcomeSaved {
		t.Errorf("outcome = %q, want saved", out)
	}
	if len(w.got) != 1 || w.got[0].ID == "" {
		t.Errorf("remote got %+v, want one result with an ID", w.got)
	}
	if len(q.items) != 0 {
		t.Errorf("queue should be empty, has %d", len(q.items))
	}
	if s.State() != saveguard.StateSaved {
		t.Errorf("state = %q, want saved", s.State())
	}
}

func TestSaver_RetriesTransient(t *testing.T) {
	w := &scriptedWriter{errs: []error{retry.Transient(errors.New("connection reset"))}}
	s := NewSaver(w, &memQueue{}, fastSaverRetry())

	out, err := s.Save(context.Background(), pendingResult())
	if err != nil || out != OutcomeSaved {
		t.Fatalf("Save = %q, %v", out, err)
	}
	if w.calls != 2 {
		t.Errorf("calls = %d, want 2", w.calls)
	}
}

func TestSaver_QueuesAfterTransientFailures(t *testing.T) {
	flaky := retry.Transient(errors.New("network down"))
	w := &scriptedWriter{errs: []error{flaky, flaky, flaky}}
	q := &memQueue{}
	s := NewSaver(w, q, fastSaverRetry())

	r := pendingResult()
	r.ID = "result-1"
	out, err := s.Save(context.Background(), r)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out != OutcomeQueued {
		t.Errorf("outcome = %q, want queued", out)
	}
	if len(q.items) != 1 || q.items[0].ID != "result-1" {
		t.Errorf("queue = %+v", q.items)
	}
	if w.calls != 3 {
		t.Errorf("calls = %d, want 3", w.calls)
	}
}

func TestSaver_PermanentSurfaces(t *testing.T) {
	w := &scriptedWriter{errs: []error{retry.Permanent(errors.New("constraint violated"))}}
	q := &memQueue{}
	s := NewSaver(w, q, fastSaverRetry())

	_, err := s.Save(context.Background(), pendingResult())
	if err == nil {
		t.Fatal("expected error")
	}
	if w.calls != 1 {
		t.Errorf("calls = %d, want 1", w.calls)
	}
	if len(q.items) != 0 {
		t.Error("permanent failures must not be queued")
	}
	if s.State() != saveguard.StateError {
		t.Errorf("state = %q, want error", s.State())
	}
	if err := s.Reset(); err != nil {
		t.Errorf("Reset: %v", err)
	}
	if s.State() != saveguard.StateIdle {
		t.Errorf("state after reset = %q", s.State())
	}
}

func TestSaver_OfflineQueues(t *testing.T) {
	q := &memQueue{}
	s := NewSaver(nil, q)

	out, err := s.Save(context.Background(), pendingResult())
	if err != nil || out != OutcomeQueued {
		t.Fatalf("Save = %q, %v", out, err)
	}
	if len(q.items) != 1 {
		t.Errorf("queue len = %d", len(q.items))
	}
}

func TestSaver_NothingConfigured(t *testing.T) {
	s := NewSaver(nil, nil)
	if _, err := s.Save(context.Background(), pendingResult()); err == nil {
		t.Error("expected error with no remote and no queue")
	}
}

func TestSaver_QueueFailureSurfaces(t *testing.T) {
	q := &memQueue{err: errors.New("disk full")}
	s := NewSaver(nil, q)
	if _, err := s.Save(context.Background(), pendingResult()); err == nil {
		t.Error("expected enqueue error")
	}
}

func TestSaver_StateChanges(t *testing.T) {
	s := NewSaver(&scriptedWriter{}, nil)
	var states []saveguard.State
	unsubscribe := s.OnStateChange(func(st saveguard.State) { states = append(states, st) })
	defer unsubscribe()

	if _, err := s.Save(context.Background(), pendingResult()); err != nil {
		t.Fatal(err)
	}
	want := []saveguard.State{saveguard.StateSaving, saveguard.StateSaved}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %q, want %q", i, states[i], want[i])
		}
	}
}
