package saveguard

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordStates[T any](g *Guard[T]) (*[]State, *sync.Mutex) {
	var (
		mu     sync.Mutex
		states []State
	)
	g.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	return &states, &mu
}

func TestGuard_ConcurrentSavesRunOnce(t *testing.T) {
	g := New[string]()
	var calls atomic.Int32
	started := make(chan struct{})

	slow := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		time.Sleep(50 * time.Millisecond)
		return "result-id", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = g.Save(context.Background(), slow)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = g.Save(context.Background(), slow)
	}()
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, "result-id", results[0])
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, StateSaved, g.State())
}

func TestGuard_ConcurrentFailureShared(t *testing.T) {
	g := New[int]()
	boom := errors.New("network down")
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = g.Save(context.Background(), func(context.Context) (int, error) {
			close(started)
			<-release
			return 0, boom
		})
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = g.Save(context.Background(), func(context.Context) (int, error) {
			t.Error("second fn must not run")
			return 1, nil
		})
	}()
	// Give the second caller time to attach to the flight.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, errs[0], boom)
	assert.ErrorIs(t, errs[1], boom)
	assert.Equal(t, StateError, g.State())
}

func TestGuard_SuccessTransitions(t *testing.T) {
	g := New[int]()
	states, mu := recordStates(g)

	v, err := g.Save(context.Background(), func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateSaving, StateSaved}, *states)
}

func TestGuard_FailureThenResetThenSuccess(t *testing.T) {
	g := New[int]()
	states, mu := recordStates(g)
	boom := errors.New("boom")

	_, err := g.Save(context.Background(), func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateError, g.State())

	require.NoError(t, g.Reset())
	assert.Equal(t, StateIdle, g.State())

	_, err = g.Save(context.Background(), func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateSaving, StateError, StateIdle, StateSaving, StateSaved}, *states)
}

func TestGuard_SaveFromSavedRunsAgain(t *testing.T) {
	g := New[int]()
	var calls int
	fn := func(context.Context) (int, error) { calls++; return calls, nil }

	first, _ := g.Save(context.Background(), fn)
	second, _ := g.Save(context.Background(), fn)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestGuard_ResetWhileSavingRejected(t *testing.T) {
	g := New[int]()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		g.Save(context.Background(), func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	assert.ErrorIs(t, g.Reset(), ErrSaveInProgress)
	assert.Equal(t, StateSaving, g.State())

	close(release)
	<-done
	assert.Equal(t, StateSaved, g.State())
}

func TestGuard_ResetFromIdleIsNoop(t *testing.T) {
	g := New[int]()
	states, mu := recordStates(g)
	require.NoError(t, g.Reset())

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, *states)
}

func TestGuard_Unsubscribe(t *testing.T) {
	g := New[int]()
	var count int
	unsubscribe := g.OnStateChange(func(State) { count++ })

	g.Save(context.Background(), func(context.Context) (int, error) { return 0, nil })
	assert.Equal(t, 2, count)

	unsubscribe()
	g.Reset()
	g.Save(context.Background(), func(context.Context) (int, error) { return 0, nil })
	assert.Equal(t, 2, count)
}

func TestGuard_CallerContextCancelled(t *testing.T) {
	g := New[int]()
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Save(ctx, func(fnCtx context.Context) (int, error) {
		<-release
		return 1, fnCtx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuard_ResetRacingSaveNeverClearsSaving(t *testing.T) {
	g := New[int]()
	var violations atomic.Int32

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = g.Reset()
			}
		}
	}()

	for i := 0; i < 500; i++ {
		_, err := g.Save(context.Background(), func(context.Context) (int, error) {
			for j := 0; j < 5; j++ {
				if g.State() != StateSaving {
					violations.Add(1)
				}
				runtime.Gosched()
			}
			return i, nil
		})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, violations.Load(), "state left saving while a save was running")
}
