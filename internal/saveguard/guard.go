// Package saveguard serializes writes of a single result: concurrent saves
// share one in-flight call instead of racing.
package saveguard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrSaveInProgress is returned by Reset while a save is running.
var ErrSaveInProgress = errors.New("save in progress")

// State is the lifecycle state of a Guard.
type State string

const (
	StateIdle   State = "idle"
	StateSaving State = "saving"
	StateSaved  State = "saved"
	StateError  State = "error"
)

const flightKey = "save"

type listener struct {
	id int
	fn func(State)
}

// Guard runs at most one save at a time. A Save that arrives while another
// is in flight receives the in-flight outcome without running its own fn.
type Guard[T any] struct {
	group  singleflight.Group
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	listeners []listener
	nextID    int
}

// New returns an idle guard.
func New[T any]() *Guard[T] {
	return &Guard[T]{state: StateIdle, logger: slog.Default()}
}

// WithLogger sets the logger used for rejected resets.
func (g *Guard[T]) WithLogger(l *slog.Logger) *Guard[T] {
	if l != nil {
		g.logger = l
	}
	return g
}

// State returns the current state.
func (g *Guard[T]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// OnStateChange registers fn to run on every transition, in order. The
// returned func removes it.
func (g *Guard[T]) OnStateChange(fn func(State)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.listeners = append(g.listeners, listener{id: id, fn: fn})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, l := range g.listeners {
			if l.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

func (g *Guard[T]) transition(s State) {
	g.mu.Lock()
	ls := g.setLocked(s)
	g.mu.Unlock()
	notify(ls, s)
}

// setLocked sets the state and returns a snapshot of the listeners. g.mu
// must be held.
func (g *Guard[T]) setLocked(s State) []listener {
	g.state = s
	ls := make([]listener, len(g.listeners))
	copy(ls, g.listeners)
	return ls
}

func notify(ls []listener, s State) {
	for _, l := range ls {
		l.fn(s)
	}
}

// Save runs fn unless a save is already in flight, in which case it waits for
// and returns that save's result. fn runs to completion once started; a
// caller whose ctx ends early stops waiting and gets ctx.Err().
func (g *Guard[T]) Save(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ch := g.group.DoChan(flightKey, func() (any, error) {
		g.transition(StateSaving)
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			g.transition(StateError)
			return v, err
		}
		g.transition(StateSaved)
		return v, nil
	})

	select {
	case res := <-ch:
		v, _ := res.Val.(T)
		return v, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Reset returns a finished guard to idle. It is rejected while saving.
func (g *Guard[T]) Reset() error {
	g.mu.Lock()
	switch g.state {
	case StateSaving:
		g.mu.Unlock()
		g.logger.Warn("save guard reset rejected while saving")
		return ErrSaveInProgress
	case StateIdle:
		g.mu.Unlock()
		return nil
	}
	ls := g.setLocked(StateIdle)
	g.mu.Unlock()
	notify(ls, StateIdle)
	return nil
}
