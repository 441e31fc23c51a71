package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Reply is one scripted answer from a Stub.
type Reply struct {
	JSON  string
	Usage Usage
	Err   error
}

// Stub is a scripted Provider for tests and offline demos. It answers with
// its replies in order and records every prompt.
type Stub struct {
	mu      sync.Mutex
	replies []Reply
	prompts []Prompt
}

// NewStub returns a Stub that will answer with replies.
func NewStub(replies ...Reply) *Stub {
	return &Stub{replies: replies}
}

// Push queues another reply.
func (s *Stub) Push(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
}

func (s *Stub) Model() string { return "stub" }

// Complete returns the next reply. With none left it fails as unavailable.
func (s *Stub) Complete(_ context.Context, p Prompt) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	if len(s.replies) == 0 {
		return nil, &Error{Kind: KindUnavailable, Err: errors.New("stub has no replies left")}
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return finish(p, &Completion{JSON: json.RawMessage(r.JSON), Model: "stub", Usage: r.Usage})
}

// Prompts returns the prompts received so far.
func (s *Stub) Prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Prompt(nil), s.prompts...)
}
