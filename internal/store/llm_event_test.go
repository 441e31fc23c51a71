package store

import (
	"context"
	"testing"
)

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "interview-judge", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true},
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "interview-judge", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "explain", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: false, ErrorMessage: "rate limit"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Purpose != "explain" || got[0].Success {
		t.Errorf("newest event = %+v", got[0])
	}

	judged, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "interview-judge"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(judged) != 2 || judged[0].InputTokens != 50 {
		t.Errorf("judge events = %+v", judged)
	}

	one, err := repo.GetLLMEvent(ctx, got[0].ID)
	if err != nil || one == nil {
		t.Fatalf("get: %v %v", one, err)
	}
	if one.ErrorMessage != "rate limit" {
		t.Errorf("error message = %q", one.ErrorMessage)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %+v", byPurpose)
	}
	judge := byPurpose[1]
	if judge.Purpose != "interview-judge" || judge.Calls != 2 || judge.InputTokens != 150 || judge.AvgLatencyMs != 200 {
		t.Errorf("judge usage = %+v", judge)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil || len(byModel) != 2 {
		t.Fatalf("usage by model: %+v %v", byModel, err)
	}
}
