package home

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/readiness"
	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/stats"
)

func testHome(t *testing.T) *HomeScreen {
	t.Helper()
	bank, err := question.New([]question.Question{
		{ID: "GOV-01", QuestionEN: "Supreme law?", Category: question.CategoryPrinciples,
			Answers: []question.Answer{{TextEN: "the Constitution", Correct: true}}},
	})
	if err != nil {
		t.Fatalf("question.New: %v", err)
	}
	return New(screen.Deps{Bank: bank})
}

func TestHomeScreen_MenuItems(t *testing.T) {
	h := testHome(t)
	want := []string{"REVIEW CARDS", "PRACTICE", "MOCK TEST", "INTERVIEW", "PROGRESS", "QUIT"}
	if len(h.menu.Items) != len(want) {
		t.Fatalf("menu has %d items, want %d", len(h.menu.Items), len(want))
	}
	for i, label := range want {
		if h.menu.Items[i].Label != label {
			t.Errorf("item %d = %q, want %q", i, h.menu.Items[i].Label, label)
		}
	}
}

func TestHomeScreen_StatsUpdateDueHint(t *testing.T) {
	h := testHome(t)
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	h.Update(screen.StatsLoadedMsg{Report: &stats.Report{
		Readiness: &readiness.Result{Score: 42},
		DueCount:  3,
	}})

	if h.menu.Items[0].Hint != "(3)" {
		t.Errorf("review hint = %q, want (3)", h.menu.Items[0].Hint)
	}
	if h.menu.Selected != 1 {
		t.Errorf("selection reset to %d, want 1", h.menu.Selected)
	}
	if h.View(120, 40) == "" {
		t.Error("expected non-empty view")
	}
}

func TestHomeScreen_PushesPractice(t *testing.T) {
	h := testHome(t)
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if msg.Screen.Title() != "Practice" {
		t.Errorf("pushed %q, want Practice", msg.Screen.Title())
	}
}
