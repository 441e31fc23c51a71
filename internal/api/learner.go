package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/civicprep/civicprep/internal/i18n"
	"github.com/civicprep/civicprep/internal/interview"
	"github.com/civicprep/civicprep/internal/practice"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/stats"
	"github.com/civicprep/civicprep/internal/store"
)

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rep, err := stats.Build(s.bank, s.history.GetAnswerHistory(ctx), s.deck.All(ctx), s.now())
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to compute readiness")
		return
	}
	respondJSON(w, http.StatusOK, rep.Readiness)
}

func (s *Server) handleMastery(w http.ResponseWriter, r *http.Request) {
	m, err := stats.Mastery(s.bank, s.history.GetAnswerHistory(r.Context()), s.now())
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to compute mastery")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// DueCard is a due review card with its display labels.
type DueCard struct {
	QuestionID  string             `json:"questionId"`
	Question    i18n.Bilingual     `json:"question"`
	Due         time.Time          `json:"due"`
	Status      spacedrep.Status   `json:"status"`
	StatusLabel i18n.Bilingual     `json:"statusLabel"`
	NextReview  i18n.Bilingual     `json:"nextReview"`
	Strength    spacedrep.Strength `json:"strength"`
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	due := s.deck.Due(r.Context(), now)
	out := make([]DueCard, 0, len(due))
	for _, c := range due {
		status, label := spacedrep.StatusLabel(c, now)
		dc := DueCard{
			QuestionID:  c.QuestionID,
			Due:         c.Due,
			Status:      status,
			StatusLabel: label,
			NextReview:  spacedrep.NextReviewText(c, now),
			Strength:    spacedrep.IntervalStrength(c),
		}
		if q, ok := s.bank.Get(c.QuestionID); ok {
			dc.Question = i18n.Bilingual{EN: q.QuestionEN, MY: q.QuestionMY}
		}
		out = append(out, dc)
	}
	respondJSON(w, http.StatusOK, map[string]any{"count": len(out), "cards": out})
}

type addCardRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var req addCardRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "Invalid request")
		return
	}
	if _, ok := s.bank.Get(req.QuestionID); !ok {
		s.respondErrorAndLog(w, r, fmt.Errorf("%w: unknown question %q", errBadRequest, req.QuestionID), "Invalid request")
		return
	}
	added, err := s.deck.Add(r.Context(), req.QuestionID, s.now())
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to add card")
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]any{"questionId": req.QuestionID, "added": added})
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "questionID")
	if !s.deck.Has(r.Context(), id) {
		s.respondErrorAndLog(w, r, spacedrep.ErrCardNotFound, "Card not found")
		return
	}
	if err := s.deck.Remove(r.Context(), id); err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to remove card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type gradeCardRequest struct {
	IsEasy bool `json:"isEasy"`
}

type gradeCardResponse struct {
	Card         spacedrep.Card `json:"card"`
	IntervalText i18n.Bilingual `json:"intervalText"`
}

func (s *Server) handleGradeCard(w http.ResponseWriter, r *http.Request) {
	var req gradeCardRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "Invalid request")
		return
	}
	res, err := s.deck.Grade(r.Context(), chi.URLParam(r, "questionID"), req.IsEasy, s.now())
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to grade card")
		return
	}
	respondJSON(w, http.StatusOK, gradeCardResponse{Card: res.Card, IntervalText: res.IntervalText})
}

const defaultPracticeCount = 10

type practiceRequest struct {
	Count      int      `json:"count" validate:"omitempty,min=1,max=100"`
	WeakRatio  float64  `json:"weakRatio" validate:"gte=0,lte=1"`
	Categories []string `json:"categories"`
	Mode       string   `json:"mode" validate:"omitempty,oneof=mixed weak drill"`
}

func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	var req practiceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "Invalid request")
		return
	}

	pool := s.bank.All()
	if len(req.Categories) > 0 {
		var cats []question.Category
		for _, name := range req.Categories {
			sub := question.ParseCategory(name)
			if sub == nil {
				s.respondErrorAndLog(w, r, fmt.Errorf("%w: unknown category %q", errBadRequest, name), "Invalid request")
				return
			}
			cats = append(cats, sub...)
		}
		pool = s.bank.InCategories(cats)
	}

	if req.Count == 0 {
		req.Count = defaultPracticeCount
	}
	focus, _ := practice.ParseFocus(req.Mode)
	history := s.history.GetAnswerHistory(r.Context())
	selected := practice.Select(pool, history, practice.Options{
		Focus:     focus,
		Count:     req.Count,
		WeakRatio: req.WeakRatio,
	}, nil)
	respondJSON(w, http.StatusOK, map[string]any{
		"questions":  selected,
		"accuracies": practice.Accuracies(selected, history),
	})
}

type appendAnswerRequest struct {
	QuestionID  string    `json:"questionId" validate:"required"`
	IsCorrect   bool      `json:"isCorrect"`
	SessionType string    `json:"sessionType" validate:"omitempty,oneof=test practice"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Server) handleAppendAnswer(w http.ResponseWriter, r *http.Request) {
	var req appendAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "Invalid request")
		return
	}
	if _, ok := s.bank.Get(req.QuestionID); !ok {
		s.respondErrorAndLog(w, r, fmt.Errorf("%w: unknown question %q", errBadRequest, req.QuestionID), "Invalid request")
		return
	}
	a := store.StoredAnswer{
		QuestionID:  req.QuestionID,
		IsCorrect:   req.IsCorrect,
		Timestamp:   req.Timestamp,
		SessionType: store.SessionType(req.SessionType),
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	if err := s.answers.Append(r.Context(), a); err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to record answer")
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

type interviewGradeRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Transcript string `json:"transcript"`
}

func (s *Server) handleInterviewGrade(w http.ResponseWriter, r *http.Request) {
	var req interviewGradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "Invalid request")
		return
	}
	q, ok := s.bank.Get(req.QuestionID)
	if !ok {
		s.respondErrorAndLog(w, r, fmt.Errorf("%w: unknown question %q", errNotFound, req.QuestionID), "Question not found")
		return
	}
	v := s.judge.Evaluate(r.Context(), q.QuestionEN, req.Transcript, interview.ExpectedAnswers(q))
	respondJSON(w, http.StatusOK, struct {
		interview.Verdict
		Feedback string `json:"feedback"`
	}{v, interview.Feedback(v.IsCorrect, nil)})
}
