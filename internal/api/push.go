package api

import (
	"fmt"
	"net/http"

	"github.com/civicprep/civicprep/internal/remote"
)

func (s *Server) pushConfigured(w http.ResponseWriter, r *http.Request) bool {
	if s.remind == nil || s.subs == nil {
		respondError(w, r, http.StatusServiceUnavailable, "Push notifications are not configured")
		return false
	}
	return true
}

func (s *Server) handleSRSReminder(w http.ResponseWriter, r *http.Request) {
	if !s.pushConfigured(w, r) {
		return
	}
	rep, err := s.remind.RemindDue(r.Context(), s.now())
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to send SRS reminders")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

type weakAreaNudgeRequest struct {
	UserID           string `json:"userId" validate:"required"`
	WeakCategory     string `json:"weakCategory" validate:"required"`
	DaysSinceStudied *int   `json:"daysSinceStudied" validate:"omitempty,gte=0"`
}

func (s *Server) handleWeakAreaNudge(w http.ResponseWriter, r *http.Request) {
	if !s.pushConfigured(w, r) {
		return
	}
	var req weakAreaNudgeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "userId and weakCategory are required")
		return
	}
	days := -1
	if req.DaysSinceStudied != nil {
		days = *req.DaysSinceStudied
	}
	rep, err := s.remind.NudgeWeakArea(r.Context(), req.UserID, req.WeakCategory, days)
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to send weak area nudge notification")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

type studyReminderRequest struct {
	Frequency string `json:"frequency" validate:"required"`
}

func (s *Server) handleStudyReminder(w http.ResponseWriter, r *http.Request) {
	if !s.pushConfigured(w, r) {
		return
	}
	var req studyReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "frequency is required")
		return
	}
	rep, err := s.remind.SendStudyReminder(r.Context(), req.Frequency)
	if err != nil {
		s.respondErrorAndLog(w, r, err, "Failed to send notifications")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

type subscribeRequest struct {
	Subscription *struct {
		Endpoint string                  `json:"endpoint" validate:"required,url"`
		Keys     remote.SubscriptionKeys `json:"keys"`
	} `json:"subscription" validate:"required"`
	ReminderFrequency string `json:"reminderFrequency" validate:"omitempty,oneof=daily weekly off"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.pushConfigured(w, r) {
		return
	}
	userID, _ := userIDFrom(r.Context())
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorAndLog(w, r, err, "Missing subscription data")
		return
	}
	sub := remote.Subscription{
		UserID:            userID,
		Endpoint:          req.Subscription.Endpoint,
		Keys:              req.Subscription.Keys,
		ReminderFrequency: req.ReminderFrequency,
	}
	if err := s.subs.UpsertSubscription(r.Context(), sub); err != nil {
		s.respondErrorAndLog(w, r, fmt.Errorf("save subscription: %w", err), "Failed to save subscription")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.pushConfigured(w, r) {
		return
	}
	userID, _ := userIDFrom(r.Context())
	if err := s.subs.DeleteSubscription(r.Context(), userID); err != nil {
		s.respondErrorAndLog(w, r, fmt.Errorf("delete subscription: %w", err), "Failed to remove subscription")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
