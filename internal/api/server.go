// Package api serves the learner's progress, review deck, practice selection
// and interview grading over HTTP, along with the push reminder endpoints
// called by the scheduler.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/civicprep/civicprep/internal/interview"
	"github.com/civicprep/civicprep/internal/push"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/remote"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
)

// Reminders sends the push notifications the cron routes trigger.
type Reminders interface {
	RemindDue(ctx context.Context, now time.Time) (push.Report, error)
	NudgeWeakArea(ctx context.Context, userID, category string, days int) (push.SendReport, error)
	SendStudyReminder(ctx context.Context, frequency string) (push.SendReport, error)
}

// SubscriptionWriter registers and removes push subscriptions.
type SubscriptionWriter interface {
	UpsertSubscription(ctx context.Context, sub remote.Subscription) error
	DeleteSubscription(ctx context.Context, userID string) error
}

// Config holds the listener settings and the shared secrets.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CronAPIKey      string
	CronSecret      string
	JWTSecret       string
}

// Deps are the services behind the handlers. Reminders and Subscriptions
// are nil when push is not configured; their routes then answer 503.
type Deps struct {
	Bank          *question.Bank
	Answers       store.AnswerRepo
	Deck          *spacedrep.Deck
	Judge         *interview.Judge
	Reminders     Reminders
	Subscriptions SubscriptionWriter
	Logger        *slog.Logger
	Clock         func() time.Time
}

// Server is the HTTP API.
type Server struct {
	cfg     Config
	bank    *question.Bank
	answers store.AnswerRepo
	history *store.HistoryReader
	deck    *spacedrep.Deck
	judge   *interview.Judge
	remind  Reminders
	subs    SubscriptionWriter
	tokens  *TokenVerifier
	limiter *userLimiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewServer wires the handlers. A JWT secret, when set, must be valid.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Bank == nil || deps.Answers == nil || deps.Deck == nil {
		return nil, errors.New("api: bank, answers and deck are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Judge == nil {
		deps.Judge = interview.NewJudge(nil, interview.DefaultJudgeConfig(), deps.Logger)
	}
	logger := deps.Logger.With("component", "api")

	s := &Server{
		cfg:     cfg,
		bank:    deps.Bank,
		answers: deps.Answers,
		history: store.NewHistoryReader(deps.Answers, logger),
		deck:    deps.Deck,
		judge:   deps.Judge,
		remind:  deps.Reminders,
		subs:    deps.Subscriptions,
		limiter: newUserLimiter(subscribeRequestsPerMinute, deps.Clock),
		logger:  logger,
		now:     deps.Clock,
	}
	if cfg.JWTSecret != "" {
		v, err := NewTokenVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("api: %w", err)
		}
		v.now = deps.Clock
		s.tokens = v
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Get("/readiness", s.handleReadiness)
		r.Get("/mastery", s.handleMastery)
		r.Get("/srs/due", s.handleDue)
		r.Post("/srs/cards", s.handleAddCard)
		r.Delete("/srs/cards/{questionID}", s.handleRemoveCard)
		r.Post("/srs/cards/{questionID}/grade", s.handleGradeCard)
		r.Post("/practice", s.handlePractice)
		r.Post("/answers", s.handleAppendAnswer)
		r.Post("/interview/grade", s.handleInterviewGrade)
	})

	r.Route("/api/push", func(r chi.Router) {
		r.With(requireAPIKey(s.cfg.CronAPIKey)).Post("/srs-reminder", s.handleSRSReminder)
		r.With(requireCronSecret(s.cfg.CronSecret)).Post("/weak-area-nudge", s.handleWeakAreaNudge)
		r.With(requireCronSecret(s.cfg.CronSecret)).Post("/send", s.handleStudyReminder)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.limitPerUser)
			r.Post("/subscribe", s.handleSubscribe)
			r.Delete("/subscribe", s.handleUnsubscribe)
		})
	})

	return r
}

// logRequests logs each request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down server", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
