package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/app"
	"github.com/civicprep/civicprep/internal/config"
	"github.com/civicprep/civicprep/internal/interview"
	"github.com/civicprep/civicprep/internal/llm"
	"github.com/civicprep/civicprep/internal/logger"
	"github.com/civicprep/civicprep/internal/practice"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/remote"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/session"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
	"github.com/civicprep/civicprep/internal/syncqueue"
)

// runTUI opens the stores, builds dependencies and launches the terminal UI
// on the start screen. overrides are command flags mapped to config keys.
func runTUI(cmd *cobra.Command, start app.Start, overrides ...map[string]any) error {
	extra := map[string]any{}
	for _, o := range overrides {
		for k, v := range o {
			extra[k] = v
		}
	}
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return err
	}

	dataDir, err := store.DataDir()
	if err != nil {
		return err
	}
	log, logFile, err := logger.SetupFile(dataDir, cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openLocal(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	bank, err := question.Load()
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	rs, err := openRemote(ctx, cfg, log)
	if err != nil {
		log.Warn("remote database unavailable, results will be queued", "error", err)
		fmt.Fprintln(os.Stderr, "Remote database unavailable; results will sync later.")
	}
	if rs != nil {
		defer rs.Close()
	}

	deps := screen.Deps{
		Bank:          bank,
		Answers:       st.AnswerRepo(),
		Deck:          spacedrep.NewDeck(st.CardRepo(), spacedrep.NewFSRS(), log),
		Judge:         newJudge(ctx, cfg, st.EventRepo(), log),
		Saver:         newSaver(st, rs, log),
		UserID:        cfg.User.ID,
		PracticeCount: cfg.Practice.Count,
		WeakRatio:     cfg.Practice.WeakRatio,
		Logger:        log,
	}
	deps.PracticeFocus, _ = practice.ParseFocus(cfg.Practice.Focus)
	if cfg.Practice.Category != "" {
		deps.PracticeCategories = question.ParseCategory(cfg.Practice.Category)
	}
	return app.Run(app.Options{Deps: deps, Start: start})
}

// newJudge builds the interview judge, grading by keywords alone when no
// model is configured.
func newJudge(ctx context.Context, cfg *config.Config, events store.EventRepo, log *slog.Logger) *interview.Judge {
	jc := interview.DefaultJudgeConfig()
	jc.Threshold = cfg.Interview.Threshold

	provider, err := llm.NewProvider(ctx, cfg.LLM, events, log)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		log.Info("LLM provider not configured, grading by keywords only")
	case err != nil:
		log.Warn("LLM provider unavailable, grading by keywords only", "error", err)
	}
	return interview.NewJudge(provider, jc, log)
}

// newSaver wires finished sessions to the remote store, falling back to
// the local sync queue.
func newSaver(st *store.Store, rs *remote.Store, log *slog.Logger) *session.Saver {
	var writer session.ResultWriter
	var uploader syncqueue.Uploader
	if rs != nil {
		writer, uploader = rs, rs
	}
	queue := syncqueue.New(st.PendingRepo(), uploader, syncqueue.WithLogger(log))
	return session.NewSaver(writer, queue, session.WithSaverLogger(log))
}
