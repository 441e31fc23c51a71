package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/api"
	"github.com/civicprep/civicprep/internal/config"
	"github.com/civicprep/civicprep/internal/logger"
	"github.com/civicprep/civicprep/internal/push"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/remote"
	"github.com/civicprep/civicprep/internal/spacedrep"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and push reminder endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]any{}
		if cmd.Flags().Changed("addr") {
			addr, _ := cmd.Flags().GetString("addr")
			overrides["server.addr"] = addr
		}
		cfg, err := loadConfig(cmd, overrides)
		if err != nil {
			return err
		}
		log := logger.Setup(cfg.Log, "json")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openLocal(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		bank, err := question.Load()
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}

		deps := api.Deps{
			Bank:    bank,
			Answers: st.AnswerRepo(),
			Deck:    spacedrep.NewDeck(st.CardRepo(), spacedrep.NewFSRS(), log),
			Judge:   newJudge(ctx, cfg, st.EventRepo(), log),
			Logger:  log,
		}

		rs, err := openRemote(ctx, cfg, log)
		if err != nil {
			return err
		}
		if rs != nil {
			defer rs.Close()
			notifier, closeNotifier, err := newNotifier(ctx, cfg, rs, log)
			switch {
			case errors.Is(err, push.ErrNotConfigured):
				log.Warn("push reminders disabled: VAPID keys not set")
			case err != nil:
				return err
			default:
				defer closeNotifier()
				deps.Reminders = notifier
				deps.Subscriptions = rs
			}
		} else {
			log.Warn("push reminders disabled: no remote database")
		}

		srv, err := api.NewServer(api.Config{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			CronAPIKey:      cfg.Push.CronAPIKey,
			CronSecret:      cfg.Push.CronSecret,
			JWTSecret:       cfg.Auth.JWTSecret,
		}, deps)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

// newNotifier builds the push notifier over the remote subscriptions. Redis
// de-duplication is used when configured; without it every run sends.
func newNotifier(ctx context.Context, cfg *config.Config, rs *remote.Store, log *slog.Logger) (*push.Notifier, func(), error) {
	sender, err := push.NewWebPush(push.Config{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subject:         cfg.Push.Subject,
		TTL:             int(cfg.Push.TTL.Seconds()),
		RatePerSecond:   cfg.Push.RatePerSecond,
	})
	if err != nil {
		return nil, nil, err
	}

	var dedupe push.Deduper
	closeFn := func() {}
	if cfg.Redis.URL != "" {
		rd, err := push.NewRedisDeduper(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, reminders will not be de-duplicated", "error", err)
		} else {
			dedupe = rd
			closeFn = func() {
				if err := rd.Close(); err != nil {
					log.Warn("close redis", "error", err)
				}
			}
		}
	}
	return push.NewNotifier(rs, sender, dedupe, log), closeFn, nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
