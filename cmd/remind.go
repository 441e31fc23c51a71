package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/logger"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send review reminders to every subscriber with cards due",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		log := logger.Setup(cfg.Log, "text")
		ctx := cmd.Context()

		rs, err := requireRemote(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer rs.Close()

		notifier, closeNotifier, err := newNotifier(ctx, cfg, rs, log)
		if err != nil {
			return err
		}
		defer closeNotifier()

		report, err := notifier.RemindDue(ctx, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Notified %d, errors %d\n", report.Notified, report.Errors)
		return nil
	},
}
