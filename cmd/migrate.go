package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply remote database migrations",
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

		version, err := rs.Migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Remote schema at version %d\n", version)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List remote migrations and whether they are applied",
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

		statuses, err := rs.MigrationStatuses(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%-16s  %-8s  %s\n", "Version", "Applied", "File")
		fmt.Println(strings.Repeat("─", 60))
		for _, s := range statuses {
			applied := "no"
			if s.Applied {
				applied = "yes"
			}
			fmt.Printf("%-16d  %-8s  %s\n", s.Version, applied, s.Path)
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}
