package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/app"
	"github.com/civicprep/civicprep/internal/config"
	"github.com/civicprep/civicprep/internal/remote"
	"github.com/civicprep/civicprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "civicprep",
	Short: "Bilingual US civics test practice",
	Long: "civicprep helps Burmese-speaking applicants prepare for the US naturalization\n" +
		"civics test with spaced review, practice sessions, mock tests and a mock interview.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.StartHome)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CIVICPREP_DB)")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration with the persistent flags applied on top.
// extra holds command-specific overrides keyed by dotted path.
func loadConfig(cmd *cobra.Command, extra map[string]any) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	overrides := map[string]any{}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		overrides["data.db_path"] = p
	}
	for k, v := range extra {
		overrides[k] = v
	}
	cfg, err := config.Load(config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path from config (--db or
// CIVICPREP_DATA_DB_PATH), then CIVICPREP_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Data.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openLocal opens the learner's SQLite database.
func openLocal(cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st.WithLogger(logger), nil
}

// openRemote connects to the shared Postgres database. It returns nil and
// no error when none is configured.
func openRemote(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*remote.Store, error) {
	pc := remote.DefaultPoolConfig()
	if cfg.Remote.MaxConns > 0 {
		pc.MaxConns = cfg.Remote.MaxConns
	}
	rs, err := remote.Open(ctx, cfg.Remote.DatabaseURL, pc, logger)
	if errors.Is(err, remote.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connect to remote database: %w", err)
	}
	return rs, nil
}

// requireRemote is openRemote for commands that cannot work without it.
func requireRemote(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*remote.Store, error) {
	rs, err := openRemote(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		return nil, fmt.Errorf("%w: set CIVICPREP_REMOTE_DATABASE_URL", remote.ErrNotConfigured)
	}
	return rs, nil
}
