// Command citizenctl is the operator tool for a citizenhub deployment: schema
// migrations, account seeding, database backups and offline eligibility checks.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/garnizeh/citizenhub/internal/config"
	"github.com/garnizeh/citizenhub/internal/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "citizenctl",
		Short:        "Operate a citizenhub deployment",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config YAML file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newBackupCmd(opts),
		newRestoreCmd(opts),
		newHashCmd(),
		newEligibilityCmd(opts),
	)
	return root
}

// logger writes to stderr so command output stays clean on stdout.
func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = cmd.ErrOrStderr()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *options) config() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openDB opens the configured database; the caller closes it.
func (o *options) openDB(ctx context.Context, cmd *cobra.Command) (*config.Config, *db.DB, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	d, err := db.New(ctx, cfg.DatabasePath, o.logger(cmd))
	if err != nil {
		return nil, nil, err
	}
	return cfg, d, nil
}
