package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	dbfs "github.com/garnizeh/citizenhub/db"
	"github.com/garnizeh/citizenhub/internal/db"
	"github.com/garnizeh/citizenhub/internal/repository/sqlite"
	"github.com/garnizeh/citizenhub/internal/seed"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, d, err := opts.openDB(ctx, cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated.")
			return nil
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update citizen and admin accounts from a YAML fixture",
		Long: `Create or update citizen and admin accounts from a YAML fixture.

Credentials are hashed with bcrypt before they are stored. Without --file the
fixture embedded in the binary is used, or seed_path from the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, d, err := opts.openDB(ctx, cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
				return err
			}

			path := file
			if path == "" {
				path = cfg.SeedPath
			}
			fx, err := seed.Load(path)
			if err != nil {
				return err
			}
			repo := sqlite.New(d, opts.logger(cmd))
			res, err := seed.Apply(ctx, repo, repo, fx, opts.logger(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d citizens and %d admins.\n", res.People, res.Admins)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed fixture YAML file")
	return cmd
}

func newBackupCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, d, err := opts.openDB(ctx, cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			if out == "" {
				out = fmt.Sprintf("%s.%s.bak", cfg.DatabasePath, time.Now().UTC().Format("20060102T150405Z"))
			}
			if err := db.Backup(ctx, d, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database backup written to %s.\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Backup file (default: <database_path>.<timestamp>.bak)")
	return cmd
}

func newRestoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the database with a backup (stop the server first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if err := db.Restore(cmd.Context(), args[0], cfg.DatabasePath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database restored from %s.\n", args[0])
			return nil
		},
	}
}
