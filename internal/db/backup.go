package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Backup writes a consistent copy of the open database to dst. dst must not exist.
func Backup(ctx context.Context, d *DB, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("backup target %s already exists", dst)
	}
	if _, err := d.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("backup to %s: %w", dst, err)
	}
	d.logger.Info("db: backup written", "path", dst)
	return nil
}

// Restore replaces the database file at dst with the backup at src after
// checking that src is a healthy SQLite database. The server must be stopped.
func Restore(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	check, err := New(ctx, src, nil)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	var result string
	err = check.QueryRow(ctx, `PRAGMA integrity_check`).Scan(&result)
	check.Close()
	if err != nil {
		return fmt.Errorf("check backup: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup %s failed integrity check: %s", src, result)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".restore-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		return errors.Join(err, tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(err, os.Remove(tmp.Name()))
	}
	// stale WAL files would be replayed over the restored data
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dst + suffix); err != nil && !os.IsNotExist(err) {
			return errors.Join(err, os.Remove(tmp.Name()))
		}
	}
	return os.Rename(tmp.Name(), dst)
}
