package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/citizenhub/internal/models"
)

func (r *SQLiteRepo) UpsertAdmin(ctx context.Context, a *models.Admin) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("admin is nil")
	}

	row := r.conn.QueryRow(ctx, `INSERT INTO admins (email, credential_hash, location, updated) VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET credential_hash = excluded.credential_hash, location = excluded.location, updated = excluded.updated
		RETURNING id`, a.Email, a.CredentialHash, a.Location, now())
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *SQLiteRepo) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, credential_hash, location, updated FROM admins WHERE email = ?`, email)
	var a models.Admin
	if err := row.Scan(&a.ID, &a.Email, &a.CredentialHash, &a.Location, &a.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &a, nil
}

// ListAdminLocations returns the distinct non-empty service locations.
func (r *SQLiteRepo) ListAdminLocations(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT DISTINCT location FROM admins WHERE location <> '' ORDER BY location`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}
