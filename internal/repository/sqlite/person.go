package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/citizenhub/internal/models"
)

// UpsertPerson inserts a citizen or rotates the stored credential of an existing one.
func (r *SQLiteRepo) UpsertPerson(ctx context.Context, p *models.Person) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("person is nil")
	}

	row := r.conn.QueryRow(ctx, `INSERT INTO people (aadhaar_no, name, credential_hash, updated) VALUES (?, ?, ?, ?)
		ON CONFLICT(aadhaar_no) DO UPDATE SET name = excluded.name, credential_hash = excluded.credential_hash, updated = excluded.updated
		RETURNING id`, p.AadhaarNo, p.Name, p.CredentialHash, now())
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *SQLiteRepo) GetPersonByAadhaar(ctx context.Context, aadhaarNo string) (*models.Person, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, aadhaar_no, name, credential_hash, updated FROM people WHERE aadhaar_no = ?`, aadhaarNo)
	var p models.Person
	if err := row.Scan(&p.ID, &p.AadhaarNo, &p.Name, &p.CredentialHash, &p.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}
