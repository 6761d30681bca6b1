package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

func (r *SQLiteRepo) CreateWorkApplication(ctx context.Context, a *models.WorkApplication, capacity int) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("application is nil")
	}
	availability, err := json.Marshal(a.Availability)
	if err != nil {
		return 0, fmt.Errorf("encode availability: %w", err)
	}

	var id int64
	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		var taken int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM work_applications WHERE opportunity_id = ?`, a.OpportunityID).Scan(&taken); err != nil {
			return err
		}
		if taken >= capacity {
			return repository.ErrCapacity
		}

		ts := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO work_applications (reference, opportunity_id, full_name, age, phone, email, address,
			experience, availability, why_interested, additional_skills, refs, submitted_by, created)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Reference, a.OpportunityID, a.FullName, a.Age, a.Phone, a.Email, a.Address,
			a.Experience, string(availability), a.WhyInterested, a.AdditionalSkills, a.References, a.SubmittedBy, ts)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		a.ID, a.Created = id, ts
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepo) CountWorkApplications(ctx context.Context, opportunityID string) (int64, error) {
	var n int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM work_applications WHERE opportunity_id = ?`, opportunityID).Scan(&n)
	return n, err
}
