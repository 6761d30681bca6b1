package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

const complaintColumns = `id, full_name, contact_number, email_address, category, address, complaint_title,
	incident_location, detailed_description, status, location, submitted_by, created, updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(s rowScanner) (models.Complaint, error) {
	var c models.Complaint
	err := s.Scan(&c.ID, &c.FullName, &c.ContactNumber, &c.EmailAddress, &c.Category, &c.Address, &c.ComplaintTitle,
		&c.IncidentLocation, &c.DetailedDescription, &c.Status, &c.Location, &c.SubmittedBy, &c.Created, &c.Updated)
	return c, err
}

func (r *SQLiteRepo) CreateComplaint(ctx context.Context, c *models.Complaint) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("complaint is nil")
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO complaints (full_name, contact_number, email_address, category, address, complaint_title,
		incident_location, detailed_description, status, location, submitted_by, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.FullName, c.ContactNumber, c.EmailAddress, c.Category, c.Address, c.ComplaintTitle,
		c.IncidentLocation, c.DetailedDescription, c.Status, c.Location, c.SubmittedBy, ts, ts)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID, c.Created, c.Updated = id, ts, ts
	return id, nil
}

func (r *SQLiteRepo) GetComplaint(ctx context.Context, id int64) (*models.Complaint, error) {
	c, err := scanComplaint(r.conn.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepo) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	return r.listComplaints(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY id`)
}

func (r *SQLiteRepo) ListComplaintsBySubmitter(ctx context.Context, submittedBy string) ([]models.Complaint, error) {
	return r.listComplaints(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE submitted_by = ? ORDER BY id`, submittedBy)
}

func (r *SQLiteRepo) ListComplaintsByLocation(ctx context.Context, location string, status models.ComplaintStatus) ([]models.Complaint, error) {
	return r.listComplaints(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE location = ? COLLATE NOCASE AND status = ? ORDER BY id`, location, status)
}

func (r *SQLiteRepo) listComplaints(ctx context.Context, query string, args ...any) ([]models.Complaint, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) TransitionStatus(ctx context.Context, id int64, from, to models.ComplaintStatus, actor string) error {
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		res, err := tx.ExecContext(ctx, `UPDATE complaints SET status = ?, updated = ? WHERE id = ? AND status = ?`, to, ts, id, from)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrStaleWrite
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO complaint_events (complaint_id, from_status, to_status, actor, created) VALUES (?, ?, ?, ?, ?)`,
			id, from, to, actor, ts); err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepo) SetComplaintLocation(ctx context.Context, id int64, location string) error {
	_, err := r.conn.Exec(ctx, `UPDATE complaints SET location = ?, updated = ? WHERE id = ?`, location, now(), id)
	return err
}

func (r *SQLiteRepo) ListComplaintEvents(ctx context.Context, complaintID int64) ([]models.ComplaintEvent, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, complaint_id, from_status, to_status, actor, created FROM complaint_events WHERE complaint_id = ? ORDER BY id`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ComplaintEvent{}
	for rows.Next() {
		var e models.ComplaintEvent
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.From, &e.To, &e.Actor, &e.Created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
