// Package complaints implements grievance submission, the admin work queue
// and the complaint status lifecycle.
package complaints

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/citizenhub/internal/jobs"
	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("complaint not found")
	ErrForbidden         = errors.New("complaint outside admin location")
)

// RouteJobType is the background job that assigns a location to a new complaint.
const RouteJobType = "complaint.route"

type Service struct {
	complaints repository.ComplaintRepo
	admins     repository.AdminRepo
	jobs       repository.JobRepo
	logger     *slog.Logger
}

func NewService(complaints repository.ComplaintRepo, admins repository.AdminRepo, jobRepo repository.JobRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{complaints: complaints, admins: admins, jobs: jobRepo, logger: logger}
}

type routePayload struct {
	ComplaintID int64 `json:"complaintId"`
}

// normalize trims every free-text field and clears the server-owned ones.
func normalize(c models.Complaint) models.Complaint {
	out := models.Complaint{
		FullName:            strings.TrimSpace(c.FullName),
		ContactNumber:       strings.TrimSpace(c.ContactNumber),
		EmailAddress:        strings.TrimSpace(c.EmailAddress),
		Category:            strings.TrimSpace(c.Category),
		Address:             strings.TrimSpace(c.Address),
		ComplaintTitle:      strings.TrimSpace(c.ComplaintTitle),
		IncidentLocation:    strings.TrimSpace(c.IncidentLocation),
		DetailedDescription: strings.TrimSpace(c.DetailedDescription),
	}
	return out
}

func validate(c models.Complaint) error {
	required := []struct {
		name, value string
	}{
		{"Full_Name", c.FullName},
		{"Contact_Number", c.ContactNumber},
		{"Complaint_Title", c.ComplaintTitle},
		{"Detailed_Description", c.DetailedDescription},
		{"Category", c.Category},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// Submit stores a complaint on behalf of submittedBy with status pending and
// queues its routing job. A failed enqueue is logged; the complaint stays
// stored without a location.
func (s *Service) Submit(ctx context.Context, submittedBy string, in models.Complaint) (int64, error) {
	c := normalize(in)
	if err := validate(c); err != nil {
		return 0, err
	}
	c.SubmittedBy = submittedBy
	c.Status = models.StatusPending

	id, err := s.complaints.CreateComplaint(ctx, &c)
	if err != nil {
		return 0, fmt.Errorf("create complaint: %w", err)
	}
	if _, err := jobs.Enqueue(ctx, s.jobs, RouteJobType, routePayload{ComplaintID: id}, 10, 5); err != nil {
		s.logger.Error("enqueue complaint routing", "err", err, "complaint_id", id)
	}
	return id, nil
}

// List returns every complaint.
func (s *Service) List(ctx context.Context) ([]models.Complaint, error) {
	return s.complaints.ListComplaints(ctx)
}

// ListMine returns the complaints submitted by subject.
func (s *Service) ListMine(ctx context.Context, subject string) ([]models.Complaint, error) {
	return s.complaints.ListComplaintsBySubmitter(ctx, subject)
}

func (s *Service) admin(ctx context.Context, email string) (*models.Admin, error) {
	a, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if a == nil {
		return nil, ErrForbidden
	}
	return a, nil
}

// ListForAdmin returns the pending complaints in the calling admin's location.
func (s *Service) ListForAdmin(ctx context.Context, adminEmail string) ([]models.Complaint, error) {
	a, err := s.admin(ctx, adminEmail)
	if err != nil {
		return nil, err
	}
	if a.Location == "" {
		return []models.Complaint{}, nil
	}
	return s.complaints.ListComplaintsByLocation(ctx, a.Location, models.StatusPending)
}

// UpdateStatus moves complaint id to status to on behalf of an admin and
// returns the updated record.
func (s *Service) UpdateStatus(ctx context.Context, adminEmail string, id int64, to models.ComplaintStatus) (*models.Complaint, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	c, err := s.complaints.GetComplaint(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	a, err := s.admin(ctx, adminEmail)
	if err != nil {
		return nil, err
	}
	if a.Location == "" || !strings.EqualFold(a.Location, c.Location) {
		return nil, ErrForbidden
	}
	if Terminal(c.Status) {
		return nil, fmt.Errorf("%w: complaint is already %s", ErrInvalidTransition, c.Status)
	}
	if !CanTransition(c.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.Status, to)
	}

	err = s.complaints.TransitionStatus(ctx, id, c.Status, to, a.Email)
	if errors.Is(err, repository.ErrStaleWrite) {
		// someone else moved it first
		return nil, fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, c.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("transition status: %w", err)
	}
	s.logger.Info("complaint status changed", "complaint_id", id, "from", c.Status, "to", to, "actor", a.Email)

	c.Status = to
	return c, nil
}

// Events returns the status history of complaint id.
func (s *Service) Events(ctx context.Context, id int64) ([]models.ComplaintEvent, error) {
	c, err := s.complaints.GetComplaint(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return s.complaints.ListComplaintEvents(ctx, id)
}
