package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/citizenhub/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrStaleWrite is returned when a conditional update found the row in a
// different state than the caller expected.
var ErrStaleWrite = errors.New("stale write")

// ErrCapacity is returned when an insert would exceed a capacity limit.
var ErrCapacity = errors.New("capacity exhausted")

type PersonRepo interface {
	UpsertPerson(ctx context.Context, p *models.Person) (int64, error)
	GetPersonByAadhaar(ctx context.Context, aadhaarNo string) (*models.Person, error)
}

type AdminRepo interface {
	UpsertAdmin(ctx context.Context, a *models.Admin) (int64, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	ListAdminLocations(ctx context.Context) ([]string, error)
}

type ComplaintRepo interface {
	CreateComplaint(ctx context.Context, c *models.Complaint) (int64, error)
	GetComplaint(ctx context.Context, id int64) (*models.Complaint, error)
	ListComplaints(ctx context.Context) ([]models.Complaint, error)
	ListComplaintsBySubmitter(ctx context.Context, submittedBy string) ([]models.Complaint, error)
	ListComplaintsByLocation(ctx context.Context, location string, status models.ComplaintStatus) ([]models.Complaint, error)
	// TransitionStatus moves a complaint from one status to another and records
	// the event atomically. It returns ErrStaleWrite when the stored status is not from.
	TransitionStatus(ctx context.Context, id int64, from, to models.ComplaintStatus, actor string) error
	SetComplaintLocation(ctx context.Context, id int64, location string) error
	ListComplaintEvents(ctx context.Context, complaintID int64) ([]models.ComplaintEvent, error)
}

type WorkApplicationRepo interface {
	// CreateWorkApplication stores a while fewer than capacity applications exist
	// for the same opportunity, and returns ErrCapacity otherwise.
	CreateWorkApplication(ctx context.Context, a *models.WorkApplication, capacity int) (int64, error)
	CountWorkApplications(ctx context.Context, opportunityID string) (int64, error)
}

type JobRepo interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
	// ReclaimJobs moves jobs in status from that were last touched at or before
	// claimedBefore to status to, and reports how many moved.
	ReclaimJobs(ctx context.Context, from, to string, claimedBefore time.Time) (int64, error)
}
