package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	People     *PersonRepo
	Admins     *AdminRepo
	Complaints *ComplaintRepo
	WorkApps   *WorkApplicationRepo
	Jobs       *JobRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		People:     &PersonRepo{byAadhaar: map[string]*models.Person{}},
		Admins:     &AdminRepo{byEmail: map[string]*models.Admin{}},
		Complaints: &ComplaintRepo{},
		WorkApps:   &WorkApplicationRepo{},
		Jobs:       &JobRepo{},
	}
}

var (
	_ repository.PersonRepo          = (*PersonRepo)(nil)
	_ repository.AdminRepo           = (*AdminRepo)(nil)
	_ repository.ComplaintRepo       = (*ComplaintRepo)(nil)
	_ repository.WorkApplicationRepo = (*WorkApplicationRepo)(nil)
	_ repository.JobRepo             = (*JobRepo)(nil)
)

type PersonRepo struct {
	mu        sync.Mutex
	byAadhaar map[string]*models.Person
	nextID    int64
	GetErr    error
}

func (m *PersonRepo) UpsertPerson(ctx context.Context, p *models.Person) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byAadhaar[p.AadhaarNo]; ok {
		existing.Name, existing.CredentialHash = p.Name, p.CredentialHash
		return existing.ID, nil
	}
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	m.byAadhaar[p.AadhaarNo] = &cp
	return cp.ID, nil
}

func (m *PersonRepo) GetPersonByAadhaar(ctx context.Context, aadhaarNo string) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if p, ok := m.byAadhaar[aadhaarNo]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

type AdminRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.Admin
	nextID  int64
}

func (m *AdminRepo) UpsertAdmin(ctx context.Context, a *models.Admin) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byEmail[a.Email]; ok {
		existing.CredentialHash, existing.Location = a.CredentialHash, a.Location
		return existing.ID, nil
	}
	m.nextID++
	cp := *a
	cp.ID = m.nextID
	m.byEmail[a.Email] = &cp
	return cp.ID, nil
}

func (m *AdminRepo) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byEmail[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *AdminRepo) ListAdminLocations(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, a := range m.byEmail {
		if a.Location != "" && !seen[a.Location] {
			seen[a.Location] = true
			out = append(out, a.Location)
		}
	}
	sort.Strings(out)
	return out, nil
}

type ComplaintRepo struct {
	mu         sync.Mutex
	complaints []models.Complaint
	events     []models.ComplaintEvent
	CreateErr  error
}

func (m *ComplaintRepo) CreateComplaint(ctx context.Context, c *models.Complaint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	cp := *c
	cp.ID = int64(len(m.complaints) + 1)
	if cp.Status == "" {
		cp.Status = models.StatusPending
	}
	cp.Created = time.Now().Unix()
	cp.Updated = cp.Created
	m.complaints = append(m.complaints, cp)
	return cp.ID, nil
}

func (m *ComplaintRepo) GetComplaint(ctx context.Context, id int64) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.complaints {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *ComplaintRepo) filter(keep func(models.Complaint) bool) []models.Complaint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Complaint{}
	for _, c := range m.complaints {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m *ComplaintRepo) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	return m.filter(func(models.Complaint) bool { return true }), nil
}

func (m *ComplaintRepo) ListComplaintsBySubmitter(ctx context.Context, submittedBy string) ([]models.Complaint, error) {
	return m.filter(func(c models.Complaint) bool { return c.SubmittedBy == submittedBy }), nil
}

func (m *ComplaintRepo) ListComplaintsByLocation(ctx context.Context, location string, status models.ComplaintStatus) ([]models.Complaint, error) {
	return m.filter(func(c models.Complaint) bool {
		return c.Status == status && strings.EqualFold(c.Location, location)
	}), nil
}

func (m *ComplaintRepo) TransitionStatus(ctx context.Context, id int64, from, to models.ComplaintStatus, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.complaints {
		if m.complaints[i].ID != id {
			continue
		}
		if m.complaints[i].Status != from {
			return repository.ErrStaleWrite
		}
		m.complaints[i].Status = to
		m.complaints[i].Updated = time.Now().Unix()
		m.events = append(m.events, models.ComplaintEvent{
			ID: int64(len(m.events) + 1), ComplaintID: id, From: from, To: to, Actor: actor, Created: m.complaints[i].Updated,
		})
		return nil
	}
	return repository.ErrStaleWrite
}

func (m *ComplaintRepo) SetComplaintLocation(ctx context.Context, id int64, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.complaints {
		if m.complaints[i].ID == id {
			m.complaints[i].Location = location
		}
	}
	return nil
}

func (m *ComplaintRepo) ListComplaintEvents(ctx context.Context, complaintID int64) ([]models.ComplaintEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ComplaintEvent{}
	for _, e := range m.events {
		if e.ComplaintID == complaintID {
			out = append(out, e)
		}
	}
	return out, nil
}

type WorkApplicationRepo struct {
	mu     sync.Mutex
	Stored []models.WorkApplication
}

func (m *WorkApplicationRepo) CreateWorkApplication(ctx context.Context, a *models.WorkApplication, capacity int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Stored {
		if s.OpportunityID == a.OpportunityID {
			n++
		}
	}
	if n >= capacity {
		return 0, repository.ErrCapacity
	}
	cp := *a
	cp.ID = int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, cp)
	return cp.ID, nil
}

func (m *WorkApplicationRepo) CountWorkApplications(ctx context.Context, opportunityID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.Stored {
		if s.OpportunityID == opportunityID {
			n++
		}
	}
	return n, nil
}

// JobRepo records enqueued jobs; FetchNext hands them out in FIFO order.
type JobRepo struct {
	mu         sync.Mutex
	Enqueued   []models.BackgroundJob
	Updated    []models.BackgroundJob
	DeadLetter []models.BackgroundJob
	EnqueueErr error
}

func (m *JobRepo) Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnqueueErr != nil {
		return 0, m.EnqueueErr
	}
	cp := *j
	cp.ID = int64(len(m.Enqueued) + 1)
	if cp.Status == "" {
		cp.Status = "queued"
	}
	m.Enqueued = append(m.Enqueued, cp)
	return cp.ID, nil
}

func (m *JobRepo) FetchNext(ctx context.Context) (*models.BackgroundJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i := range m.Enqueued {
		j := m.Enqueued[i]
		if (j.Status == "queued" || j.Status == "retry") && (j.NextTryAt == nil || !j.NextTryAt.After(now)) {
			m.Enqueued[i].Status = "running"
			m.Enqueued[i].Updated = now
			cp := m.Enqueued[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *JobRepo) UpdateJob(ctx context.Context, j *models.BackgroundJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Enqueued {
		if m.Enqueued[i].ID == j.ID {
			m.Enqueued[i] = *j
		}
	}
	m.Updated = append(m.Updated, *j)
	return nil
}

func (m *JobRepo) MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Enqueued {
		if m.Enqueued[i].ID == j.ID {
			m.Enqueued[i].Status = "dead"
		}
	}
	m.DeadLetter = append(m.DeadLetter, *j)
	return nil
}

func (m *JobRepo) ReclaimJobs(ctx context.Context, from, to string, claimedBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.Enqueued {
		j := &m.Enqueued[i]
		if j.Status == from && !j.Updated.After(claimedBefore) {
			j.Status = to
			j.NextTryAt = nil
			n++
		}
	}
	return n, nil
}

// Snapshot returns copies of the recorded jobs, updates and dead letters.
func (m *JobRepo) Snapshot() (enqueued, updated, dead []models.BackgroundJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	enqueued = append([]models.BackgroundJob(nil), m.Enqueued...)
	updated = append([]models.BackgroundJob(nil), m.Updated...)
	dead = append([]models.BackgroundJob(nil), m.DeadLetter...)
	return enqueued, updated, dead
}
