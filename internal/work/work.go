// Package work runs the elderly skills marketplace: it lists opportunities
// with their remaining slots and records applications against them.
package work

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

var (
	ErrNotFound           = errors.New("opportunity not found")
	ErrNoSlots            = errors.New("no slots left for this opportunity")
	ErrInvalidApplication = errors.New("invalid application")
)

// Application is the form a senior citizen submits.
type Application struct {
	FullName         string   `json:"fullName"`
	Age              string   `json:"age"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email"`
	Address          string   `json:"address"`
	Experience       string   `json:"experience"`
	Availability     []string `json:"availability"`
	WhyInterested    string   `json:"whyInterested"`
	AdditionalSkills string   `json:"additionalSkills,omitempty"`
	References       string   `json:"references,omitempty"`
}

type Service struct {
	store  *catalog.Store
	apps   repository.WorkApplicationRepo
	logger *slog.Logger
}

func NewService(store *catalog.Store, apps repository.WorkApplicationRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, apps: apps, logger: logger}
}

// Opportunities lists the marketplace, optionally filtered by category, with
// SlotsAvailable reduced by the applications already stored.
func (s *Service) Opportunities(ctx context.Context, category string) ([]catalog.WorkOpportunity, error) {
	list := s.store.Opportunities(category)
	for i := range list {
		taken, err := s.apps.CountWorkApplications(ctx, list[i].ID)
		if err != nil {
			return nil, fmt.Errorf("count applications: %w", err)
		}
		list[i].SlotsAvailable = remaining(list[i].SlotsAvailable, taken)
	}
	return list, nil
}

func remaining(slots int, taken int64) int {
	left := int64(slots) - taken
	if left < 0 {
		return 0
	}
	return int(left)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidApplication, fmt.Sprintf(format, args...))
}

func minLen(s string, n int) bool {
	return utf8.RuneCountInString(s) >= n
}

// Validate checks the application against the opportunity it targets.
func (a *Application) Validate(op catalog.WorkOpportunity) error {
	switch {
	case !minLen(a.FullName, 2):
		return invalid("full name must be at least 2 characters")
	case a.Age == "":
		return invalid("age is required")
	case !minLen(a.Phone, 10):
		return invalid("phone must be at least 10 characters")
	case !minLen(a.Address, 10):
		return invalid("address must be at least 10 characters")
	case a.Experience == "":
		return invalid("experience is required")
	case len(a.Availability) == 0:
		return invalid("select at least one time slot")
	case !minLen(a.WhyInterested, 20):
		return invalid("tell us why you are interested in at least 20 characters")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil || !strings.Contains(a.Email, "@") {
		return invalid("email %q is not valid", a.Email)
	}
	seen := map[string]bool{}
	for _, slot := range a.Availability {
		if !op.HasTimeSlot(slot) {
			return invalid("time slot %q is not offered", slot)
		}
		if seen[slot] {
			return invalid("time slot %q selected twice", slot)
		}
		seen[slot] = true
	}
	return nil
}

func (a *Application) trim() {
	for _, f := range []*string{&a.FullName, &a.Age, &a.Phone, &a.Email, &a.Address, &a.Experience, &a.WhyInterested, &a.AdditionalSkills, &a.References} {
		*f = strings.TrimSpace(*f)
	}
}

// NewReference returns an application reference of the form APP-XXXXXXXX.
func NewReference() string {
	return "APP-" + strings.ToUpper(uuid.NewString()[:8])
}

// Apply validates and stores an application for opportunityID. submittedBy is
// the citizen id when the caller presented a token, and empty otherwise.
func (s *Service) Apply(ctx context.Context, opportunityID, submittedBy string, in Application) (*models.WorkApplication, error) {
	op, ok := s.store.Opportunity(opportunityID)
	if !ok {
		return nil, ErrNotFound
	}
	in.trim()
	if err := in.Validate(op); err != nil {
		return nil, err
	}

	app := &models.WorkApplication{
		Reference:        NewReference(),
		OpportunityID:    op.ID,
		FullName:         in.FullName,
		Age:              in.Age,
		Phone:            in.Phone,
		Email:            in.Email,
		Address:          in.Address,
		Experience:       in.Experience,
		Availability:     in.Availability,
		WhyInterested:    in.WhyInterested,
		AdditionalSkills: in.AdditionalSkills,
		References:       in.References,
		SubmittedBy:      submittedBy,
	}
	id, err := s.apps.CreateWorkApplication(ctx, app, op.SlotsAvailable)
	if errors.Is(err, repository.ErrCapacity) {
		return nil, ErrNoSlots
	}
	if err != nil {
		return nil, fmt.Errorf("store application: %w", err)
	}
	app.ID = id
	s.logger.Info("work application stored", "reference", app.Reference, "opportunity_id", op.ID)
	return app, nil
}
