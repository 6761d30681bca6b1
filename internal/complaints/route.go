package complaints

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garnizeh/citizenhub/internal/jobs"
	"github.com/garnizeh/citizenhub/internal/models"
)

// MatchLocation picks the admin service location named in the complaint.
// The incident location is consulted before the address, and the longest
// matching location wins. It returns "" when nothing matches.
func MatchLocation(c models.Complaint, locations []string) string {
	for _, text := range []string{c.IncidentLocation, c.Address} {
		text = strings.ToLower(text)
		if text == "" {
			continue
		}
		best := ""
		for _, loc := range locations {
			l := strings.ToLower(strings.TrimSpace(loc))
			if l == "" || !strings.Contains(text, l) {
				continue
			}
			if len(loc) > len(best) {
				best = loc
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}

// RouteHandler returns the job handler for RouteJobType.
func (s *Service) RouteHandler() jobs.Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var p routePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil || p.ComplaintID == 0 {
			return fmt.Errorf("%w: bad route payload %q", jobs.ErrPermanent, j.Payload)
		}
		c, err := s.complaints.GetComplaint(ctx, p.ComplaintID)
		if err != nil {
			return fmt.Errorf("get complaint: %w", err)
		}
		if c == nil {
			return fmt.Errorf("%w: complaint %d not found", jobs.ErrPermanent, p.ComplaintID)
		}
		if c.Location != "" {
			return nil
		}

		locations, err := s.admins.ListAdminLocations(ctx)
		if err != nil {
			return fmt.Errorf("list admin locations: %w", err)
		}
		loc := MatchLocation(*c, locations)
		if loc == "" {
			s.logger.Info("complaint left unrouted", "complaint_id", c.ID)
			return nil
		}
		if err := s.complaints.SetComplaintLocation(ctx, c.ID, loc); err != nil {
			return fmt.Errorf("set complaint location: %w", err)
		}
		s.logger.Info("complaint routed", "complaint_id", c.ID, "location", loc)
		return nil
	}
}
