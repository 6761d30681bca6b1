package complaints

import "github.com/garnizeh/citizenhub/internal/models"

// transitions lists the statuses reachable from each status. Resolved and
// rejected complaints are closed for good.
var transitions = map[models.ComplaintStatus][]models.ComplaintStatus{
	models.StatusPending:  {models.StatusInReview, models.StatusRejected},
	models.StatusInReview: {models.StatusResolved, models.StatusRejected, models.StatusPending},
}

// CanTransition reports whether a complaint may move from one status to another.
func CanTransition(from, to models.ComplaintStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func Terminal(s models.ComplaintStatus) bool {
	return len(transitions[s]) == 0
}
