// Package jobs runs background work from a persistent queue. Failed jobs are
// retried with exponential backoff and moved to a dead letter table once they
// run out of attempts.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/citizenhub/internal/models"
)

// Job statuses stored in the jobs table.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusRetry   = "retry"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Handler is the function that processes a job
type Handler func(ctx context.Context, j *models.BackgroundJob) error

// ErrPermanent marks a handler failure that retrying cannot fix. Wrap it to
// send the job straight to the dead letter table.
var ErrPermanent = errors.New("permanent job failure")

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	if attempt > 16 {
		attempt = 16
	}
	// simple exponential: base 2^attempt seconds, capped
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}
