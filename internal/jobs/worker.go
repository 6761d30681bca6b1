package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/citizenhub/internal/models"
	"github.com/garnizeh/citizenhub/pkg/repository"
)

// settleTimeout bounds the status write after a handler returns. The write
// outlives pool cancellation so an interrupted job is not left running.
const settleTimeout = 5 * time.Second

// WorkerPool runs handlers for queued jobs on a fixed number of goroutines.
type WorkerPool struct {
	repo        repository.JobRepo
	handlers    map[string]Handler
	logger      *slog.Logger
	workerCount int
	idle        time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewWorkerPool(repo repository.JobRepo, handlers map[string]Handler, logger *slog.Logger, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		repo:        repo,
		handlers:    handlers,
		logger:      logger,
		workerCount: workerCount,
		idle:        500 * time.Millisecond,
		stop:        make(chan struct{}),
	}
}

// SetIdleInterval changes how long a worker waits when the queue is empty.
func (p *WorkerPool) SetIdleInterval(d time.Duration) {
	if d > 0 {
		p.idle = d
	}
}

// Start requeues jobs left running by an earlier process and launches the
// worker goroutines.
func (p *WorkerPool) Start(ctx context.Context) {
	p.reclaim(ctx)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them. It is safe to call more than once.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// Run starts the pool and blocks until ctx is cancelled, then drains the workers.
func (p *WorkerPool) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return nil
}

// reclaim hands jobs claimed before this pool started back to the queue.
// Workers have not started yet, so every running row is orphaned.
func (p *WorkerPool) reclaim(ctx context.Context) {
	n, err := p.repo.ReclaimJobs(ctx, StatusRunning, StatusRetry, time.Now())
	if err != nil {
		p.logger.Error("reclaim interrupted jobs", "err", err)
		return
	}
	if n > 0 {
		p.logger.Warn("requeued interrupted jobs", "count", n)
	}
}

// wait sleeps for d unless the pool is stopping. It reports false when the worker should exit.
func (p *WorkerPool) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.stop:
		return false
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Info("worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Info("context canceled, worker exiting", "id", id)
			return
		default:
		}

		job, err := p.repo.FetchNext(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Error("fetch job", "err", err)
			}
			if !p.wait(ctx, time.Second) {
				return
			}
			continue
		}
		if job == nil {
			// nothing to do
			if !p.wait(ctx, p.idle) {
				return
			}
			continue
		}
		p.process(ctx, job)
	}
}

func (p *WorkerPool) process(ctx context.Context, job *models.BackgroundJob) {
	h, ok := p.handlers[job.Type]
	if !ok {
		job.Status = StatusFailed
		job.LastError = "no handler"
		p.deadLetter(ctx, job)
		return
	}

	// run handler with context and cancellation
	err := p.safeRun(ctx, h, job)
	if err == nil {
		job.Status = StatusDone
		job.LastError = ""
		p.update(ctx, job, "update finished job")
		return
	}

	if ctx.Err() != nil {
		// shutdown interrupted the handler; the attempt does not count
		job.Status = StatusRetry
		job.NextTryAt = nil
		job.LastError = err.Error()
		p.logger.Info("job interrupted, requeued", "job_id", job.ID, "type", job.Type)
		p.update(ctx, job, "requeue interrupted job")
		return
	}

	// handler returned error
	job.Attempts++
	job.LastError = err.Error()
	if job.Attempts >= job.MaxAttempts || errors.Is(err, ErrPermanent) {
		// move to dead letter
		job.Status = StatusFailed
		p.logger.Warn("job failed permanently", "job_id", job.ID, "type", job.Type, "attempts", job.Attempts, "err", err)
		p.deadLetter(ctx, job)
		return
	}

	// schedule retry with backoff
	backoff := BackoffDuration(job.Attempts)
	t := time.Now().Add(backoff)
	job.NextTryAt = &t
	job.Status = StatusRetry
	p.logger.Info("job scheduled for retry", "job_id", job.ID, "type", job.Type, "attempt", job.Attempts, "backoff", backoff)
	p.update(ctx, job, "update job for retry")
}

func (p *WorkerPool) update(ctx context.Context, job *models.BackgroundJob, msg string) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()
	if err := p.repo.UpdateJob(wctx, job); err != nil {
		p.logger.Error(msg, "err", err, "job_id", job.ID)
	}
}

func (p *WorkerPool) deadLetter(ctx context.Context, job *models.BackgroundJob) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()
	if err := p.repo.MoveToDeadLetter(wctx, job); err != nil {
		p.logger.Error("move to dead letter", "err", err, "job_id", job.ID)
	}
}

func (p *WorkerPool) safeRun(ctx context.Context, h Handler, job *models.BackgroundJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}

// Enqueue persists a job of type typ with a JSON payload.
func Enqueue(ctx context.Context, repo repository.JobRepo, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	j := &models.BackgroundJob{Type: typ, Payload: b, Status: StatusQueued, Priority: priority, MaxAttempts: maxAttempts, ScheduledAt: time.Now()}
	return repo.Enqueue(ctx, j)
}
