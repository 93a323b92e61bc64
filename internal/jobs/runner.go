package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
)

// Job is one unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type queued struct {
	job     Job
	attempt int
}

// Runner executes background jobs off a channel with bounded retries.
// Transient failures back off exponentially (1s, 2s, 4s by default);
// permanent failures are discarded after one run.
type Runner struct {
	MaxAttempts int
	BaseDelay   time.Duration

	jobs   chan queued
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		jobs:        make(chan queued, 128),
		logger:      logger,
	}
}

// Enqueue submits a job. Never blocks: a full queue drops the job with a
// warning rather than stalling the caller.
func (r *Runner) Enqueue(job Job) {
	select {
	case r.jobs <- queued{job: job, attempt: 1}:
	default:
		r.logger.Warn("job queue full, dropping", "job", job.Name)
	}
}

// Run consumes jobs until the context is cancelled. Single consumer; jobs
// for the same resource never race each other.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-r.jobs:
			r.execute(ctx, q)
		}
	}
}

func (r *Runner) execute(ctx context.Context, q queued) {
	err := q.job.Run(ctx)
	if err == nil {
		return
	}
	if !Retryable(err) {
		r.logger.Warn("job failed permanently, discarding", "job", q.job.Name, "err", err)
		return
	}
	if q.attempt >= r.MaxAttempts {
		r.logger.Error("job exhausted retries", "job", q.job.Name, "attempts", q.attempt, "err", err)
		return
	}

	delay := r.BaseDelay << (q.attempt - 1)
	r.logger.Warn("job failed, retrying", "job", q.job.Name, "attempt", q.attempt, "delay", delay, "err", err)
	next := queued{job: q.job, attempt: q.attempt + 1}
	time.AfterFunc(delay, func() {
		select {
		case r.jobs <- next:
		default:
			r.logger.Warn("job queue full, dropping retry", "job", q.job.Name)
		}
	})
}

// Retryable classifies a job failure. Rate limits, server-side gateway
// errors and timeouts retry; everything else (not-found records, validation
// rejections) is permanent.
func Retryable(err error) bool {
	var apiErr *freshbooks.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
