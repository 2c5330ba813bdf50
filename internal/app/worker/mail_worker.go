package worker

import (
	"context"
	"errors"
	"time"

	"coursehub/internal/platform/queue"

	"go.uber.org/zap"
)

type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.MailJob, error)
	Requeue(ctx context.Context, job queue.MailJob) error
}

// Deliverer hands a message to whatever actually sends email.
type Deliverer interface {
	Deliver(ctx context.Context, job queue.MailJob) error
}

// LogDeliverer writes the code to the log instead of sending mail. It is the
// only delivery channel in development.
type LogDeliverer struct {
	Log *zap.SugaredLogger
}

func (d LogDeliverer) Deliver(_ context.Context, job queue.MailJob) error {
	d.Log.Warnw("verification code (development delivery, do not enable in production)",
		"job_id", job.ID, "email", job.Email, "code", job.Code)
	return nil
}

type MailWorker struct {
	source      JobSource
	deliverer   Deliverer
	maxAttempts int
	pollTimeout time.Duration
	log         *zap.SugaredLogger
}

func NewMailWorker(source JobSource, deliverer Deliverer, maxAttempts int, log *zap.SugaredLogger) *MailWorker {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &MailWorker{source: source, deliverer: deliverer, maxAttempts: maxAttempts, pollTimeout: 5 * time.Second, log: log}
}

// Start blocks until ctx is cancelled.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Infow("mail worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Infow("mail worker stopping")
			return
		default:
		}

		job, err := w.source.Pop(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.log.Errorw("failed to pop mail job", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		w.Process(ctx, *job)
	}
}

// Process delivers one job, requeueing it until maxAttempts is reached.
func (w *MailWorker) Process(ctx context.Context, job queue.MailJob) {
	job.Attempts++
	err := w.deliverer.Deliver(ctx, job)
	if err == nil {
		w.log.Debugw("mail job delivered", "job_id", job.ID, "attempts", job.Attempts)
		return
	}
	if job.Attempts >= w.maxAttempts {
		w.log.Errorw("dropping mail job after final attempt", "job_id", job.ID, "email", job.Email, "attempts", job.Attempts, "error", err)
		return
	}
	w.log.Warnw("mail delivery failed, requeueing", "job_id", job.ID, "attempts", job.Attempts, "error", err)
	if rqErr := w.source.Requeue(ctx, job); rqErr != nil {
		w.log.Errorw("failed to requeue mail job", "job_id", job.ID, "error", rqErr)
	}
}
