// Package worker delivers queued notifications to connected clients.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/pkg/queue"
)

// Jobs is the queue the deliverer consumes.
type Jobs interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Sender pushes a notification to its recipient, e.g. a realtime.Hub
// publishing through Redis.
type Sender interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// NotificationDeliverer processes notification jobs: decode, deliver, retry on failure.
type NotificationDeliverer struct {
	jobs    Jobs
	sender  Sender
	logger  *zap.Logger
	backoff time.Duration
}

// NewNotificationDeliverer creates a notification delivery processor.
func NewNotificationDeliverer(jobs Jobs, sender Sender, logger *zap.Logger) *NotificationDeliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDeliverer{jobs: jobs, sender: sender, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one notification job.
func (p *NotificationDeliverer) Process(ctx context.Context, job *queue.Job) error {
	n, err := job.Notification()
	if err != nil {
		return err
	}
	if n.UserID == "" {
		p.logger.Warn("notification without recipient dropped", zap.String("notification_id", n.ID))
		return nil
	}
	if err := p.sender.Dispatch(ctx, n); err != nil {
		return fmt.Errorf("deliver %s: %w", n.ID, err)
	}
	p.logger.Info("notification delivered", zap.String("notification_id", n.ID), zap.String("user_id", n.UserID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationDeliverer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, _, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.jobs.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *NotificationDeliverer) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
