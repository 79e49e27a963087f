// Package notify decouples citizen notification delivery from the request
// path. Services emit messages onto an in-process queue; workers turn them
// into inbox rows. Emission never blocks and never fails the calling
// operation.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/config"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/jobs"
)

// Message is a notification addressed to a citizen's inbox.
type Message struct {
	CitizenID string
	Title     string
	Body      string
	Kind      models.NotificationKind
}

// Emitter accepts fire-and-forget notification emissions.
type Emitter interface {
	Emit(ctx context.Context, msg Message)
}

// Store persists delivered notifications.
type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Metrics counts notification outcomes.
type Metrics interface {
	RecordNotification(outcome string)
}

// QueueEmitter delivers messages through a background worker pool. Failed
// deliveries are retried by the queue and eventually dropped with a log line;
// they never propagate to the emitting workflow.
type QueueEmitter struct {
	queue   *jobs.Queue
	logger  *zap.Logger
	metrics Metrics
}

// NewQueueEmitter builds the emitter and its delivery queue.
func NewQueueEmitter(store Store, cfg config.NotificationsConfig, logger *zap.Logger, metrics Metrics) *QueueEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &QueueEmitter{logger: logger, metrics: metrics}

	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		err := store.Create(ctx, &models.Notification{
			CitizenID: msg.CitizenID,
			Title:     msg.Title,
			Message:   msg.Body,
			Kind:      msg.Kind,
		})
		if e.metrics != nil {
			if err != nil {
				e.metrics.RecordNotification("failed")
			} else {
				e.metrics.RecordNotification("delivered")
			}
		}
		return err
	}

	e.queue = jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return e
}

// Start launches the delivery workers.
func (e *QueueEmitter) Start(ctx context.Context) {
	e.queue.Start(ctx)
}

// Stop drains the workers.
func (e *QueueEmitter) Stop() {
	e.queue.Stop()
}

// Depth reports the number of undelivered messages.
func (e *QueueEmitter) Depth() int {
	return e.queue.Depth()
}

// Emit queues the message for delivery. A full or stopped queue drops the
// message with a log entry; the caller is never blocked or failed.
func (e *QueueEmitter) Emit(ctx context.Context, msg Message) {
	job := jobs.Job{ID: uuid.NewString(), Type: "notification", Payload: msg}
	if err := e.queue.TryEnqueue(job); err != nil {
		if e.metrics != nil {
			e.metrics.RecordNotification("dropped")
		}
		e.logger.Warn("notification dropped",
			zap.String("citizen_id", msg.CitizenID),
			zap.String("title", msg.Title),
			zap.Error(err))
		return
	}
	if e.metrics != nil {
		e.metrics.RecordNotification("enqueued")
	}
}
