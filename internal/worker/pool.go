package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"SheetServe/internal/metrics"
	"SheetServe/internal/models"
)

type Sender interface {
	SendWithRetry(ctx context.Context, ev models.UploadEvent, retries int) error
}

// Queue hands upload events to the pool without blocking the caller.
type Queue struct {
	mu     sync.Mutex
	closed bool
	events chan models.UploadEvent
	logger *zap.Logger
}

func NewQueue(size int, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{events: make(chan models.UploadEvent, size), logger: logger}
}

func (q *Queue) Events() <-chan models.UploadEvent { return q.events }

// Notify drops the event when the queue is full or closed.
func (q *Queue) Notify(ev models.UploadEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Warn("notification queue closed, dropping event",
			zap.String("revision", ev.Revision.String()),
			zap.String("filename", ev.Filename),
		)
		metrics.NotificationFailures.Inc()
		return
	}

	select {
	case q.events <- ev:
	default:
		q.logger.Warn("notification queue full, dropping event",
			zap.String("revision", ev.Revision.String()),
			zap.String("filename", ev.Filename),
		)
		metrics.NotificationFailures.Inc()
	}
}

// Close stops accepting events; workers drain what is queued. Safe to call
// more than once and concurrently with Notify.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.events)
	}
}

func StartPool(
	ctx context.Context,
	wg *sync.WaitGroup,
	workers int,
	events <-chan models.UploadEvent,
	sender Sender,
	limiter *rate.Limiter,
	logger *zap.Logger,
	retries int,
) {

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			logger.Info("worker started", zap.Int("worker_id", id))

			for {
				select {

				case <-ctx.Done():
					logger.Info("worker shutting down", zap.Int("worker_id", id))
					return

				case ev, ok := <-events:
					if !ok {
						logger.Info("event channel closed", zap.Int("worker_id", id))
						return
					}

					// ----------------------------
					// Rate Limit
					// ----------------------------
					if err := limiter.Wait(ctx); err != nil {
						logger.Warn("rate limiter stopped by context",
							zap.Int("worker_id", id),
							zap.Error(err),
						)
						return
					}

					// ----------------------------
					// Send Notice
					// ----------------------------
					if err := sender.SendWithRetry(ctx, ev, retries); err != nil {
						ev.Status = models.StatusFailed
						logger.Error("upload notice failed",
							zap.Int("worker_id", id),
							zap.String("revision", ev.Revision.String()),
							zap.String("status", string(ev.Status)),
							zap.Error(err),
						)
						metrics.NotificationFailures.Inc()
						continue
					}

					ev.Status = models.StatusSent
					logger.Info("upload notice sent",
						zap.Int("worker_id", id),
						zap.String("revision", ev.Revision.String()),
						zap.String("status", string(ev.Status)),
					)

					metrics.NotificationsSent.Inc()
				}
			}
		}(i)
	}
}
