// Package activity batches user-action events and publishes them off the
// request path.
package activity

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
	"github.com/couchcryptid/hydro-explorer-service/internal/observability"
)

const (
	// queueFactor sizes the in-memory queue as a multiple of the batch size.
	queueFactor = 8

	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxAttempts    = 5

	drainTimeout = 5 * time.Second
)

// BatchLoader writes multiple activity events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ActivityEvent) error
}

// Feed queues activity events and publishes them in batches. A batch is
// written when it reaches the batch size or when the flush interval elapses.
type Feed struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.ActivityEvent
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
}

// New creates a Feed. Run must be called for events to be published.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Feed {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Feed{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.ActivityEvent, batchSize*queueFactor),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Record enqueues an event without blocking. Events are dropped when the
// queue is full.
func (f *Feed) Record(event domain.ActivityEvent) {
	select {
	case f.queue <- event:
	default:
		f.metrics.ActivityDropped.Inc()
	}
}

// CheckReadiness returns nil once Run has started.
func (f *Feed) CheckReadiness(_ context.Context) error {
	if !f.running.Load() {
		return errors.New("activity feed is not running")
	}
	return nil
}

// Run publishes queued events until the context is cancelled, then flushes
// what is left.
func (f *Feed) Run(ctx context.Context) error {
	f.logger.Info("activity feed started", "batch_size", f.batchSize, "flush_interval", f.flushInterval)
	f.running.Store(true)
	f.metrics.ActivityRunning.Set(1)
	defer func() {
		f.running.Store(false)
		f.metrics.ActivityRunning.Set(0)
	}()

	ticker := time.NewTicker(f.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ActivityEvent, 0, f.batchSize)
	for {
		select {
		case <-ctx.Done():
			f.drain(ctx, batch)
			f.logger.Info("activity feed stopping", "reason", ctx.Err())
			return nil
		case ev := <-f.queue:
			batch = append(batch, ev)
			if len(batch) >= f.batchSize {
				f.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				f.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// drain writes the pending batch and everything still queued, bounded by
// drainTimeout.
func (f *Feed) drain(ctx context.Context, batch []domain.ActivityEvent) {
	// Run is the only consumer, so the length check cannot race.
	for len(f.queue) > 0 {
		batch = append(batch, <-f.queue)
	}
	if len(batch) == 0 {
		return
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := f.loader.LoadBatch(drainCtx, batch); err != nil {
		f.logger.Error("final activity flush failed", "error", err, "batch_size", len(batch))
		f.metrics.ActivityDropped.Add(float64(len(batch)))
		return
	}
	f.published(len(batch))
}

// flush writes one batch, retrying with exponential backoff. After
// maxAttempts failures the batch is dropped.
func (f *Feed) flush(ctx context.Context, batch []domain.ActivityEvent) {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := f.loader.LoadBatch(ctx, batch)
		if err == nil {
			f.published(len(batch))
			return
		}
		f.logger.Error("activity batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)
		if attempt >= maxAttempts || !sleepWithContext(ctx, backoff) {
			f.metrics.ActivityDropped.Add(float64(len(batch)))
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func (f *Feed) published(n int) {
	f.metrics.ActivityPublished.Add(float64(n))
	f.metrics.ActivityBatchSize.Observe(float64(n))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
