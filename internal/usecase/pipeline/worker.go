package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-agent/pkg/jobcontext"
	"github.com/johnquangdev/meeting-agent/pkg/metrics"
)

// Job outcomes reported to metrics
const (
	OutcomeCompleted    = "completed"
	OutcomeDeadLettered = "dead_lettered"
)

// Delays between failed Receive calls, so a lost broker does not spin the workers
const (
	receiveRetryInitial = 100 * time.Millisecond
	receiveRetryMax     = 10 * time.Second
)

// JobProcessor handles a single work item
type JobProcessor interface {
	Process(ctx context.Context, item entities.WorkItem) error
}

// WorkerPool consumes work items from a queue with a fixed number of goroutines
type WorkerPool struct {
	queue     queue.Queue
	processor JobProcessor
	workers   int
	opts      jobcontext.Options
	metrics   *metrics.Metrics
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(q queue.Queue, processor JobProcessor, workers int, opts jobcontext.Options, m *metrics.Metrics, logger *zap.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		queue:     q,
		processor: processor,
		workers:   workers,
		opts:      opts,
		metrics:   m,
		logger:    logger,
	}
}

// Start launches the workers. They stop when ctx is cancelled or the queue closes.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 1; i <= p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	p.logger.Info("pipeline.workers.started", zap.Int("workers", p.workers))
}

// Wait blocks until every worker has returned
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) run(ctx context.Context, workerID int) {
	defer p.wg.Done()

	retry := newReceiveBackOff()
	for {
		delivery, err := p.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return
			}
			wait := retry.NextBackOff()
			p.logger.Error("pipeline.queue.receive_failed",
				zap.Int("worker_id", workerID),
				zap.Duration("retry_in", wait),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}

		retry.Reset()
		p.handle(ctx, workerID, delivery)
	}
}

func newReceiveBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = receiveRetryInitial
	b.MaxInterval = receiveRetryMax
	b.MaxElapsedTime = 0
	return b
}

func (p *WorkerPool) handle(ctx context.Context, workerID int, delivery *queue.Delivery) {
	item := delivery.Item
	log := p.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", item.ID),
		zap.String("meeting_id", item.Data.MeetingID),
	)

	jobCtx, cancel := jobcontext.JobBegin(ctx, item.ID, item.EventName, workerID, p.opts)
	defer cancel()

	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		return p.processor.Process(ctx, item)
	})

	// Settle the delivery even if the job context has expired.
	settleCtx := context.WithoutCancel(ctx)
	if err == nil {
		if ackErr := delivery.Ack(settleCtx); ackErr != nil {
			log.Warn("pipeline.queue.ack_failed", zap.Error(ackErr))
		}
		p.metrics.ObserveJob(OutcomeCompleted)
		return
	}

	if ctx.Err() != nil {
		// Shutdown interrupted the job; leave it unsettled for redelivery.
		log.Warn("pipeline.job.interrupted", zap.Error(err))
		return
	}

	log.Error("pipeline.job.failed", zap.Error(err))
	if dlErr := delivery.DeadLetter(settleCtx, err); dlErr != nil {
		log.Error("pipeline.queue.dead_letter_failed", zap.Error(dlErr))
	}
	p.metrics.ObserveJob(OutcomeDeadLettered)
}
