package event

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Processor handles one delivered order event.
type Processor interface {
	Process(ctx context.Context, ev OrderPlaced) error
}

// WorkerPool fans deliveries out over a fixed number of workers with a
// bounded backlog.
type WorkerPool struct {
	wg        sync.WaitGroup
	tasks     chan func()
	logger    *zap.Logger
	processor Processor
}

func NewWorkerPool(size int, processor Processor, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	wp := &WorkerPool{
		tasks:     make(chan func(), 1000),
		logger:    logger,
		processor: processor,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Submit enqueues an event for processing. Processing errors are logged, not
// returned; delivery is at-least-once and the processor is idempotent.
func (wp *WorkerPool) Submit(ctx context.Context, ev OrderPlaced) {
	wp.tasks <- func() {
		if err := wp.processor.Process(ctx, ev); err != nil {
			wp.logger.Error("failed to process order event",
				zap.String("event_id", ev.EventID),
				zap.String("order_id", ev.OrderID),
				zap.Error(err))
		}
	}
}

// Shutdown drains the backlog and stops the workers.
func (wp *WorkerPool) Shutdown() {
	close(wp.tasks)
	wp.wg.Wait()
}
