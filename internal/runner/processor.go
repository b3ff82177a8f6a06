package runner

import (
	"context"
	"runtime"
	"sync"

	"fjacquet/payout-report/internal/logging"
)

// sequentialThreshold is the job count below which work runs on the calling
// goroutine.
const sequentialThreshold = 16

// ConcurrentProcessor runs indexed jobs on a bounded worker pool.
type ConcurrentProcessor struct {
	logger      logging.Logger
	workerCount int
}

// NewConcurrentProcessor creates a processor with workers goroutines. A
// non-positive count uses runtime.NumCPU().
func NewConcurrentProcessor(logger logging.Logger, workers int) *ConcurrentProcessor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ConcurrentProcessor{logger: logger, workerCount: workers}
}

// Workers returns the pool size.
func (cp *ConcurrentProcessor) Workers() int { return cp.workerCount }

// Process calls job once for every index in [0, n). Jobs write their own
// result slot, so output order matches input order. It stops handing out work
// when ctx is cancelled and returns ctx.Err().
func (cp *ConcurrentProcessor) Process(ctx context.Context, n int, job func(ctx context.Context, i int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	if n < sequentialThreshold || cp.workerCount == 1 {
		return cp.processSequential(ctx, n, job)
	}
	return cp.processConcurrent(ctx, n, job)
}

func (cp *ConcurrentProcessor) processSequential(ctx context.Context, n int, job func(context.Context, int)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		job(ctx, i)
	}
	return nil
}

func (cp *ConcurrentProcessor) processConcurrent(ctx context.Context, n int, job func(context.Context, int)) error {
	workers := cp.workerCount
	if workers > n {
		workers = n
	}
	indexChan := make(chan int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go cp.worker(ctx, &wg, indexChan, job)
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < n; i++ {
			select {
			case indexChan <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	cp.logger.Debug("Concurrent processing completed",
		logging.F(logging.FieldCount, n),
		logging.F(logging.FieldWorkers, workers))
	return ctx.Err()
}

func (cp *ConcurrentProcessor) worker(ctx context.Context, wg *sync.WaitGroup, indexChan <-chan int, job func(context.Context, int)) {
	defer wg.Done()

	for {
		select {
		case i, ok := <-indexChan:
			if !ok {
				return
			}
			job(ctx, i)
		case <-ctx.Done():
			return
		}
	}
}
