// Package dispatcher manages worker fan-out over the source queue.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	qmemory "github.com/USDepartmentofLabor/cdf-warn/internal/queue/memory"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
	"github.com/USDepartmentofLabor/cdf-warn/internal/worker"
)

// Dispatcher fans out staged sources to a pool of workers.
type Dispatcher struct {
	queue   *qmemory.Queue
	workers []*worker.Worker
	pending []warn.SourceConfig
	logger  *zap.Logger
}

// New creates a Dispatcher.
func New(queue *qmemory.Queue, workers []*worker.Worker, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: queue, workers: workers, logger: logger}
}

// Submit stages sources for the next Run. Nothing touches the queue until
// workers are draining it, so a registry larger than the queue depth
// cannot block here.
func (d *Dispatcher) Submit(sources []warn.SourceConfig) {
	d.pending = append(d.pending, sources...)
}

// Run starts all workers, feeds the staged sources through the queue,
// closes it, and blocks until every worker finishes or the context ends.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(d.workers))
	for i, w := range d.workers {
		wg.Add(1)
		go func(n int, wk *worker.Worker) {
			defer wg.Done()
			if err := wk.Run(ctx); err != nil {
				d.logger.Error("worker exited with error", zap.Int("worker", n), zap.Error(err))
				errs <- err
			}
		}(i, w)
	}

	var feedErr error
	for _, src := range d.pending {
		if err := d.queue.Enqueue(ctx, warn.QueueItem{Source: src}); err != nil {
			feedErr = fmt.Errorf("enqueue %s: %w", src.StateAbbrev, err)
			break
		}
	}
	d.queue.Close()
	wg.Wait()
	close(errs)

	if feedErr != nil {
		return feedErr
	}
	if err, ok := <-errs; ok {
		return err
	}
	return nil
}
