package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
	"github.com/senkronix/b2b-bridge/internal/domain/shared"
)

// Result summarizes one finished cycle. A Result is immutable once emitted;
// consumers never share state with a still-running cycle.
type Result struct {
	RunID    string            `json:"run_id"`
	Kind     string            `json:"kind"`
	Items    int               `json:"items"`
	Skipped  int               `json:"skipped"`
	Warnings []catalog.Warning `json:"warnings,omitempty"`
	Duration time.Duration     `json:"duration"`
	Err      error             `json:"-"`
}

// Failed reports whether the cycle ended in an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Cycle kinds the worker can run.
const (
	KindCatalog = "catalog"
	KindLedger  = "ledger"
	KindImages  = "images"
)

// Worker runs sync cycles in the background, one at a time. A second start
// while a cycle is in flight is rejected, not queued: overlapping cycles
// would race on the image directory and publish out of order.
type Worker struct {
	service *Service
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewWorker wraps a sync service in a single-flight background runner.
func NewWorker(service *Service, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{service: service, logger: logger}
}

// Start launches a cycle of the given kind. The returned channel delivers
// exactly one Result and is then closed.
func (w *Worker) Start(ctx context.Context, kind string) (<-chan Result, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil, shared.ErrSyncAlreadyRunning
	}
	w.running = true
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	runID := uuid.New().String()
	results := make(chan Result, 1)

	go func() {
		defer close(results)
		defer func() {
			cancel()
			w.mu.Lock()
			w.running = false
			w.cancel = nil
			w.mu.Unlock()
		}()

		start := time.Now()
		w.logger.Info("sync cycle started",
			zap.String("run_id", runID),
			zap.String("kind", kind))

		var result Result
		var err error
		switch kind {
		case KindLedger:
			result, err = w.service.RunLedgerCycle(runCtx)
		case KindImages:
			result, err = w.service.RunImageBackfill(runCtx)
		default:
			result, err = w.service.RunCatalogCycle(runCtx)
		}

		result.RunID = runID
		result.Kind = kind
		result.Duration = time.Since(start)
		result.Err = err

		if err != nil {
			w.logger.Error("sync cycle failed",
				zap.String("run_id", runID),
				zap.Duration("duration", result.Duration),
				zap.Error(err))
		} else {
			w.logger.Info("sync cycle finished",
				zap.String("run_id", runID),
				zap.Int("items", result.Items),
				zap.Duration("duration", result.Duration))
		}

		results <- result
	}()

	return results, nil
}

// Cancel requests cooperative cancellation of the running cycle, if any.
// The cycle stops at its next checkpoint; Cancel does not wait for it.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
}

// Running reports whether a cycle is currently in flight.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
