// internal/app/system/workers/statecleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpiredRemover deletes expired records and reports how many were removed.
type ExpiredRemover interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// StateCleanup periodically removes expired OAuth state tokens. Mongo's TTL
// monitor runs only about once a minute and can be disabled, so expired
// tokens are also removed here.
type StateCleanup struct {
	store    ExpiredRemover
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStateCleanup creates a cleanup worker running every interval.
func NewStateCleanup(store ExpiredRemover, logger *zap.Logger, interval time.Duration) *StateCleanup {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StateCleanup{
		store:    store,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *StateCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("oauth state cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *StateCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("oauth state cleanup worker stopped")
	})
}

func (w *StateCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *StateCleanup) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.store.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to remove expired oauth states", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("removed expired oauth states", zap.Int64("count", count))
	}
}
