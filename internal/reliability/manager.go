package reliability

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/logging"
)

// AggregateSource supplies grouped delay history for model rebuilds.
type AggregateSource interface {
	LoadAggregates(ctx context.Context, now time.Time) ([]Aggregate, error)
}

// Manager rebuilds the reliability model in the background and publishes
// each finished model atomically. Readers always see a complete model.
type Manager struct {
	source          AggregateSource
	refreshInterval time.Duration
	model           atomic.Pointer[Model]
	shutdownChan    chan struct{}
	wg              sync.WaitGroup
	shutdownOnce    sync.Once
}

// NewManager builds the first model from the source and starts the
// periodic refresh loop. The initial build failing is not fatal; the
// manager starts from an empty model and retries on the next tick.
func NewManager(ctx context.Context, source AggregateSource, refreshInterval time.Duration) *Manager {
	manager := &Manager{
		source:          source,
		refreshInterval: refreshInterval,
		shutdownChan:    make(chan struct{}),
	}
	manager.model.Store(BuildModel(nil, time.Now()))

	logger := logging.FromContext(ctx).With(slog.String("component", "reliability_manager"))
	if err := manager.Refresh(ctx); err != nil {
		logging.LogError(logger, "Error building initial reliability model", err)
	}

	manager.wg.Add(1)
	go manager.refreshPeriodically(logger)
	return manager
}

// Current returns the most recently published model.
func (manager *Manager) Current() *Model {
	return manager.model.Load()
}

// Refresh rebuilds the model from the aggregate source and publishes it.
func (manager *Manager) Refresh(ctx context.Context) error {
	now := time.Now()
	aggregates, err := manager.source.LoadAggregates(ctx, now)
	if err != nil {
		return err
	}
	manager.model.Store(BuildModel(aggregates, now))
	return nil
}

func (manager *Manager) refreshPeriodically(logger *slog.Logger) {
	defer manager.wg.Done()

	ticker := time.NewTicker(manager.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			logging.LogOperation(logger, "refreshing_reliability_model")
			if err := manager.Refresh(ctx); err != nil {
				logging.LogError(logger, "Error refreshing reliability model", err)
			}
			cancel()
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_reliability_refresh")
			return
		}
	}
}

// Shutdown stops the background refresh loop and waits for it to exit.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}
