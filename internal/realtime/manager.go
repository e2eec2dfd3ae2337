package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/logging"
)

const (
	refreshInterval = 30 * time.Second
	fetchTimeout    = 15 * time.Second
)

// Manager keeps the realtime cache warm with periodic feed fetches. A
// failed fetch leaves the previous entry in place; the TTL decides when
// readers stop trusting it.
type Manager struct {
	fetcher       *Fetcher
	cache         *Cache
	fetchFailures atomic.Uint64
	shutdownChan  chan struct{}
	wg            sync.WaitGroup
	shutdownOnce  sync.Once
}

// NewManager performs one initial fetch and starts the refresh loop. With
// no feed URLs configured the manager is inert and every read misses.
func NewManager(ctx context.Context, fetcher *Fetcher) *Manager {
	manager := &Manager{
		fetcher:      fetcher,
		cache:        NewCache(),
		shutdownChan: make(chan struct{}),
	}

	if fetcher.Enabled() {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		manager.refresh(fetchCtx)
		cancel()

		manager.wg.Add(1)
		go manager.refreshPeriodically()
	}
	return manager
}

// TripUpdates returns the fresh trip updates, or nothing when the cache
// is cold or past its TTL.
func (manager *Manager) TripUpdates(now time.Time) (map[string]TripUpdate, bool) {
	return manager.cache.TripUpdates(now)
}

// Alerts returns the fresh service alerts, or nothing when stale.
func (manager *Manager) Alerts(now time.Time) ([]Alert, bool) {
	return manager.cache.Alerts(now)
}

// FetchFailures returns how many feed fetches have failed since startup.
func (manager *Manager) FetchFailures() uint64 {
	return manager.fetchFailures.Load()
}

func (manager *Manager) refresh(ctx context.Context) {
	logger := logging.FromContext(ctx).With(slog.String("component", "realtime_manager"))

	var wg sync.WaitGroup
	var updates map[string]TripUpdate
	var alerts []Alert
	var updatesErr, alertsErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		updates, updatesErr = manager.fetcher.FetchTripUpdates(ctx)
		if updatesErr != nil {
			manager.fetchFailures.Add(1)
			logging.LogError(logger, "Error fetching trip updates", updatesErr)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		alerts, alertsErr = manager.fetcher.FetchAlerts(ctx)
		if alertsErr != nil {
			manager.fetchFailures.Add(1)
			logging.LogError(logger, "Error fetching service alerts", alertsErr)
		}
	}()

	wg.Wait()

	if ctx.Err() != nil {
		return
	}

	now := time.Now()
	if updatesErr == nil && updates != nil {
		manager.cache.StoreTripUpdates(updates, now)
	}
	if alertsErr == nil && alerts != nil {
		manager.cache.StoreAlerts(alerts, now)
	}
}

func (manager *Manager) refreshPeriodically() {
	defer manager.wg.Done()

	logger := slog.Default().With(slog.String("component", "realtime_updater"))

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			ctx = logging.WithLogger(ctx, logger)
			logging.LogOperation(logger, "refreshing_realtime_feeds")
			manager.refresh(ctx)
			cancel()
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_realtime_refresh")
			return
		}
	}
}

// Shutdown stops the refresh loop and waits for it to exit.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}
