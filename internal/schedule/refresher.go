package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/logging"
)

const (
	// refreshLeadTime is how far before the active snapshot expires the
	// refresher starts trying to load a replacement.
	refreshLeadTime = 24 * time.Hour

	refreshCheckInterval = time.Hour
)

// Refresher reloads the static feed when the active snapshot nears expiry
// and publishes the replacement wholesale. A failed load keeps the current
// snapshot in service.
type Refresher struct {
	provider     *Provider
	source       string
	feedLifetime time.Duration
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewRefresher starts the background expiry check over the provider.
func NewRefresher(provider *Provider, source string, feedLifetime time.Duration, logger *slog.Logger) *Refresher {
	refresher := &Refresher{
		provider:     provider,
		source:       source,
		feedLifetime: feedLifetime,
		shutdownChan: make(chan struct{}),
	}
	refresher.wg.Add(1)
	go refresher.refreshPeriodically(logger.With(slog.String("component", "schedule_refresher")))
	return refresher
}

// Refresh reloads the feed and publishes the new snapshot.
func (refresher *Refresher) Refresh() error {
	version := time.Now().Format("2006-01-02")
	idx, err := LoadFeed(refresher.source, version, time.Now().Add(refresher.feedLifetime))
	if err != nil {
		return err
	}
	refresher.provider.Publish(idx)
	return nil
}

func (refresher *Refresher) refreshPeriodically(logger *slog.Logger) {
	defer refresher.wg.Done()

	ticker := time.NewTicker(refreshCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if time.Until(refresher.provider.Current().ExpiresAt()) > refreshLeadTime {
				continue
			}
			logging.LogOperation(logger, "refreshing_schedule_snapshot")
			if err := refresher.Refresh(); err != nil {
				logging.LogError(logger, "Error refreshing schedule snapshot", err)
			}
		case <-refresher.shutdownChan:
			logging.LogOperation(logger, "shutting_down_schedule_refresh")
			return
		}
	}
}

// Shutdown stops the refresh loop and waits for it to exit.
func (refresher *Refresher) Shutdown() {
	refresher.shutdownOnce.Do(func() {
		close(refresher.shutdownChan)
		refresher.wg.Wait()
	})
}
