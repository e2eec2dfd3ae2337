package realtime

import (
	"sync"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// ArrivalsTTL bounds how long fetched trip updates stay usable.
const ArrivalsTTL = models.ArrivalsTTLSeconds * time.Second

// AlertsTTL bounds how long fetched service alerts stay usable.
const AlertsTTL = models.AlertsTTLSeconds * time.Second

// entry is one cached value with its capture time and lifetime. Staleness
// is a pure function of "now", so readers at different instants can reach
// different verdicts about the same entry.
type entry[T any] struct {
	value      T
	capturedAt time.Time
	ttl        time.Duration
}

func (e entry[T]) fresh(now time.Time) bool {
	if e.capturedAt.IsZero() {
		return false
	}
	return now.Sub(e.capturedAt) <= e.ttl
}

// Cache holds the most recent realtime fetch results under TTLs.
type Cache struct {
	mu          sync.RWMutex
	tripUpdates entry[map[string]TripUpdate]
	alerts      entry[[]Alert]
}

// NewCache returns an empty cache. Every read misses until a store.
func NewCache() *Cache {
	return &Cache{}
}

// StoreTripUpdates replaces the cached trip updates, stamped at now.
func (c *Cache) StoreTripUpdates(updates map[string]TripUpdate, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tripUpdates = entry[map[string]TripUpdate]{value: updates, capturedAt: now, ttl: ArrivalsTTL}
}

// StoreAlerts replaces the cached alerts, stamped at now.
func (c *Cache) StoreAlerts(alerts []Alert, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = entry[[]Alert]{value: alerts, capturedAt: now, ttl: AlertsTTL}
}

// TripUpdates returns cached trip updates when still fresh at now.
func (c *Cache) TripUpdates(now time.Time) (map[string]TripUpdate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.tripUpdates.fresh(now) {
		return nil, false
	}
	return c.tripUpdates.value, true
}

// Alerts returns cached alerts when still fresh at now.
func (c *Cache) Alerts(now time.Time) ([]Alert, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.alerts.fresh(now) {
		return nil, false
	}
	return c.alerts.value, true
}
