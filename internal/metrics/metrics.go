package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the engine's metrics on a private registry so tests can
// build collectors without colliding on the global one.
type Collector struct {
	reg *prometheus.Registry

	PlansTotal     *prometheus.CounterVec // outcome label: ok|empty|invalid|cancelled|error
	PlanDuration   prometheus.Histogram
	ItinerariesPer prometheus.Histogram

	ScheduleStops    prometheus.Gauge
	ScheduleVersion  prometheus.Gauge
	RealtimeFresh    prometheus.Gauge
	ReliabilityAge   prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec // route and status labels
	HTTPDuration     prometheus.Histogram
	RealtimeFailures prometheus.Gauge
}

// NewCollector builds and registers every metric.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PlansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfare_plans_total",
			Help: "Total planning requests by outcome.",
		}, []string{"outcome"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wayfare_plan_duration_seconds",
			Help:    "Duration of itinerary planning requests.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		ItinerariesPer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wayfare_plan_itineraries",
			Help:    "Number of itineraries returned per plan.",
			Buckets: prometheus.LinearBuckets(0, 1, 5),
		}),
		ScheduleStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_schedule_stops",
			Help: "Number of stops in the active schedule snapshot.",
		}),
		ScheduleVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_schedule_loaded_timestamp_seconds",
			Help: "When the active schedule snapshot was published.",
		}),
		RealtimeFresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_realtime_fresh",
			Help: "1 if the realtime trip update cache is fresh, 0 otherwise.",
		}),
		ReliabilityAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_reliability_model_age_seconds",
			Help: "Age of the published reliability model.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfare_http_requests_total",
			Help: "Total HTTP requests by route and status.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wayfare_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		RealtimeFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_realtime_fetch_failures",
			Help: "Realtime feed fetch failures since startup.",
		}),
	}

	reg.MustRegister(
		c.PlansTotal, c.PlanDuration, c.ItinerariesPer,
		c.ScheduleStops, c.ScheduleVersion,
		c.RealtimeFresh, c.ReliabilityAge,
		c.HTTPRequests, c.HTTPDuration, c.RealtimeFailures,
	)
	return c
}

// ObservePlan records one finished planning request.
func (c *Collector) ObservePlan(outcome string, itineraries int, elapsed time.Duration) {
	c.PlansTotal.WithLabelValues(outcome).Inc()
	c.PlanDuration.Observe(elapsed.Seconds())
	c.ItinerariesPer.Observe(float64(itineraries))
}

// ObserveHTTP records one finished HTTP request.
func (c *Collector) ObserveHTTP(route, status string, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(route, status).Inc()
	c.HTTPDuration.Observe(elapsed.Seconds())
}

// SetScheduleSnapshot records the active snapshot's size and publish time.
func (c *Collector) SetScheduleSnapshot(stops int, publishedAt time.Time) {
	c.ScheduleStops.Set(float64(stops))
	c.ScheduleVersion.Set(float64(publishedAt.Unix()))
}

// SetRuntimeStatus records the freshness gauges read off the live
// components, typically right before a scrape.
func (c *Collector) SetRuntimeStatus(realtimeFresh bool, modelAge time.Duration, fetchFailures uint64) {
	if realtimeFresh {
		c.RealtimeFresh.Set(1)
	} else {
		c.RealtimeFresh.Set(0)
	}
	c.ReliabilityAge.Set(modelAge.Seconds())
	c.RealtimeFailures.Set(float64(fetchFailures))
}

// Handler serves this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
