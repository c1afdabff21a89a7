package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hydro_explorer"

// Metrics holds the Prometheus counters, histograms, and gauges for the explorer service.
type Metrics struct {
	// Backend metrics.
	BackendRequests *prometheus.CounterVec   // labels: endpoint, outcome={ok,<error kind>}
	BackendDuration *prometheus.HistogramVec // labels: endpoint

	// User action metrics.
	ActionErrors   *prometheus.CounterVec // labels: action, category
	StaleResponses *prometheus.CounterVec // labels: level
	ChartsRendered prometheus.Counter
	MapsRendered   prometheus.Counter
	Downloads      prometheus.Counter

	// Session metrics.
	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter

	// Activity feed metrics.
	ActivityPublished prometheus.Counter
	ActivityDropped   prometheus.Counter
	ActivityBatchSize prometheus.Histogram
	ActivityRunning   prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Data backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Data backend request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		ActionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_errors_total",
			Help:      "Failed user actions by action and error category.",
		}, []string{"action", "category"}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Backend responses discarded because a newer request superseded them.",
		}, []string{"level"}),
		ChartsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Chart configurations assembled.",
		}),
		MapsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_rendered_total",
			Help:      "Station map configurations assembled.",
		}),
		Downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "CSV exports served.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Dashboard sessions currently held in memory.",
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions dropped because the session store was full.",
		}),
		ActivityPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_published_total",
			Help:      "Activity events written to Kafka.",
		}),
		ActivityDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_dropped_total",
			Help:      "Activity events dropped because the feed queue was full.",
		}),
		ActivityBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "activity_batch_size",
			Help:      "Number of activity events per Kafka write.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		ActivityRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activity_feed_running",
			Help:      "1 when the activity feed is active, 0 when shut down.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.ActionErrors,
		m.StaleResponses,
		m.ChartsRendered,
		m.MapsRendered,
		m.Downloads,
		m.SessionsActive,
		m.SessionsEvicted,
		m.ActivityPublished,
		m.ActivityDropped,
		m.ActivityBatchSize,
		m.ActivityRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
