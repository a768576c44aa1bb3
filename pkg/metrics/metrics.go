package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all gateway metrics
type Metrics struct {
	// Occupancy monitor metrics
	OccupancyPolls       *prometheus.CounterVec
	OccupancyPollLatency prometheus.Histogram
	ActiveMonitors       prometheus.Gauge

	// Upstream call metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Triage workflow metrics
	Previews      prometheus.Counter
	Confirmations *prometheus.CounterVec
	Overrides     prometheus.Counter

	// Session metrics
	ActiveSessions      prometheus.Gauge
	SessionTerminations *prometheus.CounterVec
}

// NewMetrics creates and registers all gateway metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OccupancyPolls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occupancy_polls_total",
			Help:      "Total number of occupancy polls by outcome",
		}, []string{"status"}),
		OccupancyPollLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "occupancy_poll_duration_seconds",
			Help:      "Time spent fetching occupancy and forecast data",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		ActiveMonitors: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupancy_monitors_active",
			Help:      "Number of occupancy monitors currently running",
		}),

		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream requests",
		}, []string{"service", "status"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"service"}),

		Previews: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_previews_total",
			Help:      "Total number of triage predictions previewed",
		}),
		Confirmations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_confirmations_total",
			Help:      "Total number of confirmation attempts by outcome",
		}, []string{"status"}),
		Overrides: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_overrides_total",
			Help:      "Total number of confirmed patients with an overridden category or department",
		}),

		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of active clinician sessions",
		}),
		SessionTerminations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_terminations_total",
			Help:      "Total number of session terminations by reason",
		}, []string{"reason"}),
	}
}
