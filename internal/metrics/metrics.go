// Package metrics holds the Prometheus collectors of the ad server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ads"

// Event kinds recorded by the ledger endpoints.
const (
	EventPageView = "page_view"
	EventClick    = "click"
)

// Pair outcomes.
const (
	PairServed      = "served"
	PairEmpty       = "empty"
	PairBlacklisted = "blacklisted"
)

type Metrics struct {
	Events         *prometheus.CounterVec
	PairsServed    *prometheus.CounterVec
	BlacklistHits  prometheus.Counter
	ReportDuration *prometheus.HistogramVec
	RateLimited    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Pass a fresh prometheus.NewRegistry
// in tests so instances do not collide.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Recorded ledger events by kind",
			},
			[]string{"kind"},
		),
		PairsServed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pairs_served_total",
				Help:      "Ad pair selections by outcome",
			},
			[]string{"result"},
		),
		BlacklistHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blacklist_hits_total",
			Help:      "Selections refused because the requesting domain is blacklisted",
		}),
		ReportDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Time spent answering report queries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"report"},
		),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		}),
		gatherer: reg,
	}
}

// ObserveReport records the time since start under the report label.
func (m *Metrics) ObserveReport(report string, start time.Time) {
	m.ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
