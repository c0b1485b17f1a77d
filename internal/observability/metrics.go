package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation engine.
type Metrics struct {
	Polls           *prometheus.CounterVec // labels: source, outcome={success,delayed,error}
	PollDuration    *prometheus.HistogramVec
	RecordsIngested *prometheus.CounterVec // labels: source, kind={disaster,social_report}
	Broadcasts      prometheus.Counter
	Subscribers     prometheus.Gauge
	EventsPublished prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the given
// registry. Pass prometheus.DefaultRegisterer in production; tests use a
// fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disastersence",
			Name:      "polls_total",
			Help:      "Total poll attempts per source and outcome.",
		}, []string{"source", "outcome"}),
		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "disastersence",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one connector fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disastersence",
			Name:      "records_ingested_total",
			Help:      "Canonical records stored, per source and record kind.",
		}, []string{"source", "kind"}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disastersence",
			Name:      "broadcasts_total",
			Help:      "Snapshot fan-outs pushed to live subscribers.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disastersence",
			Name:      "live_subscribers",
			Help:      "Currently connected live subscribers.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disastersence",
			Name:      "events_published_total",
			Help:      "Disaster events published to the event sink.",
		}),
	}

	reg.MustRegister(m.Polls, m.PollDuration, m.RecordsIngested,
		m.Broadcasts, m.Subscribers, m.EventsPublished)
	return m
}
