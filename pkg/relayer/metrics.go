package relayer

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the relayer's process-wide Prometheus counters/gauges,
// registered once at startup and updated by the indexer and worker
// loops.
type Metrics struct {
	EventsIndexed   *prometheus.CounterVec
	ProofsSubmitted *prometheus.CounterVec
	ProofsFailed    *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
	CursorHeight    *prometheus.GaugeVec
}

// NewMetrics builds and registers a Metrics set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayer_events_indexed_total",
			Help: "Bridge events observed by the indexer, by chain and event kind.",
		}, []string{"chain", "event"}),
		ProofsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayer_proofs_submitted_total",
			Help: "Proofs successfully submitted to the hub, by chain.",
		}, []string{"chain"}),
		ProofsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayer_proofs_failed_total",
			Help: "Proof submissions that failed verification or dispatch, by chain and error kind.",
		}, []string{"chain", "kind"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relayer_queue_depth",
			Help: "Pending work items per queue.",
		}, []string{"queue"}),
		CursorHeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relayer_cursor_height",
			Help: "Last processed block height per chain.",
		}, []string{"chain"}),
	}
	reg.MustRegister(m.EventsIndexed, m.ProofsSubmitted, m.ProofsFailed, m.QueueDepth, m.CursorHeight)
	return m
}
