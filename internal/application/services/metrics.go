package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IndexerMetrics holds Prometheus metrics for the indexing loop
type IndexerMetrics struct {
	BlocksIndexed    prometheus.Counter
	EventsIndexed    *prometheus.CounterVec
	TokensDiscovered prometheus.Counter
	LastIndexedBlock prometheus.Gauge
	ChainHead        prometheus.Gauge
	BatchLatency     prometheus.Histogram
	ReorgsTotal      prometheus.Counter
	ErrorsTotal      prometheus.Counter
}

// NewIndexerMetrics creates new indexer metrics
func NewIndexerMetrics() *IndexerMetrics {
	return &IndexerMetrics{
		BlocksIndexed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "indexer_blocks_indexed_total",
			Help: "Total number of blocks indexed",
		}),
		EventsIndexed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_events_indexed_total",
			Help: "Total number of token events indexed",
		}, []string{"event_type"}),
		TokensDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "indexer_tokens_discovered_total",
			Help: "Total number of tokens added to the registry",
		}),
		LastIndexedBlock: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_last_indexed_block",
			Help: "Durable cursor position",
		}),
		ChainHead: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "indexer_chain_head_block",
			Help: "Live chain head as seen by the indexer",
		}),
		BatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "indexer_batch_latency_seconds",
			Help:    "Time taken to fetch, decode and commit one batch",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		ReorgsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "indexer_reorgs_total",
			Help: "Total number of chain reorganizations handled",
		}),
		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "indexer_errors_total",
			Help: "Total number of indexing errors",
		}),
	}
}
