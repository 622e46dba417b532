package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the scan instrumentation on its own registry so the HTTP
// surface can expose exactly these series and nothing else.
type Metrics struct {
	reg *prometheus.Registry

	documents   *prometheus.CounterVec
	collections prometheus.Counter
	failures    prometheus.Counter
	duration    prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docsift_documents_scanned_total",
			Help: "Documents merged into schema trees, by collection.",
		}, []string{"collection"}),
		collections: factory.NewCounter(prometheus.CounterOpts{
			Name: "docsift_collections_scanned_total",
			Help: "Collections whose scan completed.",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "docsift_scan_failures_total",
			Help: "Scans aborted by a source failure.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docsift_collection_scan_duration_seconds",
			Help:    "Wall time spent scanning one collection.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

// Registry returns the gatherer backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
