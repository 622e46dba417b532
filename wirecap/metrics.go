package wirecap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	reg *prometheus.Registry

	frames      prometheus.Counter
	parseErrors prometheus.Counter
	documents   *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		reg: reg,
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "docsift_wire_frames_total",
			Help: "Complete wire frames reassembled from captured traffic.",
		}),
		parseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "docsift_wire_parse_errors_total",
			Help: "Frames that failed wire protocol parsing.",
		}),
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docsift_documents_captured_total",
			Help: "Documents extracted from captured traffic, by namespace.",
		}, []string{"namespace"}),
	}
}
