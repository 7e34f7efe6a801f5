package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what one run did. They live in a private registry and are
// written out as a node-exporter textfile at the end of the run.
type Metrics struct {
	reg      *prometheus.Registry
	assets   *prometheus.CounterVec
	images   *prometheus.CounterVec
	duration prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		assets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenedb",
			Name:      "assets_total",
			Help:      "Source assets by conversion result.",
		}, []string{"result"}),
		images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenedb",
			Name:      "images_total",
			Help:      "Preview image fetches by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scenedb",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last conversion run.",
		}),
	}
	m.reg.MustRegister(m.assets, m.images, m.duration)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
