package tracing

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PropagationSource reports observation counts per tracked transaction hash.
type PropagationSource interface {
	Snapshot() map[string]uint64
}

// RadarCollector exposes per-transaction propagation counters to prometheus.
type RadarCollector struct {
	source       PropagationSource
	observations *prometheus.Desc
}

// NewRadarCollector registers the collector with the default prometheus
// registerer.
func NewRadarCollector(source PropagationSource) *RadarCollector {
	c := &RadarCollector{
		source: source,
		observations: prometheus.NewDesc("txsentinel_radar_observation_count",
			"Shows the number of peer announcements observed for the tracked transaction",
			[]string{"hash"}, nil,
		),
	}

	prometheus.MustRegister(c)

	return c
}

func (c *RadarCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.observations
}

func (c *RadarCollector) Collect(ch chan<- prometheus.Metric) {
	for hash, count := range c.source.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.observations, prometheus.CounterValue,
			float64(count), hash)
	}
}
