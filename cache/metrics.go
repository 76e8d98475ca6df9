package cache

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricHits      = "hits_total"
	MetricMisses    = "misses_total"
	MetricEvictions = "evictions_total"
	MetricEntries   = "entries"
	MetricBytes     = "bytes"
)

const metricsSubsystem = "object_cache"

type metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
	bytes     prometheus.Gauge
}

func newMetrics(namespace string) *metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &metrics{
		hits:      counter(MetricHits, "Lookups served from the cache."),
		misses:    counter(MetricMisses, "Lookups not served from the cache."),
		evictions: counter(MetricEvictions, "Entries evicted to stay within capacity."),
		entries:   gauge(MetricEntries, "Entries currently retained."),
		bytes:     gauge(MetricBytes, "Bytes currently retained."),
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.evictions, m.entries, m.bytes} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
