// Package metrics exposes the engine's ambient Prometheus instrumentation
// (spec AMBIENT STACK addition): pool/registry/eviction gauges updated at
// the end of each frame, never on the hot path itself.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the gauges the Frame Coordinator refreshes once per
// frame in frame_move_end, and the eviction counter it increments in the
// AllocateEmitters pass as each victim is evicted.
type Collector struct {
	LiveEmitters     prometheus.Gauge
	VisibleEmitters  prometheus.Gauge
	ActiveEmitters   prometheus.Gauge
	AllocatedBytes   prometheus.Gauge
	FreeBytes        prometheus.Gauge
	AllocatedBlocks  prometheus.Gauge
	Evictions        prometheus.Counter
}

// NewCollector builds a Collector and registers every metric with reg.
// Passing a fresh prometheus.NewRegistry() keeps tests isolated from the
// default global registry.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	c := &Collector{
		LiveEmitters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "live_emitters", Help: "Number of emitters currently alive.",
		}),
		VisibleEmitters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "visible_emitters", Help: "Number of emitters with at least one visible render entity.",
		}),
		ActiveEmitters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_emitters", Help: "Number of emitters currently active.",
		}),
		AllocatedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "allocator_used_bytes", Help: "Slot allocator bytes currently in use.",
		}),
		FreeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "allocator_free_bytes", Help: "Slot allocator bytes currently free.",
		}),
		AllocatedBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "allocator_blocks", Help: "Number of live allocator blocks (fragmentation proxy).",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "evictions_total", Help: "Total number of emitters evicted to satisfy a new allocation.",
		}),
	}
	reg.MustRegister(c.LiveEmitters, c.VisibleEmitters, c.ActiveEmitters,
		c.AllocatedBytes, c.FreeBytes, c.AllocatedBlocks, c.Evictions)
	return c
}
