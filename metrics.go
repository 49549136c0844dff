package kfifo

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ubrabbit/kfifo/metric"
)

// fifoMetrics holds Prometheus metrics for a single fifo instance.
type fifoMetrics struct {
	registry *metric.MetricsRegistry
	name     string
	core     *metric.Metrics // registry-wide transfer histogram

	// Counter metrics - directly incremented without stats duplication
	enqueues    prometheus.Counter
	dequeues    prometheus.Counter
	peeks       prometheus.Counter
	rejects     prometheus.Counter
	discards    prometheus.Counter
	elementsIn  prometheus.Counter
	elementsOut prometheus.Counter

	// Gauge metrics - updated on operations
	occupancy   prometheus.Gauge
	utilization prometheus.Gauge
}

// fifoMetricKeys are the registry keys used per instance; Free unregisters
// them so a name can be reused.
var fifoMetricKeys = []string{
	"fifo_enqueues",
	"fifo_dequeues",
	"fifo_peeks",
	"fifo_rejects",
	"fifo_discards",
	"fifo_elements_in",
	"fifo_elements_out",
	"fifo_occupancy",
	"fifo_utilization",
}

// newFifoMetrics creates and registers fifo metrics with the provided registry.
func newFifoMetrics(registry *metric.MetricsRegistry, name string) (*fifoMetrics, error) {
	m := &fifoMetrics{
		registry: registry,
		name:     name,
		core:     registry.CoreMetrics(),
		enqueues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "enqueues_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of accepted write operations",
		}),
		dequeues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "dequeues_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of consuming read operations",
		}),
		peeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "peeks_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of peek operations",
		}),
		rejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "rejects_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of writes refused outright",
		}),
		discards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "discards_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of elements dropped unread",
		}),
		elementsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "elements_in_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of elements accepted",
		}),
		elementsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "elements_out_total",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Total number of elements delivered to readers",
		}),
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "occupancy",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Current number of elements in the fifo",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "kfifo",
			Subsystem:   "fifo",
			Name:        "utilization",
			ConstLabels: prometheus.Labels{"fifo": name},
			Help:        "Fifo utilization as a fraction (0.0 to 1.0)",
		}),
	}

	if err := m.register(); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds every instance metric to the registry under the fifo's name.
// On failure it removes only the keys this call added, so a failed
// construction leaves the registry exactly as it found it; another fifo
// already holding the name keeps its metrics.
func (m *fifoMetrics) register() error {
	counters := []struct {
		key string
		c   prometheus.Counter
	}{
		{"fifo_enqueues", m.enqueues},
		{"fifo_dequeues", m.dequeues},
		{"fifo_peeks", m.peeks},
		{"fifo_rejects", m.rejects},
		{"fifo_discards", m.discards},
		{"fifo_elements_in", m.elementsIn},
		{"fifo_elements_out", m.elementsOut},
	}
	gauges := []struct {
		key string
		g   prometheus.Gauge
	}{
		{"fifo_occupancy", m.occupancy},
		{"fifo_utilization", m.utilization},
	}

	var added []string
	rollback := func() {
		for _, key := range added {
			m.registry.Unregister(m.name, key)
		}
	}

	for _, c := range counters {
		if err := m.registry.RegisterCounter(m.name, c.key, c.c); err != nil {
			rollback()
			return err
		}
		added = append(added, c.key)
	}
	for _, g := range gauges {
		if err := m.registry.RegisterGauge(m.name, g.key, g.g); err != nil {
			rollback()
			return err
		}
		added = append(added, g.key)
	}
	return nil
}

// recordEnqueue counts an accepted write and updates occupancy/utilization.
// The transfer size also feeds the registry-wide distribution histogram.
func (m *fifoMetrics) recordEnqueue(accepted, used, capacity int) {
	m.enqueues.Inc()
	m.elementsIn.Add(float64(accepted))
	m.core.ObserveTransfer("enqueue", accepted)
	m.updateOccupancy(used, capacity)
}

// recordDequeue counts a consuming read and updates occupancy/utilization.
func (m *fifoMetrics) recordDequeue(delivered, used, capacity int) {
	m.dequeues.Inc()
	m.elementsOut.Add(float64(delivered))
	m.core.ObserveTransfer("dequeue", delivered)
	m.updateOccupancy(used, capacity)
}

// recordPeek increments the peek counter.
func (m *fifoMetrics) recordPeek() {
	m.peeks.Inc()
}

// recordReject increments the reject counter.
func (m *fifoMetrics) recordReject() {
	m.rejects.Inc()
}

// recordDiscard adds n to the discard counter.
func (m *fifoMetrics) recordDiscard(n int) {
	m.discards.Add(float64(n))
}

// updateOccupancy sets the current occupancy and utilization.
func (m *fifoMetrics) updateOccupancy(used, capacity int) {
	m.occupancy.Set(float64(used))
	m.utilization.Set(float64(used) / float64(capacity))
}

// unregister removes all instance metrics from the registry.
func (m *fifoMetrics) unregister() {
	for _, key := range fifoMetricKeys {
		m.registry.Unregister(m.name, key)
	}
}
