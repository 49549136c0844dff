package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains module-level lifecycle metrics (not per-fifo)
type Metrics struct {
	// Lifecycle metrics
	FifosCreated *prometheus.CounterVec
	FifosFreed   *prometheus.CounterVec
	FifosActive  *prometheus.GaugeVec
	InitErrors   *prometheus.CounterVec

	// Transfer size distribution, observed by tools that sample bulk moves
	TransferElements *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all lifecycle metrics
func NewMetrics() *Metrics {
	return &Metrics{
		FifosCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kfifo",
				Subsystem: "lifecycle",
				Name:      "created_total",
				Help:      "Total number of fifos constructed",
			},
			[]string{"mode"},
		),

		FifosFreed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kfifo",
				Subsystem: "lifecycle",
				Name:      "freed_total",
				Help:      "Total number of fifos whose backing storage was released",
			},
			[]string{"mode"},
		),

		FifosActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kfifo",
				Subsystem: "lifecycle",
				Name:      "active",
				Help:      "Number of live fifos (created minus freed)",
			},
			[]string{"mode"},
		),

		InitErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kfifo",
				Subsystem: "lifecycle",
				Name:      "init_errors_total",
				Help:      "Total number of fifo construction failures",
			},
			[]string{"reason"},
		),

		TransferElements: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kfifo",
				Subsystem: "transfer",
				Name:      "elements",
				Help:      "Elements moved per bulk operation",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"op"},
		),
	}
}

// RecordFifoCreated increments the created counter and the active gauge
func (c *Metrics) RecordFifoCreated(mode string) {
	c.FifosCreated.WithLabelValues(mode).Inc()
	c.FifosActive.WithLabelValues(mode).Inc()
}

// RecordFifoFreed increments the freed counter and decrements the active gauge
func (c *Metrics) RecordFifoFreed(mode string) {
	c.FifosFreed.WithLabelValues(mode).Inc()
	c.FifosActive.WithLabelValues(mode).Dec()
}

// RecordInitError increments the construction failure counter
func (c *Metrics) RecordInitError(reason string) {
	c.InitErrors.WithLabelValues(reason).Inc()
}

// ObserveTransfer records the size of one bulk transfer
func (c *Metrics) ObserveTransfer(op string, elements int) {
	c.TransferElements.WithLabelValues(op).Observe(float64(elements))
}
