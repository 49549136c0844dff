package kfifo

import (
	"github.com/ubrabbit/kfifo/metric"
)

// Option configures fifo behavior using the functional options pattern.
// This provides a clean, extensible API for configuring fifos.
type Option[T any] func(*fifoOptions[T])

// fifoOptions holds internal configuration for fifo instances.
// Stats are ALWAYS collected - they are not optional.
// Metrics are optional and exposed via WithMetrics().
type fifoOptions[T any] struct {
	// alloc provides backing storage for owning constructors
	alloc Allocator[T]

	// metricsReg is optional - if provided, fifo stats are also exposed as Prometheus metrics
	metricsReg *metric.MetricsRegistry

	// metricsName is used as the fifo label for Prometheus metrics
	metricsName string
}

// WithMetrics enables Prometheus metrics export for fifo statistics.
// If registry is nil, this option is ignored.
// Registry should not be nil in normal usage - this handles edge cases gracefully.
func WithMetrics[T any](registry *metric.MetricsRegistry, name string) Option[T] {
	return func(opts *fifoOptions[T]) {
		if registry != nil && name != "" {
			opts.metricsReg = registry
			opts.metricsName = name
		}
	}
}

// WithAllocator sets the allocator used by owning constructors to obtain
// backing storage. Defaults to plain heap allocation.
func WithAllocator[T any](alloc Allocator[T]) Option[T] {
	return func(opts *fifoOptions[T]) {
		if alloc != nil {
			opts.alloc = alloc
		}
	}
}

// applyOptions applies functional options to create final fifo configuration.
// This is an internal helper used by fifo constructors.
func applyOptions[T any](options ...Option[T]) *fifoOptions[T] {
	opts := &fifoOptions[T]{
		// Default values
		alloc: heapAllocator[T]{},
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
