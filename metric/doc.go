// Package metric provides Prometheus-based metrics collection and an HTTP
// server for kfifo observability.
//
// The package offers a centralized metrics registry managing both core
// lifecycle metrics (fifo construction, teardown, init failures) and custom
// per-instance metrics. It includes an HTTP server exposing metrics in
// Prometheus format for monitoring system integration.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Lifecycle metrics automatically registered (Metrics type)
//  2. Instance Registry: Extensible registration for per-fifo metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This architecture separates module-wide concerns (how many fifos exist,
// which constructions failed) from per-instance concerns (one fifo's
// enqueue/dequeue counters) while providing a unified metrics endpoint.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	// Start blocks until Stop; a clean shutdown returns nil.
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core lifecycle metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordFifoCreated("element")
//	coreMetrics.ObserveTransfer("enqueue", 256)
//
// The metrics server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at /health.
//
// # Core Metrics
//
// The package automatically registers core lifecycle metrics:
//
//   - Construction: kfifo_lifecycle_created_total{mode}, kfifo_lifecycle_active{mode}
//   - Teardown: kfifo_lifecycle_freed_total{mode}
//   - Failures: kfifo_lifecycle_init_errors_total{reason}
//   - Transfer sizes: kfifo_transfer_elements{op} histogram
//
// The mode label is "element" or "record"; the reason label names the
// construction failure (for example "capacity" or "allocation").
//
// The kfifo package records lifecycle metrics automatically whenever a fifo
// is constructed with the WithMetrics option; no manual calls are needed in
// that path.
//
// # Per-Instance Metrics
//
// Components register custom metrics through the registry:
//
//	depth := prometheus.NewGauge(prometheus.GaugeOpts{
//	    Name: "pipeline_depth",
//	    Help: "Elements queued between producer and consumer",
//	})
//	err := registry.RegisterGauge("pipeline", "depth", depth)
//
// Registered metrics are tracked by "service.metric" key, so the same metric
// name can be unregistered later:
//
//	registry.Unregister("pipeline", "depth")
//
// Duplicate registrations are rejected with a classified Invalid error, both
// at the registry's own key level and at the Prometheus collector level.
//
// # Go Runtime Metrics
//
// The registry automatically includes Go runtime metrics (goroutines, GC,
// memory) and process metrics via the standard Prometheus collectors.
//
// # Thread Safety
//
// All registration and unregistration operations are protected by an internal
// mutex. Metric updates themselves rely on the Prometheus client's own atomic
// primitives and never block fifo operations.
package metric
