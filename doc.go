// Package kfifo provides lock-free single-producer single-consumer ring
// buffers with a power-of-two capacity, a variable-length record layer,
// built-in statistics tracking, and optional Prometheus metrics integration.
//
// # Overview
//
// The package implements one ring engine exposed through three views. A
// Queue[T] moves fixed-size elements (a byte stream when T is byte). A
// RecordQueue frames variable-length byte records with an embedded length
// header. Lock and LockRecord wrap either view with per-side mutexes when
// more than one goroutine must share a side.
//
// The engine keeps two monotonically increasing indices. The producer owns
// the write index, the consumer owns the read index, and occupancy is their
// wrapping difference. Because capacity is a power of two, a logical index
// maps to a physical slot with a single AND against capacity-1, and a bulk
// transfer crosses the physical boundary at most once.
//
// # Quick Start
//
// Basic fifo creation:
//
//	q, err := kfifo.New[byte](4096)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Producer goroutine
//	accepted := q.Enqueue(data)
//
//	// Consumer goroutine
//	n := q.Dequeue(buf)
//
// With records and metrics:
//
//	rq, err := kfifo.NewRecord(8192, kfifo.Header16,
//		kfifo.WithMetrics[byte](registry, "telemetry_frames"),
//	)
//
//	stored := rq.Enqueue(frame) // all or nothing
//	if stored == 0 && len(frame) > 0 {
//		// backpressure: retry later
//	}
//
// # Concurrency Contract
//
// The unlocked views are safe for exactly one concurrent producer and one
// concurrent consumer, with no locks and no compare-and-swap:
//
//   - Producer side: Enqueue, Put, Reset
//   - Consumer side: Dequeue, Get, Peek, PeekLen, Skip, ResetOut
//
// Each index has a single writer, so plain atomic loads and stores are the
// entire synchronization mechanism. The store that advances an index is the
// publication point: payload copies complete before it, and a peer that
// observes the new index also observes the copied elements. Occupancy
// queries (Len, Avail, IsEmpty, IsFull) are safe from any goroutine and may
// be momentarily stale, never torn.
//
// Reset requires no concurrent activity on either side. ResetOut tolerates a
// correctly serialized producer but not a concurrent consumer. Violations
// are undefined behavior, not detected errors.
//
// For multiple producers or consumers, wrap the fifo:
//
//	mq := kfifo.Lock(q)
//
// Each side gets its own mutex, so producers only contend with producers and
// consumers with consumers.
//
// # Backpressure, Not Errors
//
// The data plane never returns errors. Enqueue reports how many elements
// were accepted; a short count is the backpressure signal. A record Enqueue
// is atomic: when the record plus its header does not fit, nothing is
// written and 0 comes back. Construction is the only error path, and it
// returns classified errors from the errors package (capacity rounding
// below two elements, nil caller buffer, invalid header width, allocation
// failure, metrics registration conflicts).
//
// # Record Framing
//
// Each record occupies a length header plus its payload in the byte ring,
// so header bytes count against capacity. The header holds the payload
// length in little-endian order and is one byte (Header8, payloads to 255)
// or two bytes (Header16, payloads to 65535), chosen at construction.
//
// Dequeue always consumes a whole record. When the destination is shorter
// than the record, the copied prefix is returned and the unread tail is
// discarded permanently; the next call sees the following record. Callers
// that need the full payload should size the destination with PeekLen
// before dequeuing, or track the loss via Stats().Discards().
//
// # Observability Architecture
//
// The package implements a dual-tracking pattern:
//
// Statistics (Always On):
//   - Tracks all operations using atomic counters
//   - Zero configuration required
//   - Available via q.Stats()
//   - Provides computed rates (throughput, reject rate, short-write rate)
//   - No external dependencies
//
// Prometheus Metrics (Optional):
//   - Enabled via WithMetrics() option
//   - Per-instance counters and occupancy gauges with a "fifo" label
//   - Lifecycle metrics (created, freed, active) kept by the registry
//
// Statistics count payload elements; the occupancy gauge counts ring slots,
// which for a record fifo includes header bytes.
//
// # Performance Characteristics
//
// Operations:
//   - Enqueue/Dequeue: O(n) in elements moved, at most two copy calls
//   - Put/Get/Peek/Skip: O(1) plus the copy
//   - Len/Avail/IsFull/IsEmpty: O(1), two atomic loads
//
// Memory:
//   - One pre-allocated slice, no allocations during operation
//   - The write and read indices sit on separate cache lines to avoid
//     false sharing between the producer and consumer cores
//
// Consumed slots are not zeroed. For element types carrying pointers the
// ring keeps the last capacity values reachable until they are overwritten;
// prefer value types or indices for long-lived fifos holding references.
//
// # Testing
//
// The package includes race-detector tests that hammer one producer against
// one consumer, plus property checks for index wraparound and record
// atomicity:
//
//	go test -race .
//
// Benchmarks cover element, bulk, and record transfer paths:
//
//	go test -bench=. .
package kfifo
