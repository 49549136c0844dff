package kfifo

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/ubrabbit/kfifo/errors"
)

// Lifecycle metric mode labels.
const (
	modeElement = "element"
	modeRecord  = "record"
)

// fifo is a lock-free single-producer single-consumer ring buffer.
//
// in and out grow monotonically and are never masked in place; occupancy is
// their wrapping difference and a physical slot is index & mask. Each index
// has exactly one writer: the producer stores in, the consumer stores out.
// The atomic store that advances an index is the publication point - payload
// copies complete before it, so the peer observing the new index also
// observes the copied elements.
type fifo[T any] struct {
	in  uint64
	_   cpu.CacheLinePad // producer and consumer indices on separate cache lines
	out uint64
	_   cpu.CacheLinePad

	mask  uint64 // capacity - 1; 0 means uninitialized or freed
	buf   []T    // length is exactly mask + 1
	owned bool
	mode  string

	stats   *Statistics  // ALWAYS initialized for observability
	metrics *fifoMetrics // Optional Prometheus metrics
	opts    *fifoOptions[T]
}

// newFifo creates a fifo over buf, whose length must already be a power of
// two >= 2. Returns an error if metrics registration fails when requested.
func newFifo[T any](buf []T, owned bool, mode string, opts *fifoOptions[T]) (*fifo[T], error) {
	// Stats are ALWAYS initialized - observability is not optional
	stats := NewStatistics()

	var metrics *fifoMetrics
	// Optionally expose activity as Prometheus metrics
	if opts.metricsReg != nil && opts.metricsName != "" {
		var err error
		metrics, err = newFifoMetrics(opts.metricsReg, opts.metricsName)
		if err != nil {
			recordInitError(opts.metricsReg, "metrics")
			// Wrap preserves the registry's classification (duplicate
			// registration stays Invalid).
			return nil, errors.Wrap(err, "Fifo", "newFifo", "metrics registration")
		}
	}

	return &fifo[T]{
		mask:    uint64(len(buf)) - 1,
		buf:     buf,
		owned:   owned,
		mode:    mode,
		stats:   stats,   // ALWAYS present
		metrics: metrics, // Optional
		opts:    opts,
	}, nil
}

// copyIn copies src into the ring starting at logical index in. The caller
// has already clamped len(src) to the free space, so the copy crosses the
// physical boundary at most once.
func (f *fifo[T]) copyIn(src []T, in uint64) {
	off := in & f.mask
	n := copy(f.buf[off:], src)
	copy(f.buf, src[n:])
}

// copyOut copies elements out of the ring starting at logical index out.
// The caller has already clamped len(dst) to the occupancy.
func (f *fifo[T]) copyOut(dst []T, out uint64) {
	off := out & f.mask
	n := copy(dst, f.buf[off:])
	copy(dst[n:], f.buf)
}

// Enqueue copies as many elements of src as fit and returns how many were
// accepted. A short count means the fifo ran out of space; it is the
// backpressure signal, not an error.
func (f *fifo[T]) Enqueue(src []T) int {
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	n := uint64(len(src))
	if unused := f.mask + 1 - (in - out); n > unused {
		n = unused
	}
	f.copyIn(src[:n], in)
	atomic.StoreUint64(&f.in, in+n)

	// ALWAYS track in stats
	f.stats.Enqueue(int(n), len(src))

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordEnqueue(int(n), int(in+n-out), f.Cap())
	}

	return int(n)
}

// Dequeue copies up to len(dst) queued elements into dst, consuming them.
func (f *fifo[T]) Dequeue(dst []T) int {
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	n := uint64(len(dst))
	if used := in - out; n > used {
		n = used
	}
	f.copyOut(dst[:n], out)
	atomic.StoreUint64(&f.out, out+n)

	// ALWAYS track in stats
	f.stats.Dequeue(int(n))

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordDequeue(int(n), int(in-out-n), f.Cap())
	}

	return int(n)
}

// Peek copies up to len(dst) queued elements into dst without consuming
// them. Repeatable with no side effects beyond statistics.
func (f *fifo[T]) Peek(dst []T) int {
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	n := uint64(len(dst))
	if used := in - out; n > used {
		n = used
	}
	f.copyOut(dst[:n], out)

	// ALWAYS track in stats
	f.stats.Peek()

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordPeek()
	}

	return int(n)
}

// Put appends a single element. Returns false if the fifo was full.
func (f *fifo[T]) Put(elem T) bool {
	if f.mask == 0 {
		return false
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	if in-out > f.mask {
		// ALWAYS track in stats
		f.stats.Reject()

		// ALSO track in metrics if enabled
		if f.metrics != nil {
			f.metrics.recordReject()
		}
		return false
	}

	f.buf[in&f.mask] = elem
	atomic.StoreUint64(&f.in, in+1)

	// ALWAYS track in stats
	f.stats.Enqueue(1, 1)

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordEnqueue(1, int(in+1-out), f.Cap())
	}

	return true
}

// Get removes and returns a single element. Returns the zero value and
// false if the fifo was empty; empty reads are not counted in statistics.
func (f *fifo[T]) Get() (T, bool) {
	var zero T
	if f.mask == 0 {
		return zero, false
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	if in == out {
		return zero, false
	}

	elem := f.buf[out&f.mask]
	atomic.StoreUint64(&f.out, out+1)

	// ALWAYS track in stats
	f.stats.Dequeue(1)

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordDequeue(1, int(in-out-1), f.Cap())
	}

	return elem, true
}

// Skip consumes up to n elements without copying them out and returns how
// many were skipped.
func (f *fifo[T]) Skip(n int) int {
	if f.mask == 0 || n <= 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	k := uint64(n)
	if used := in - out; k > used {
		k = used
	}
	atomic.StoreUint64(&f.out, out+k)

	// ALWAYS track in stats
	f.stats.Skip(int(k))

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.updateOccupancy(int(in-out-k), f.Cap())
	}

	return int(k)
}

// Len returns the current number of queued elements.
func (f *fifo[T]) Len() int {
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)
	return int(in - out)
}

// Cap returns the fixed capacity in elements. A freed fifo reports 0.
func (f *fifo[T]) Cap() int {
	if f.mask == 0 {
		return 0
	}
	return int(f.mask + 1)
}

// Avail returns the free space in elements.
func (f *fifo[T]) Avail() int {
	return f.Cap() - f.Len()
}

// IsEmpty returns true if no elements are queued.
func (f *fifo[T]) IsEmpty() bool {
	return f.Len() == 0
}

// IsFull returns true if the fifo is at capacity.
func (f *fifo[T]) IsFull() bool {
	return uint64(f.Len()) > f.mask
}

// Initialized returns true if the fifo is usable. A freed fifo reports
// false and all its operations are inert.
func (f *fifo[T]) Initialized() bool {
	return f.mask != 0
}

// Reset discards all queued elements and zeroes both indices. The caller
// must guarantee no concurrent producer or consumer; a reset racing either
// side corrupts the occupancy accounting.
func (f *fifo[T]) Reset() {
	atomic.StoreUint64(&f.out, 0)
	atomic.StoreUint64(&f.in, 0)

	if f.metrics != nil {
		f.metrics.updateOccupancy(0, f.Cap())
	}
}

// ResetOut discards all queued elements as if consumed, by advancing the
// read index to the write index. A correctly serialized producer may keep
// writing concurrently; the caller must guarantee no concurrent consumer.
func (f *fifo[T]) ResetOut() {
	in := atomic.LoadUint64(&f.in)
	atomic.StoreUint64(&f.out, in)

	if f.metrics != nil {
		f.metrics.updateOccupancy(0, f.Cap())
	}
}

// Stats returns fifo statistics (always available for observability).
func (f *fifo[T]) Stats() *Statistics {
	return f.stats
}

// Free releases the backing storage and leaves the fifo uninitialized.
// Owned storage goes back to the allocator; borrowed storage is only
// detached. Instance metrics are unregistered so the name can be reused.
// Idempotent. The caller must guarantee no concurrent access.
func (f *fifo[T]) Free() {
	if f.buf == nil {
		return
	}
	buf := f.buf
	f.buf = nil
	f.mask = 0
	atomic.StoreUint64(&f.in, 0)
	atomic.StoreUint64(&f.out, 0)

	if f.owned {
		f.opts.alloc.Free(buf)
	}
	if f.metrics != nil {
		f.metrics.unregister()
		f.metrics = nil
	}
	recordFreed(f.opts.metricsReg, f.mode)
}
