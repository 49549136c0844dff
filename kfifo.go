package kfifo

import (
	"github.com/ubrabbit/kfifo/errors"
	"github.com/ubrabbit/kfifo/metric"
	"github.com/ubrabbit/kfifo/pkg/pow2"
)

// Queue represents a generic fifo interface that all fifo implementations
// must satisfy. The queue is parameterized by element type T for type safety.
//
// The lock-free implementation returned by New and NewWithBuffer is safe for
// exactly one concurrent producer and one concurrent consumer. The producer
// side is Enqueue, Put and Reset; the consumer side is Dequeue, Get, Peek,
// Skip and ResetOut. Wrap with Lock when either side has multiple goroutines.
type Queue[T any] interface {
	// Enqueue copies as many elements of src as fit and returns how many were
	// accepted. A short count is the backpressure signal, never an error.
	Enqueue(src []T) int

	// Dequeue copies up to len(dst) elements into dst, consuming them.
	// Returns the number of elements copied; 0 means the fifo was empty.
	Dequeue(dst []T) int

	// Peek copies up to len(dst) elements into dst without consuming them.
	// Repeatable with no side effects beyond statistics.
	Peek(dst []T) int

	// Put appends a single element. Returns false if the fifo was full.
	Put(elem T) bool

	// Get removes and returns a single element.
	// Returns the zero value and false if the fifo was empty.
	Get() (T, bool)

	// Skip consumes up to n elements without copying them out and returns
	// how many were skipped.
	Skip(n int) int

	// Len returns the current number of queued elements.
	Len() int

	// Cap returns the fixed capacity in elements.
	Cap() int

	// Avail returns the free space in elements (Cap - Len).
	Avail() int

	// IsEmpty returns true if no elements are queued.
	IsEmpty() bool

	// IsFull returns true if the fifo is at capacity.
	IsFull() bool

	// Initialized returns true if the fifo is usable. A freed fifo reports
	// false and all its operations are inert.
	Initialized() bool

	// Reset discards all queued elements and zeroes both indices.
	// The caller must guarantee no concurrent producer or consumer.
	Reset()

	// ResetOut discards all queued elements as if consumed. Safe against a
	// correctly serialized concurrent producer; the caller must guarantee no
	// concurrent consumer.
	ResetOut()

	// Stats returns fifo statistics (always available for observability).
	Stats() *Statistics

	// Free releases the backing storage and leaves the fifo uninitialized.
	// For a borrowed buffer it only detaches. Idempotent.
	Free()
}

// New creates a fifo that owns its storage, allocated for at least size
// elements. The capacity is rounded up to the next power of two. Sizes that
// round to fewer than 2 elements are rejected: a 0-or-1-slot ring cannot
// distinguish empty from full under index-difference occupancy.
//
// Stats are ALWAYS collected for observability. Metrics are optional via
// WithMetrics(). Returns an error if metrics registration fails when
// metrics are requested.
func New[T any](size int, options ...Option[T]) (Queue[T], error) {
	opts := applyOptions(options...)
	f, err := newOwnedFifo(size, modeElement, "New", opts)
	if err != nil {
		return nil, err
	}
	recordCreated(opts.metricsReg, modeElement)
	return f, nil
}

// NewWithBuffer creates a fifo over caller-supplied storage. The usable
// capacity is the length of buf rounded down to a power of two; any excess
// slots are never touched. The fifo borrows buf for its lifetime and Free
// only detaches it.
func NewWithBuffer[T any](buf []T, options ...Option[T]) (Queue[T], error) {
	opts := applyOptions(options...)
	f, err := newBorrowedFifo(buf, modeElement, "NewWithBuffer", opts)
	if err != nil {
		return nil, err
	}
	recordCreated(opts.metricsReg, modeElement)
	return f, nil
}

// newOwnedFifo allocates storage rounded up to a power of two and builds a
// fifo that owns it. method names the public constructor for error context.
func newOwnedFifo[T any](size int, mode, method string, opts *fifoOptions[T]) (*fifo[T], error) {
	if size < 0 {
		recordInitError(opts.metricsReg, "capacity")
		return nil, errors.WrapInvalid(errors.ErrCapacityTooSmall, "Fifo", method, "negative size")
	}
	capacity := pow2.RoundUp(uint64(size))
	if capacity < 2 {
		recordInitError(opts.metricsReg, "capacity")
		return nil, errors.WrapInvalid(errors.ErrCapacityTooSmall, "Fifo", method, "capacity rounds below 2")
	}

	buf, err := opts.alloc.Alloc(int(capacity))
	if err != nil {
		recordInitError(opts.metricsReg, "allocation")
		return nil, errors.WrapFatal(err, "Fifo", method, "backing storage allocation")
	}
	if uint64(len(buf)) < capacity {
		opts.alloc.Free(buf)
		recordInitError(opts.metricsReg, "allocation")
		return nil, errors.WrapFatal(errors.ErrAllocationFailed, "Fifo", method, "allocator returned short buffer")
	}

	f, err := newFifo(buf[:capacity], true, mode, opts)
	if err != nil {
		opts.alloc.Free(buf)
		return nil, err
	}
	return f, nil
}

// newBorrowedFifo builds a fifo over caller storage, rounding the usable
// capacity down to a power of two.
func newBorrowedFifo[T any](buf []T, mode, method string, opts *fifoOptions[T]) (*fifo[T], error) {
	if buf == nil {
		recordInitError(opts.metricsReg, "buffer")
		return nil, errors.WrapInvalid(errors.ErrNilBuffer, "Fifo", method, "nil backing buffer")
	}
	capacity := pow2.RoundDown(uint64(len(buf)))
	if capacity < 2 {
		recordInitError(opts.metricsReg, "capacity")
		return nil, errors.WrapInvalid(errors.ErrCapacityTooSmall, "Fifo", method, "capacity rounds below 2")
	}

	return newFifo(buf[:capacity], false, mode, opts)
}

// recordCreated bumps the lifecycle metrics when a registry is attached.
func recordCreated(registry *metric.MetricsRegistry, mode string) {
	if registry != nil {
		registry.CoreMetrics().RecordFifoCreated(mode)
	}
}

// recordFreed bumps the lifecycle metrics when a registry is attached.
func recordFreed(registry *metric.MetricsRegistry, mode string) {
	if registry != nil {
		registry.CoreMetrics().RecordFifoFreed(mode)
	}
}

// recordInitError counts a failed construction when a registry is attached.
func recordInitError(registry *metric.MetricsRegistry, reason string) {
	if registry != nil {
		registry.CoreMetrics().RecordInitError(reason)
	}
}
