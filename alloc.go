package kfifo

// Allocator provides backing storage for owning fifos. Implementations
// may pool or recycle slices; Alloc must return a slice with at least n
// elements and Free receives exactly the slice Alloc returned.
type Allocator[T any] interface {
	// Alloc obtains a slice of at least n elements.
	Alloc(n int) ([]T, error)

	// Free releases a slice previously returned by Alloc.
	Free(buf []T)
}

// heapAllocator is the default Allocator backed by the Go heap.
type heapAllocator[T any] struct{}

func (heapAllocator[T]) Alloc(n int) ([]T, error) {
	return make([]T, n), nil
}

func (heapAllocator[T]) Free([]T) {
	// Garbage collected once the fifo drops its reference.
}
