package kfifo

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "github.com/ubrabbit/kfifo/errors"
	"github.com/ubrabbit/kfifo/testutil"
)

func TestQueueInitialState(t *testing.T) {
	q, err := New[int](5)
	require.NoError(t, err, "Failed to create fifo")
	defer q.Free()

	if q.Cap() != 8 {
		t.Errorf("Expected capacity rounded up to 8, got %d", q.Cap())
	}
	if q.Len() != 0 {
		t.Errorf("Expected initial length 0, got %d", q.Len())
	}
	if q.Avail() != 8 {
		t.Errorf("Expected 8 free slots, got %d", q.Avail())
	}
	if !q.IsEmpty() {
		t.Error("Expected fifo to be empty initially")
	}
	if q.IsFull() {
		t.Error("Expected fifo not to be full initially")
	}
	if !q.Initialized() {
		t.Error("Expected fifo to report initialized")
	}
}

// TestByteStreamBackpressure walks a capacity-8 byte fifo through a short
// write, a wrapping read and a refill, checking counts at every step.
func TestByteStreamBackpressure(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err, "Failed to create fifo")
	defer q.Free()

	if n := q.Enqueue([]byte("ABCDE")); n != 5 {
		t.Fatalf("Expected 5 accepted, got %d", n)
	}
	if q.Len() != 5 || q.Avail() != 3 {
		t.Errorf("Expected occupancy 5 with 3 free, got %d and %d", q.Len(), q.Avail())
	}

	// Only "FGH" fits; the short count is the backpressure signal.
	if n := q.Enqueue([]byte("FGHIJ")); n != 3 {
		t.Fatalf("Expected short write of 3, got %d", n)
	}
	if !q.IsFull() {
		t.Error("Expected fifo to be full")
	}

	dst := make([]byte, 4)
	if n := q.Dequeue(dst); n != 4 {
		t.Fatalf("Expected 4 dequeued, got %d", n)
	}
	if string(dst) != "ABCD" {
		t.Errorf("Expected ABCD, got %q", dst)
	}
	if q.Len() != 4 {
		t.Errorf("Expected occupancy 4, got %d", q.Len())
	}

	if n := q.Enqueue([]byte("XY")); n != 2 {
		t.Fatalf("Expected 2 accepted, got %d", n)
	}
	if q.Len() != 6 {
		t.Errorf("Expected occupancy 6, got %d", q.Len())
	}

	// Drain across the physical boundary and verify order survived.
	rest := make([]byte, 6)
	if n := q.Dequeue(rest); n != 6 {
		t.Fatalf("Expected 6 dequeued, got %d", n)
	}
	if string(rest) != "EFGHXY" {
		t.Errorf("Expected EFGHXY, got %q", rest)
	}
}

func TestCapacityRounding(t *testing.T) {
	ownedCases := []struct {
		size int
		want int
	}{
		{2, 2},
		{3, 4},
		{5, 8},
		{8, 8},
		{9, 16},
		{1000, 1024},
	}
	for _, tc := range ownedCases {
		t.Run(fmt.Sprintf("New_%d", tc.size), func(t *testing.T) {
			q, err := New[byte](tc.size)
			require.NoError(t, err)
			defer q.Free()
			if q.Cap() != tc.want {
				t.Errorf("New(%d): expected capacity %d, got %d", tc.size, tc.want, q.Cap())
			}
		})
	}

	borrowedCases := []struct {
		len  int
		want int
	}{
		{2, 2},
		{3, 2},
		{8, 8},
		{12, 8},
		{1000, 512},
	}
	for _, tc := range borrowedCases {
		t.Run(fmt.Sprintf("NewWithBuffer_%d", tc.len), func(t *testing.T) {
			q, err := NewWithBuffer(make([]byte, tc.len))
			require.NoError(t, err)
			defer q.Free()
			if q.Cap() != tc.want {
				t.Errorf("NewWithBuffer(len %d): expected capacity %d, got %d", tc.len, tc.want, q.Cap())
			}
		})
	}
}

// TestFullExactlyAtRoundedCapacity verifies the borrowed buffer's excess
// slots beyond the rounded capacity are never used.
func TestFullExactlyAtRoundedCapacity(t *testing.T) {
	q, err := NewWithBuffer(make([]int, 12)) // rounds down to 8
	require.NoError(t, err)
	defer q.Free()

	for i := 0; i < 8; i++ {
		if !q.Put(i) {
			t.Fatalf("Put %d should fit", i)
		}
	}
	if !q.IsFull() {
		t.Error("Expected full after 8 elements")
	}
	if q.Put(99) {
		t.Error("Put into a full fifo should fail")
	}
}

func TestPutGetOrdering(t *testing.T) {
	q, err := New[int](4)
	require.NoError(t, err)
	defer q.Free()

	for i := 1; i <= 4; i++ {
		if !q.Put(i) {
			t.Fatalf("Put %d failed on non-full fifo", i)
		}
	}
	if q.Put(5) {
		t.Error("Put should fail when full")
	}

	for i := 1; i <= 4; i++ {
		v, ok := q.Get()
		if !ok {
			t.Fatalf("Get %d failed on non-empty fifo", i)
		}
		if v != i {
			t.Errorf("Expected %d, got %d", i, v)
		}
	}
	if _, ok := q.Get(); ok {
		t.Error("Get on empty fifo should fail")
	}
}

// TestBulkAndSingleElementInterop mixes the bulk and single-element paths on
// one fifo and verifies order is preserved across them.
func TestBulkAndSingleElementInterop(t *testing.T) {
	q, err := New[int](8)
	require.NoError(t, err)
	defer q.Free()

	if n := q.Enqueue([]int{1, 2, 3}); n != 3 {
		t.Fatalf("Expected 3 accepted, got %d", n)
	}
	if !q.Put(4) {
		t.Fatal("Put failed with space available")
	}

	v, ok := q.Get()
	if !ok || v != 1 {
		t.Fatalf("Get: expected 1, got %d (ok=%v)", v, ok)
	}

	dst := make([]int, 2)
	if n := q.Dequeue(dst); n != 2 || dst[0] != 2 || dst[1] != 3 {
		t.Fatalf("Dequeue: expected [2 3], got %v (n=%d)", dst[:n], n)
	}

	v, ok = q.Get()
	if !ok || v != 4 {
		t.Fatalf("Get: expected 4, got %d (ok=%v)", v, ok)
	}
	if !q.IsEmpty() {
		t.Errorf("Expected empty fifo, occupancy %d", q.Len())
	}
}

func TestPeekIdempotent(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)
	defer q.Free()

	q.Enqueue([]byte("abc"))

	first := make([]byte, 8)
	second := make([]byte, 8)
	n1 := q.Peek(first)
	n2 := q.Peek(second)

	if n1 != 3 || n2 != 3 {
		t.Fatalf("Expected both peeks to see 3 bytes, got %d and %d", n1, n2)
	}
	if string(first[:n1]) != "abc" || string(second[:n2]) != "abc" {
		t.Errorf("Peeks disagree: %q vs %q", first[:n1], second[:n2])
	}
	if q.Len() != 3 {
		t.Errorf("Peek must not consume; occupancy is %d", q.Len())
	}

	drained := make([]byte, 3)
	q.Dequeue(drained)
	if string(drained) != "abc" {
		t.Errorf("Dequeue after peek returned %q", drained)
	}
}

func TestSkip(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)
	defer q.Free()

	q.Enqueue([]byte("abcdef"))

	if n := q.Skip(2); n != 2 {
		t.Fatalf("Expected to skip 2, got %d", n)
	}
	dst := make([]byte, 8)
	if n := q.Dequeue(dst); n != 4 || string(dst[:n]) != "cdef" {
		t.Errorf("Expected cdef after skip, got %q (n=%d)", dst[:n], n)
	}

	if n := q.Skip(10); n != 0 {
		t.Errorf("Skip on empty fifo should return 0, got %d", n)
	}

	q.Enqueue([]byte("xy"))
	if n := q.Skip(10); n != 2 {
		t.Errorf("Skip should clamp to occupancy 2, got %d", n)
	}
	if n := q.Skip(-1); n != 0 {
		t.Errorf("Negative skip should return 0, got %d", n)
	}
}

func TestReset(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)
	defer q.Free()

	q.Enqueue([]byte("abcdef"))
	q.Reset()

	if !q.IsEmpty() {
		t.Error("Expected empty after reset")
	}
	if n := q.Enqueue([]byte("ABCDEFGH")); n != 8 {
		t.Errorf("Expected full capacity after reset, accepted %d", n)
	}
}

func TestResetOut(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)
	defer q.Free()

	q.Enqueue([]byte("abcd"))
	q.ResetOut()

	if !q.IsEmpty() {
		t.Error("Expected empty after ResetOut")
	}
	dst := make([]byte, 8)
	if n := q.Dequeue(dst); n != 0 {
		t.Errorf("Expected nothing after ResetOut, got %d bytes", n)
	}

	// The write index keeps running; new data lands after the discard point.
	if n := q.Enqueue([]byte("ef")); n != 2 {
		t.Fatalf("Expected 2 accepted after ResetOut, got %d", n)
	}
	if n := q.Dequeue(dst); n != 2 || string(dst[:n]) != "ef" {
		t.Errorf("Expected ef, got %q (n=%d)", dst[:n], n)
	}
}

// TestWraparoundIntegrity churns far more data than the capacity through a
// small ring with mismatched chunk sizes, verifying every byte in order and
// the occupancy bound after every operation.
func TestWraparoundIntegrity(t *testing.T) {
	q, err := New[byte](16)
	require.NoError(t, err)
	defer q.Free()

	const total = 10000
	src := make([]byte, 7)
	dst := make([]byte, 5)
	var wrote, read int
	var next, want byte

	for read < total {
		if wrote < total {
			chunk := src[:1+wrote%len(src)]
			testutil.FillSequence(chunk, next)
			n := q.Enqueue(chunk)
			next += byte(n)
			wrote += n
		}

		if l := q.Len(); l < 0 || l > q.Cap() {
			t.Fatalf("occupancy %d outside [0, %d]", l, q.Cap())
		}

		n := q.Dequeue(dst[:1+read%len(dst)])
		var err error
		if want, err = testutil.VerifySequence(dst[:n], want); err != nil {
			t.Fatalf("at offset %d: %v", read, err)
		}
		read += n
	}
}

// TestIndexCounterWrap parks both indices just below the uint64 limit and
// pushes a transfer across it. Occupancy is the wrapping difference and the
// capacity divides the counter range, so nothing may glitch at the boundary.
func TestIndexCounterWrap(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)
	defer q.Free()

	f := q.(*fifo[byte])
	start := ^uint64(0) - 3
	atomic.StoreUint64(&f.in, start)
	atomic.StoreUint64(&f.out, start)

	payload := []byte("wrapwrap")
	if n := q.Enqueue(payload); n != 8 {
		t.Fatalf("Expected 8 accepted across the counter wrap, got %d", n)
	}
	if q.Len() != 8 || !q.IsFull() {
		t.Fatalf("Expected full fifo, occupancy %d", q.Len())
	}

	dst := make([]byte, 8)
	if n := q.Dequeue(dst); n != 8 {
		t.Fatalf("Expected 8 dequeued, got %d", n)
	}
	if string(dst) != string(payload) {
		t.Errorf("Expected %q, got %q", payload, dst)
	}
	if !q.IsEmpty() {
		t.Error("Expected empty after draining across the wrap")
	}
}

func TestGenericElementTypes(t *testing.T) {
	type reading struct {
		ID    int
		Value float64
	}

	q, err := New[reading](4)
	require.NoError(t, err)
	defer q.Free()

	in := []reading{{1, 1.5}, {2, 2.5}, {3, 3.5}}
	if n := q.Enqueue(in); n != 3 {
		t.Fatalf("Expected 3 accepted, got %d", n)
	}

	out := make([]reading, 3)
	if n := q.Dequeue(out); n != 3 {
		t.Fatalf("Expected 3 dequeued, got %d", n)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("Element %d: expected %+v, got %+v", i, in[i], out[i])
		}
	}
}

func TestFree(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)

	q.Enqueue([]byte("ab"))
	q.Free()

	if q.Initialized() {
		t.Error("Expected uninitialized after Free")
	}
	if q.Cap() != 0 {
		t.Errorf("Expected capacity 0 after Free, got %d", q.Cap())
	}
	if n := q.Enqueue([]byte("x")); n != 0 {
		t.Errorf("Enqueue after Free should accept nothing, got %d", n)
	}
	if q.Put('x') {
		t.Error("Put after Free should fail")
	}
	if _, ok := q.Get(); ok {
		t.Error("Get after Free should fail")
	}

	// Idempotent
	q.Free()
}

// trackingAllocator counts allocator round-trips.
type trackingAllocator struct {
	allocs int
	frees  int
}

func (a *trackingAllocator) Alloc(n int) ([]byte, error) {
	a.allocs++
	return make([]byte, n), nil
}

func (a *trackingAllocator) Free(buf []byte) {
	a.frees++
}

type failingAllocator struct{}

func (failingAllocator) Alloc(n int) ([]byte, error) {
	return nil, errors.New("backing store exhausted")
}

func (failingAllocator) Free(buf []byte) {}

type shortAllocator struct{}

func (shortAllocator) Alloc(n int) ([]byte, error) {
	return make([]byte, n/2), nil
}

func (shortAllocator) Free(buf []byte) {}

func TestCustomAllocator(t *testing.T) {
	alloc := &trackingAllocator{}
	q, err := New[byte](8, WithAllocator[byte](alloc))
	require.NoError(t, err)

	if alloc.allocs != 1 {
		t.Errorf("Expected 1 allocation, got %d", alloc.allocs)
	}
	q.Free()
	if alloc.frees != 1 {
		t.Errorf("Expected 1 release, got %d", alloc.frees)
	}
}

func TestAllocatorFailure(t *testing.T) {
	_, err := New[byte](8, WithAllocator[byte](failingAllocator{}))
	if err == nil {
		t.Fatal("Expected error from failing allocator")
	}
	if !cerrors.IsFatal(err) {
		t.Errorf("Expected fatal classification, got %v", cerrors.Classify(err))
	}

	_, err = New[byte](8, WithAllocator[byte](shortAllocator{}))
	if err == nil {
		t.Fatal("Expected error from short allocation")
	}
	if !errors.Is(err, cerrors.ErrAllocationFailed) {
		t.Errorf("Expected ErrAllocationFailed, got %v", err)
	}
}

func TestConstructorValidation(t *testing.T) {
	testCases := []struct {
		name     string
		build    func() error
		sentinel error
	}{
		{
			name: "zero size",
			build: func() error {
				_, err := New[byte](0)
				return err
			},
			sentinel: cerrors.ErrCapacityTooSmall,
		},
		{
			name: "size one rounds below two",
			build: func() error {
				_, err := New[byte](1)
				return err
			},
			sentinel: cerrors.ErrCapacityTooSmall,
		},
		{
			name: "negative size",
			build: func() error {
				_, err := New[byte](-5)
				return err
			},
			sentinel: cerrors.ErrCapacityTooSmall,
		},
		{
			name: "nil buffer",
			build: func() error {
				_, err := NewWithBuffer[byte](nil)
				return err
			},
			sentinel: cerrors.ErrNilBuffer,
		},
		{
			name: "one-element buffer",
			build: func() error {
				_, err := NewWithBuffer(make([]byte, 1))
				return err
			},
			sentinel: cerrors.ErrCapacityTooSmall,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build()
			if err == nil {
				t.Fatal("Expected construction to fail")
			}
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("Expected %v in chain, got %v", tc.sentinel, err)
			}
			if !cerrors.IsInvalid(err) {
				t.Errorf("Expected invalid classification, got %v", cerrors.Classify(err))
			}
		})
	}
}

func TestErrorFrameworkIntegration(t *testing.T) {
	_, err := New[byte](0)
	if err == nil {
		t.Fatal("Expected error for zero capacity")
	}

	var classifiedErr *cerrors.ClassifiedError
	if !errors.As(err, &classifiedErr) {
		t.Fatal("Expected error to be classified")
	}
	if classifiedErr.Class != cerrors.ErrorInvalid {
		t.Errorf("Expected ErrorInvalid class, got %v", classifiedErr.Class)
	}
	if classifiedErr.Component != "Fifo" {
		t.Errorf("Expected component 'Fifo', got %s", classifiedErr.Component)
	}
	if classifiedErr.Operation != "New" {
		t.Errorf("Expected operation 'New', got %s", classifiedErr.Operation)
	}
}

func TestStatisticsTracking(t *testing.T) {
	q, err := New[byte](8)
	require.NoError(t, err)
	defer q.Free()

	stats := q.Stats()
	require.NotNil(t, stats, "Stats must always be enabled")

	q.Enqueue([]byte("ABCDE")) // 5 accepted
	q.Enqueue([]byte("FGHIJ")) // 3 accepted, short

	if stats.Enqueues() != 2 {
		t.Errorf("Expected 2 enqueues, got %d", stats.Enqueues())
	}
	if stats.ElementsIn() != 8 {
		t.Errorf("Expected 8 elements in, got %d", stats.ElementsIn())
	}
	if stats.ShortWrites() != 1 {
		t.Errorf("Expected 1 short write, got %d", stats.ShortWrites())
	}

	dst := make([]byte, 4)
	q.Dequeue(dst)
	if stats.Dequeues() != 1 || stats.ElementsOut() != 4 {
		t.Errorf("Expected 1 dequeue of 4 elements, got %d and %d",
			stats.Dequeues(), stats.ElementsOut())
	}

	q.Peek(dst)
	if stats.Peeks() != 1 {
		t.Errorf("Expected 1 peek, got %d", stats.Peeks())
	}

	q.Enqueue([]byte("XYZW")) // refill to full
	if q.Put('!') {
		t.Fatal("Put should fail on a full fifo")
	}
	if stats.Rejects() != 1 {
		t.Errorf("Expected 1 reject, got %d", stats.Rejects())
	}

	if n := q.Skip(2); n != 2 {
		t.Fatalf("Expected to skip 2, got %d", n)
	}
	if stats.Skips() != 2 {
		t.Errorf("Expected 2 skipped elements, got %d", stats.Skips())
	}

	summary := stats.Summary()
	if summary.Enqueues != 3 || summary.ElementsIn != 12 {
		t.Errorf("Summary mismatch: %+v", summary)
	}
	if summary.RejectRate != 0.25 {
		t.Errorf("Expected reject rate 0.25, got %f", summary.RejectRate)
	}

	stats.Reset()
	if stats.Enqueues() != 0 || stats.ElementsIn() != 0 {
		t.Error("Expected zeroed statistics after reset")
	}
}

// TestSingleProducerSingleConsumer streams a megabyte through a small fifo
// with one producer and one consumer goroutine and no locks, verifying the
// byte sequence end to end. Run with -race.
func TestSingleProducerSingleConsumer(t *testing.T) {
	const total = 1 << 20

	q, err := New[byte](1024)
	require.NoError(t, err)
	defer q.Free()

	stop := make(chan struct{})
	done := make(chan error, 2)

	// Monitor role: occupancy queries are safe from any goroutine.
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				if l := q.Len(); l < 0 || l > q.Cap() {
					done <- fmt.Errorf("occupancy %d outside [0, %d]", l, q.Cap())
					return
				}
				runtime.Gosched()
			}
		}
	}()

	go func() {
		var want byte
		var got int
		dst := make([]byte, 300)
		for got < total {
			n := q.Dequeue(dst[:1+got%len(dst)])
			if n == 0 {
				runtime.Gosched()
				continue
			}
			next, err := testutil.VerifySequence(dst[:n], want)
			if err != nil {
				done <- fmt.Errorf("at offset %d: %w", got, err)
				return
			}
			want = next
			got += n
		}
		done <- nil
	}()

	var next byte
	var sent int
	src := make([]byte, 250)
	for sent < total {
		k := 1 + sent%len(src)
		if k > total-sent {
			k = total - sent
		}
		chunk := src[:k]
		testutil.FillSequence(chunk, next)
		n := q.Enqueue(chunk)
		if n == 0 {
			runtime.Gosched()
			continue
		}
		next += byte(n)
		sent += n
	}

	err = <-done
	close(stop)
	if err != nil {
		t.Fatal(err)
	}
}
