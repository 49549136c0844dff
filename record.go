package kfifo

import (
	"sync/atomic"

	"github.com/ubrabbit/kfifo/errors"
)

// HeaderWidth selects the length-header encoding for a record fifo.
type HeaderWidth int

const (
	// Header8 stores record lengths in one byte; payloads up to 255 bytes.
	Header8 HeaderWidth = 1

	// Header16 stores record lengths in two little-endian bytes; payloads
	// up to 65535 bytes.
	Header16 HeaderWidth = 2
)

// String returns a human-readable representation of the header width.
func (w HeaderWidth) String() string {
	switch w {
	case Header8:
		return "Header8"
	case Header16:
		return "Header16"
	default:
		return "Unknown"
	}
}

// MaxRecordLen returns the largest payload length this header width can encode.
func (w HeaderWidth) MaxRecordLen() int {
	return 1<<(8*w) - 1
}

// RecordQueue stores variable-length byte records in fifo order. Each record
// occupies a length header plus its payload in the underlying ring, so header
// bytes count against capacity.
//
// The same single-producer single-consumer contract as Queue applies: the
// producer side is Enqueue and Reset, the consumer side is Dequeue, Peek,
// PeekLen, Skip and ResetOut.
type RecordQueue interface {
	// Enqueue stores rec as one record, all or nothing. Returns len(rec) on
	// success. Returns 0 without writing anything when the record plus its
	// header exceeds the free space, or when len(rec) exceeds MaxRecordLen.
	// An accepted empty record also returns 0; Stats disambiguates.
	Enqueue(rec []byte) int

	// Dequeue copies the head record into dst and consumes the whole record.
	// Returns the number of bytes copied, min(len(dst), record length).
	// When dst is shorter than the record the unread tail is discarded; the
	// next call sees the following record. Returns 0 if the fifo was empty.
	Dequeue(dst []byte) int

	// Peek copies the head record into dst without consuming it.
	Peek(dst []byte) int

	// PeekLen returns the payload length of the head record without
	// consuming it, or 0 if the fifo is empty.
	PeekLen() int

	// Skip consumes the head record without copying it and returns its
	// payload length, or 0 if the fifo was empty.
	Skip() int

	// Len returns the queued bytes including record headers.
	Len() int

	// Cap returns the fixed capacity in bytes.
	Cap() int

	// Avail returns the largest payload Enqueue can currently accept,
	// accounting for the header and capped at MaxRecordLen.
	Avail() int

	// IsEmpty returns true if no records are queued.
	IsEmpty() bool

	// IsFull returns true if the underlying ring is at capacity.
	IsFull() bool

	// Initialized returns true if the fifo is usable.
	Initialized() bool

	// MaxRecordLen returns the largest payload length a single record may carry.
	MaxRecordLen() int

	// HeaderWidth returns the length-header encoding chosen at construction.
	HeaderWidth() HeaderWidth

	// Reset discards all queued records and zeroes both indices. The caller
	// must guarantee no concurrent producer or consumer.
	Reset()

	// ResetOut discards all queued records as if consumed. Safe against a
	// correctly serialized concurrent producer.
	ResetOut()

	// Stats returns fifo statistics. Element counts are payload bytes;
	// header bytes appear only in occupancy.
	Stats() *Statistics

	// Free releases the backing storage. Idempotent.
	Free()
}

// NewRecord creates a record fifo that owns its storage, allocated for at
// least size bytes and rounded up to the next power of two.
func NewRecord(size int, width HeaderWidth, options ...Option[byte]) (RecordQueue, error) {
	opts := applyOptions(options...)
	if width != Header8 && width != Header16 {
		recordInitError(opts.metricsReg, "header")
		return nil, errors.WrapInvalid(errors.ErrInvalidHeaderWidth, "RecordFifo", "NewRecord", "header width must be 1 or 2 bytes")
	}
	f, err := newOwnedFifo(size, modeRecord, "NewRecord", opts)
	if err != nil {
		return nil, err
	}
	recordCreated(opts.metricsReg, modeRecord)
	return &recordFifo{f: f, width: width}, nil
}

// NewRecordWithBuffer creates a record fifo over caller-supplied storage,
// rounding the usable capacity down to a power of two.
func NewRecordWithBuffer(buf []byte, width HeaderWidth, options ...Option[byte]) (RecordQueue, error) {
	opts := applyOptions(options...)
	if width != Header8 && width != Header16 {
		recordInitError(opts.metricsReg, "header")
		return nil, errors.WrapInvalid(errors.ErrInvalidHeaderWidth, "RecordFifo", "NewRecordWithBuffer", "header width must be 1 or 2 bytes")
	}
	f, err := newBorrowedFifo(buf, modeRecord, "NewRecordWithBuffer", opts)
	if err != nil {
		return nil, err
	}
	recordCreated(opts.metricsReg, modeRecord)
	return &recordFifo{f: f, width: width}, nil
}

// recordFifo frames variable-length records over a byte-mode fifo. All
// occupancy state lives in the underlying ring; the framing layer only adds
// the header protocol.
type recordFifo struct {
	f     *fifo[byte]
	width HeaderWidth
}

// peekHeader decodes the little-endian length header at logical index out.
// Headers are read byte-wise through the mask so one that straddles the
// physical boundary decodes correctly.
func (r *recordFifo) peekHeader(out uint64) int {
	f := r.f
	n := int(f.buf[out&f.mask])
	if r.width == Header16 {
		n |= int(f.buf[(out+1)&f.mask]) << 8
	}
	return n
}

// pokeHeader encodes n as a little-endian length header at logical index in.
func (r *recordFifo) pokeHeader(n int, in uint64) {
	f := r.f
	f.buf[in&f.mask] = byte(n)
	if r.width == Header16 {
		f.buf[(in+1)&f.mask] = byte(n >> 8)
	}
}

// Enqueue stores rec as one record, all or nothing.
func (r *recordFifo) Enqueue(rec []byte) int {
	f := r.f
	if f.mask == 0 {
		return 0
	}
	if len(rec) > r.width.MaxRecordLen() {
		// ALWAYS track in stats
		f.stats.Reject()

		// ALSO track in metrics if enabled
		if f.metrics != nil {
			f.metrics.recordReject()
		}
		return 0
	}

	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)

	need := uint64(len(rec)) + uint64(r.width)
	if need > f.mask+1-(in-out) {
		// All or nothing: no partial record is ever committed.
		// ALWAYS track in stats
		f.stats.Reject()

		// ALSO track in metrics if enabled
		if f.metrics != nil {
			f.metrics.recordReject()
		}
		return 0
	}

	r.pokeHeader(len(rec), in)
	f.copyIn(rec, in+uint64(r.width))
	// Header and payload become visible together.
	atomic.StoreUint64(&f.in, in+need)

	// ALWAYS track in stats
	f.stats.Enqueue(len(rec), len(rec))

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordEnqueue(len(rec), int(in+need-out), f.Cap())
	}

	return len(rec)
}

// Dequeue copies the head record into dst and consumes the whole record.
func (r *recordFifo) Dequeue(dst []byte) int {
	f := r.f
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)
	if in == out {
		return 0
	}

	n := r.peekHeader(out)
	copied := len(dst)
	if copied > n {
		copied = n
	}
	f.copyOut(dst[:copied], out+uint64(r.width))
	// The read index always crosses the whole record; a tail that did not
	// fit in dst is discarded, never re-delivered.
	atomic.StoreUint64(&f.out, out+uint64(n)+uint64(r.width))

	// ALWAYS track in stats
	f.stats.Dequeue(copied)
	if discarded := n - copied; discarded > 0 {
		f.stats.Discard(discarded)

		// ALSO track in metrics if enabled
		if f.metrics != nil {
			f.metrics.recordDiscard(discarded)
		}
	}

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordDequeue(copied, int(in-out-uint64(n)-uint64(r.width)), f.Cap())
	}

	return copied
}

// Peek copies the head record into dst without consuming it.
func (r *recordFifo) Peek(dst []byte) int {
	f := r.f
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)
	if in == out {
		return 0
	}

	n := r.peekHeader(out)
	copied := len(dst)
	if copied > n {
		copied = n
	}
	f.copyOut(dst[:copied], out+uint64(r.width))

	// ALWAYS track in stats
	f.stats.Peek()

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordPeek()
	}

	return copied
}

// PeekLen returns the payload length of the head record without consuming it.
func (r *recordFifo) PeekLen() int {
	f := r.f
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)
	if in == out {
		return 0
	}

	n := r.peekHeader(out)

	// ALWAYS track in stats
	f.stats.Peek()

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.recordPeek()
	}

	return n
}

// Skip consumes the head record without copying it.
func (r *recordFifo) Skip() int {
	f := r.f
	if f.mask == 0 {
		return 0
	}
	in := atomic.LoadUint64(&f.in)
	out := atomic.LoadUint64(&f.out)
	if in == out {
		return 0
	}

	n := r.peekHeader(out)
	atomic.StoreUint64(&f.out, out+uint64(n)+uint64(r.width))

	// ALWAYS track in stats
	f.stats.Skip(n)

	// ALSO track in metrics if enabled
	if f.metrics != nil {
		f.metrics.updateOccupancy(int(in-out-uint64(n)-uint64(r.width)), f.Cap())
	}

	return n
}

// Len returns the queued bytes including record headers.
func (r *recordFifo) Len() int {
	return r.f.Len()
}

// Cap returns the fixed capacity in bytes.
func (r *recordFifo) Cap() int {
	return r.f.Cap()
}

// Avail returns the largest payload Enqueue can currently accept. Free space
// at or below the header width fits no record at all.
func (r *recordFifo) Avail() int {
	free := r.f.Avail()
	w := int(r.width)
	if free <= w {
		return 0
	}
	if max := r.width.MaxRecordLen(); free-w > max {
		return max
	}
	return free - w
}

// IsEmpty returns true if no records are queued.
func (r *recordFifo) IsEmpty() bool {
	return r.f.IsEmpty()
}

// IsFull returns true if the underlying ring is at capacity.
func (r *recordFifo) IsFull() bool {
	return r.f.IsFull()
}

// Initialized returns true if the fifo is usable.
func (r *recordFifo) Initialized() bool {
	return r.f.Initialized()
}

// MaxRecordLen returns the largest payload length a single record may carry.
func (r *recordFifo) MaxRecordLen() int {
	return r.width.MaxRecordLen()
}

// HeaderWidth returns the length-header encoding chosen at construction.
func (r *recordFifo) HeaderWidth() HeaderWidth {
	return r.width
}

// Reset discards all queued records and zeroes both indices.
func (r *recordFifo) Reset() {
	r.f.Reset()
}

// ResetOut discards all queued records as if consumed.
func (r *recordFifo) ResetOut() {
	r.f.ResetOut()
}

// Stats returns fifo statistics.
func (r *recordFifo) Stats() *Statistics {
	return r.f.stats
}

// Free releases the backing storage.
func (r *recordFifo) Free() {
	r.f.Free()
}
