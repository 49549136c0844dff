package kfifo

import (
	"sync/atomic"
	"time"
)

// Statistics tracks fifo activity. Unlike the Prometheus metrics, which are
// optional, statistics are always collected.
//
// Every field is an independent atomic counter so recording never takes a
// lock; the fifo data plane stays lock-free with statistics enabled.
type Statistics struct {
	enqueues    int64
	dequeues    int64
	peeks       int64
	elementsIn  int64
	elementsOut int64
	shortWrites int64
	rejects     int64
	discards    int64
	skips       int64

	// Unix nanoseconds, written at construction and by Reset.
	startNanos int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startNanos: time.Now().UnixNano(),
	}
}

// Enqueue records a bulk write that accepted `accepted` of `requested` elements.
func (s *Statistics) Enqueue(accepted, requested int) {
	atomic.AddInt64(&s.enqueues, 1)
	atomic.AddInt64(&s.elementsIn, int64(accepted))
	if accepted < requested {
		atomic.AddInt64(&s.shortWrites, 1)
	}
}

// Dequeue records a bulk read that delivered n elements.
func (s *Statistics) Dequeue(n int) {
	atomic.AddInt64(&s.dequeues, 1)
	atomic.AddInt64(&s.elementsOut, int64(n))
}

// Peek records a non-consuming read.
func (s *Statistics) Peek() {
	atomic.AddInt64(&s.peeks, 1)
}

// Reject records a write refused outright: a full fifo on Put, or a record
// that could not be stored atomically.
func (s *Statistics) Reject() {
	atomic.AddInt64(&s.rejects, 1)
}

// Discard records n elements dropped unread (a record tail truncated by an
// undersized destination).
func (s *Statistics) Discard(n int) {
	atomic.AddInt64(&s.discards, int64(n))
}

// Skip records n elements consumed without being copied out.
func (s *Statistics) Skip(n int) {
	atomic.AddInt64(&s.skips, int64(n))
}

// Enqueues returns the total number of accepted write operations.
func (s *Statistics) Enqueues() int64 {
	return atomic.LoadInt64(&s.enqueues)
}

// Dequeues returns the total number of consuming read operations.
func (s *Statistics) Dequeues() int64 {
	return atomic.LoadInt64(&s.dequeues)
}

// Peeks returns the total number of peek operations.
func (s *Statistics) Peeks() int64 {
	return atomic.LoadInt64(&s.peeks)
}

// ElementsIn returns the total number of elements accepted.
func (s *Statistics) ElementsIn() int64 {
	return atomic.LoadInt64(&s.elementsIn)
}

// ElementsOut returns the total number of elements delivered to readers.
func (s *Statistics) ElementsOut() int64 {
	return atomic.LoadInt64(&s.elementsOut)
}

// ShortWrites returns the number of writes clamped by lack of space.
func (s *Statistics) ShortWrites() int64 {
	return atomic.LoadInt64(&s.shortWrites)
}

// Rejects returns the number of writes refused outright.
func (s *Statistics) Rejects() int64 {
	return atomic.LoadInt64(&s.rejects)
}

// Discards returns the total number of elements dropped unread.
func (s *Statistics) Discards() int64 {
	return atomic.LoadInt64(&s.discards)
}

// Skips returns the total number of elements consumed without copying.
func (s *Statistics) Skips() int64 {
	return atomic.LoadInt64(&s.skips)
}

// Throughput returns the average number of elements accepted per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.ElementsIn()) / elapsed.Seconds()
}

// ReadThroughput returns the average number of elements delivered per second.
func (s *Statistics) ReadThroughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.ElementsOut()) / elapsed.Seconds()
}

// RejectRate returns the fraction of write attempts refused outright (0.0 to 1.0).
func (s *Statistics) RejectRate() float64 {
	rejects := s.Rejects()
	attempts := s.Enqueues() + rejects
	if attempts == 0 {
		return 0.0
	}
	return float64(rejects) / float64(attempts)
}

// ShortWriteRate returns the fraction of accepted writes that were clamped (0.0 to 1.0).
func (s *Statistics) ShortWriteRate() float64 {
	enqueues := s.Enqueues()
	if enqueues == 0 {
		return 0.0
	}
	return float64(s.ShortWrites()) / float64(enqueues)
}

// Uptime returns how long the fifo has been running.
func (s *Statistics) Uptime() time.Duration {
	start := atomic.LoadInt64(&s.startNanos)
	return time.Duration(time.Now().UnixNano() - start)
}

// Reset resets all statistics to zero and restarts the clock.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.enqueues, 0)
	atomic.StoreInt64(&s.dequeues, 0)
	atomic.StoreInt64(&s.peeks, 0)
	atomic.StoreInt64(&s.elementsIn, 0)
	atomic.StoreInt64(&s.elementsOut, 0)
	atomic.StoreInt64(&s.shortWrites, 0)
	atomic.StoreInt64(&s.rejects, 0)
	atomic.StoreInt64(&s.discards, 0)
	atomic.StoreInt64(&s.skips, 0)
	atomic.StoreInt64(&s.startNanos, time.Now().UnixNano())
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Enqueues       int64         `json:"enqueues"`
	Dequeues       int64         `json:"dequeues"`
	Peeks          int64         `json:"peeks"`
	ElementsIn     int64         `json:"elements_in"`
	ElementsOut    int64         `json:"elements_out"`
	ShortWrites    int64         `json:"short_writes"`
	Rejects        int64         `json:"rejects"`
	Discards       int64         `json:"discards"`
	Skips          int64         `json:"skips"`
	Throughput     float64       `json:"throughput"`
	ReadThroughput float64       `json:"read_throughput"`
	RejectRate     float64       `json:"reject_rate"`
	Uptime         time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Enqueues:       s.Enqueues(),
		Dequeues:       s.Dequeues(),
		Peeks:          s.Peeks(),
		ElementsIn:     s.ElementsIn(),
		ElementsOut:    s.ElementsOut(),
		ShortWrites:    s.ShortWrites(),
		Rejects:        s.Rejects(),
		Discards:       s.Discards(),
		Skips:          s.Skips(),
		Throughput:     s.Throughput(),
		ReadThroughput: s.ReadThroughput(),
		RejectRate:     s.RejectRate(),
		Uptime:         s.Uptime(),
	}
}
