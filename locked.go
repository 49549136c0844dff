package kfifo

import "sync"

// Lock wraps q for multi-producer multi-consumer use. Producer-side calls
// (Enqueue, Put) are serialized by one mutex and consumer-side calls
// (Dequeue, Get, Peek, Skip, ResetOut) by another, so any number of
// goroutines may share each side while the wrapped fifo still sees the
// single-producer single-consumer discipline it requires. Reset and Free
// take both locks. Occupancy queries and Stats stay lock-free.
func Lock[T any](q Queue[T]) Queue[T] {
	return &lockedQueue[T]{q: q}
}

// LockRecord wraps q for multi-producer multi-consumer use, with the same
// split locking scheme as Lock.
func LockRecord(q RecordQueue) RecordQueue {
	return &lockedRecordQueue{q: q}
}

// lockedQueue serializes each side of a Queue with its own mutex.
type lockedQueue[T any] struct {
	writeMu sync.Mutex
	readMu  sync.Mutex
	q       Queue[T]
}

func (l *lockedQueue[T]) Enqueue(src []T) int {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.q.Enqueue(src)
}

func (l *lockedQueue[T]) Put(elem T) bool {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.q.Put(elem)
}

func (l *lockedQueue[T]) Dequeue(dst []T) int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Dequeue(dst)
}

func (l *lockedQueue[T]) Get() (T, bool) {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Get()
}

func (l *lockedQueue[T]) Peek(dst []T) int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Peek(dst)
}

func (l *lockedQueue[T]) Skip(n int) int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Skip(n)
}

func (l *lockedQueue[T]) ResetOut() {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	l.q.ResetOut()
}

// Reset takes both locks; write before read, the same order Free uses.
func (l *lockedQueue[T]) Reset() {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	l.readMu.Lock()
	defer l.readMu.Unlock()
	l.q.Reset()
}

func (l *lockedQueue[T]) Free() {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	l.readMu.Lock()
	defer l.readMu.Unlock()
	l.q.Free()
}

// These are already safe concurrent reads on the wrapped fifo, so no lock.

func (l *lockedQueue[T]) Len() int           { return l.q.Len() }
func (l *lockedQueue[T]) Cap() int           { return l.q.Cap() }
func (l *lockedQueue[T]) Avail() int         { return l.q.Avail() }
func (l *lockedQueue[T]) IsEmpty() bool      { return l.q.IsEmpty() }
func (l *lockedQueue[T]) IsFull() bool       { return l.q.IsFull() }
func (l *lockedQueue[T]) Initialized() bool  { return l.q.Initialized() }
func (l *lockedQueue[T]) Stats() *Statistics { return l.q.Stats() }

// lockedRecordQueue serializes each side of a RecordQueue with its own mutex.
type lockedRecordQueue struct {
	writeMu sync.Mutex
	readMu  sync.Mutex
	q       RecordQueue
}

func (l *lockedRecordQueue) Enqueue(rec []byte) int {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.q.Enqueue(rec)
}

func (l *lockedRecordQueue) Dequeue(dst []byte) int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Dequeue(dst)
}

func (l *lockedRecordQueue) Peek(dst []byte) int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Peek(dst)
}

func (l *lockedRecordQueue) PeekLen() int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.PeekLen()
}

func (l *lockedRecordQueue) Skip() int {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	return l.q.Skip()
}

func (l *lockedRecordQueue) ResetOut() {
	l.readMu.Lock()
	defer l.readMu.Unlock()
	l.q.ResetOut()
}

func (l *lockedRecordQueue) Reset() {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	l.readMu.Lock()
	defer l.readMu.Unlock()
	l.q.Reset()
}

func (l *lockedRecordQueue) Free() {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	l.readMu.Lock()
	defer l.readMu.Unlock()
	l.q.Free()
}

func (l *lockedRecordQueue) Len() int                 { return l.q.Len() }
func (l *lockedRecordQueue) Cap() int                 { return l.q.Cap() }
func (l *lockedRecordQueue) Avail() int               { return l.q.Avail() }
func (l *lockedRecordQueue) IsEmpty() bool            { return l.q.IsEmpty() }
func (l *lockedRecordQueue) IsFull() bool             { return l.q.IsFull() }
func (l *lockedRecordQueue) Initialized() bool        { return l.q.Initialized() }
func (l *lockedRecordQueue) MaxRecordLen() int        { return l.q.MaxRecordLen() }
func (l *lockedRecordQueue) HeaderWidth() HeaderWidth { return l.q.HeaderWidth() }
func (l *lockedRecordQueue) Stats() *Statistics       { return l.q.Stats() }
