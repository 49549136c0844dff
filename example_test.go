package kfifo_test

import (
	"fmt"
	"sync"

	"github.com/ubrabbit/kfifo"
)

// ExampleNew demonstrates byte-stream usage with backpressure
func ExampleNew() {
	q, err := kfifo.New[byte](8)
	if err != nil {
		panic(err)
	}
	defer q.Free()

	fmt.Println("accepted:", q.Enqueue([]byte("ABCDE")))
	fmt.Println("accepted:", q.Enqueue([]byte("FGHIJ"))) // only 3 slots left

	dst := make([]byte, 4)
	n := q.Dequeue(dst)
	fmt.Printf("read: %s\n", dst[:n])
	fmt.Println("queued:", q.Len())

	// Output:
	// accepted: 5
	// accepted: 3
	// read: ABCD
	// queued: 4
}

// ExampleNew_structElements demonstrates a queue of typed elements
func ExampleNew_structElements() {
	type reading struct {
		Seq   int
		Value float64
	}

	q, err := kfifo.New[reading](4)
	if err != nil {
		panic(err)
	}
	defer q.Free()

	q.Put(reading{Seq: 1, Value: 0.5})
	q.Put(reading{Seq: 2, Value: 1.5})

	for !q.IsEmpty() {
		r, _ := q.Get()
		fmt.Printf("seq=%d value=%.1f\n", r.Seq, r.Value)
	}

	// Output:
	// seq=1 value=0.5
	// seq=2 value=1.5
}

// ExampleNewWithBuffer demonstrates borrowing caller-supplied storage
func ExampleNewWithBuffer() {
	storage := make([]byte, 12)
	q, err := kfifo.NewWithBuffer(storage)
	if err != nil {
		panic(err)
	}
	defer q.Free()

	// Usable capacity is the buffer length rounded down to a power of two.
	fmt.Println("capacity:", q.Cap())

	// Output:
	// capacity: 8
}

// ExampleNewRecord demonstrates variable-length record framing
func ExampleNewRecord() {
	rq, err := kfifo.NewRecord(64, kfifo.Header8)
	if err != nil {
		panic(err)
	}
	defer rq.Free()

	rq.Enqueue([]byte("hello"))
	rq.Enqueue([]byte("ring buffers"))

	for !rq.IsEmpty() {
		dst := make([]byte, rq.PeekLen())
		n := rq.Dequeue(dst)
		fmt.Printf("%s\n", dst[:n])
	}

	// Output:
	// hello
	// ring buffers
}

// ExampleQueue_Stats demonstrates the always-on statistics
func ExampleQueue_Stats() {
	q, err := kfifo.New[byte](8)
	if err != nil {
		panic(err)
	}
	defer q.Free()

	q.Enqueue([]byte("ABCDEFGHIJ")) // 10 offered, 8 fit
	q.Dequeue(make([]byte, 3))

	s := q.Stats()
	fmt.Println("enqueues:", s.Enqueues())
	fmt.Println("elements in:", s.ElementsIn())
	fmt.Println("short writes:", s.ShortWrites())
	fmt.Println("elements out:", s.ElementsOut())

	// Output:
	// enqueues: 1
	// elements in: 8
	// short writes: 1
	// elements out: 3
}

// ExampleLock demonstrates wrapping a fifo for multi-producer use
func ExampleLock() {
	core, err := kfifo.New[int](64)
	if err != nil {
		panic(err)
	}
	q := kfifo.Lock(core)
	defer q.Free()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 8; i++ {
				for !q.Put(base + i) {
				}
			}
		}(w * 100)
	}
	wg.Wait()

	fmt.Println("queued:", q.Len())

	// Output:
	// queued: 32
}
