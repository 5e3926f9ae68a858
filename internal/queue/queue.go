// Package queue provides the unbounded FIFO that links the frame reader to
// each modality's exporter.
package queue

import "sync"

// FIFO is an unbounded first-in-first-out queue. Push never blocks and
// TryPop returns immediately, so the producer is never back-pressured; if it
// outpaces the consumer the queue grows without limit, which is a documented
// trade-off of this design. Safe for concurrent use, though the pipeline only
// ever runs one producer and one consumer per instance.
type FIFO[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewFIFO returns an empty queue.
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{}
}

// Push appends an item. It always succeeds.
func (q *FIFO[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest item. It never waits: the second
// return value is false when the queue is empty.
func (q *FIFO[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero // release the reference for GC
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true
}

// Len returns the number of queued items.
func (q *FIFO[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
