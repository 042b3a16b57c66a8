// Package queue provides a generic thread-safe FIFO used to stage validated
// territories and exploration runs before they are flushed to storage.
package queue

import "sync"

// Queue is a mutex-guarded FIFO. The head index avoids reslicing on every
// Pop; the backing array is released when the queue drains.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items in order.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the oldest item, or the zero value and false
// when the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		var zero T
		return zero, false
	}
	item := q.items[q.head]
	q.head++
	if q.head == len(q.items) {
		q.items = nil
		q.head = 0
	}
	return item, true
}

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head >= len(q.items)
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Clear discards all queued items.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.head = 0
}

// Drain removes and returns every queued item in order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items[q.head:]
	q.items = nil
	q.head = 0
	return out
}
