package bus

import "sync"

// compactThreshold is the number of consumed slots after which the queue
// reclaims the front of its backing array.
const compactThreshold = 1024

type queued[T any] struct {
	v   T
	seq uint64
}

// queue is an unbounded FIFO safe for many concurrent producers and a single
// consumer. push never blocks.
type queue[T any] struct {
	mu     sync.Mutex
	items  []queued[T]
	head   int
	pushed uint64

	ready chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{ready: make(chan struct{}, 1)}
}

// push appends v and returns its sequence number. Sequence numbers start at
// 1 and follow FIFO order.
func (q *queue[T]) push(v T) uint64 {
	q.mu.Lock()
	q.pushed++
	seq := q.pushed
	q.items = append(q.items, queued[T]{v: v, seq: seq})
	q.mu.Unlock()

	// wake the consumer; one pending token is enough
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return seq
}

// tryPop removes and returns the oldest item and its sequence number.
func (q *queue[T]) tryPop() (v T, seq uint64, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return v, 0, false
	}

	it := q.items[q.head]
	q.items[q.head] = queued[T]{}
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return it.v, it.seq, true
}

// len returns the number of queued items.
func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// sent returns the sequence number of the most recent push.
func (q *queue[T]) sent() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}

// signal is readable after a push. Spurious wake-ups are possible.
func (q *queue[T]) signal() <-chan struct{} { return q.ready }
