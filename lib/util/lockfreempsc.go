// Package util provides a lock-free Multi-Producer Single-Consumer (MPSC) queue implementation.
//
// Features and Guarantees:
//
//   - Lock-Free: atomic operations for high throughput and low latency even under high contention
//   - Unbounded Size: the queue can grow to any size as needed, limited only by available memory
//   - Small Footprint: minimal memory overhead per item (two pointers per item)
//   - Thread-Safe writes: Allows any number of goroutines to safely Push() concurrently
//   - Single Consumer: Drain() must not run concurrently with itself. The queue owns no
//     goroutine, the consumer pulls items whenever it needs them.
//   - No Strict FIFO Guarantee: Under concurrent Push() operations, the exact ordering of items
//     is determined by which producer completes its operation first, not by which producer
//     started first. A single producer's items are always drained in push order.
package util

import (
	"runtime"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is a lock-free multi-producer single-consumer queue
// Implementation uses a linked list of nodes with atomic operations
// for concurrent push operations without locks
type LockFreeMPSC[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
}

// NewLockFreeMPSC creates a new lock-free multi-producer single-consumer queue
func NewLockFreeMPSC[T any]() *LockFreeMPSC[T] {
	// Create a sentinel node (dummy node at the beginning)
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the value is nil.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value *T) bool {

	if value == nil {
		return false
	}

	newNode := &node[T]{value: value}

	var backoff uint8 = 0

	for {
		tailNode := q.tail.Load()

		// try to atomically append our node to the current tail
		next := tailNode.next.Load()
		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				/*
				 Successfully appended, now try to update tail
				 Note: CAS may fail if another producer helps update tail,
				 but that's okay - tail will still be updated eventually
				*/
				q.tail.CompareAndSwap(tailNode, newNode)
				return true
			}
		} else {
			// help update the tail pointer if another producer has already appended a node but hasn't updated the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		/*
		 Exponential backoff under contention:
		  - At low contention (<10 retries): spin with Gosched to avoid thread scheduling overhead
		  - At higher contention: yield once per retry
		*/
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// Drain removes all currently queued items and passes them to fn in queue order.
// Items pushed while Drain runs may or may not be included.
// Returns the number of drained items.
//
// Thread-safety: Only one goroutine may call Drain at a time (single consumer).
func (q *LockFreeMPSC[T]) Drain(fn func(*T)) int {
	count := 0
	for {
		head := q.head.Load()
		next := head.next.Load()

		if next == nil {
			return count
		}

		// Capture value before updating pointers
		value := next.value

		// move head pointer (free up memory)
		q.head.Store(next)

		// help go gc - the new head is the sentinel now
		next.value = nil

		fn(value)
		count++
	}
}
