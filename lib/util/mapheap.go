// Package util
//
// This file provides a priority queue with key-based access used to track deadlines.
//
// This implementation combines a binary heap with a hash map to provide both
// efficient priority-based operations and key-based access. It is used by the
// ttlmap package to order deadline records by their absolute deadline, while still
// allowing a key's record to be replaced in place when the key is written again.
//
// Key advantages of this implementation:
//
// 1. Time Complexity:
//   - O(log n) for priority operations (Push, Pop, Update)
//   - O(1) for key-based lookups and existence checks
//   - O(log n) for key-based removal
//
// 2. Deadline Tracking Benefits:
//   - Efficiently identifies the record with the smallest remaining lifetime
//   - At most one record per key, so replaced keys never accumulate stale records
//   - Each record carries a payload the caller uses to detect superseded records
//
// 3. Concurrency Considerations:
//   - Note: This implementation is not thread-safe by default
//   - For concurrent use, external synchronization should be applied
//
// Example usage:
//
//	// Create a new queue
//	q := NewMapHeap[string, *entry]()
//
//	// Add items with keys, deadlines (unix nanos) and payloads
//	q.AddItem("a", deadline1, e1)
//	q.AddItem("b", deadline2, e2)
//
//	// Get the earliest deadline
//	first, exists := q.Peek()
//
//	// Remove a specific item (e.g., when the key is deleted)
//	q.RemoveByKey("a")
//
//	// Process items in priority order
//	for q.Len() > 0 {
//	    item, _ := q.PopItem()
//	    // Process item
//	}
package util

import (
	"container/heap"
	"fmt"
)

// Item represents an item in the queue
// with a key for identification, an int64 priority and an opaque payload
type Item[K comparable, P any] struct {
	Key      K     // Unique identifier for the item
	Priority int64 // Priority used for ordering in the heap (smallest first)
	Payload  P     // Caller data attached to the item
	index    int   // Index in the heap, maintained by heap package
}

func (i *Item[K, P]) String() string {
	return fmt.Sprintf("{Key: %v, Priority: %d}", i.Key, i.Priority)
}

// MapHeap implements a min priority queue
// with both heap operations and key-based access
type MapHeap[K comparable, P any] struct {
	items    []*Item[K, P]     // The actual heap slice
	itemsMap map[K]*Item[K, P] // Map for O(1) access by key
}

// NewMapHeap creates a new, initialized queue
func NewMapHeap[K comparable, P any]() *MapHeap[K, P] {
	return &MapHeap[K, P]{
		items:    make([]*Item[K, P], 0),
		itemsMap: make(map[K]*Item[K, P]),
	}
}

// Len returns the number of items in the queue (part of heap.Interface)
func (mh *MapHeap[K, P]) Len() int { return len(mh.items) }

// Less compares items by priority (part of heap.Interface)
func (mh *MapHeap[K, P]) Less(i, j int) bool {
	return mh.items[i].Priority < mh.items[j].Priority
}

// Swap exchanges items at positions i and j (part of heap.Interface)
func (mh *MapHeap[K, P]) Swap(i, j int) {
	mh.items[i], mh.items[j] = mh.items[j], mh.items[i]
	mh.items[i].index = i
	mh.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface)
func (mh *MapHeap[K, P]) Push(x any) {
	n := len(mh.items)
	item := x.(*Item[K, P])
	item.index = n
	mh.items = append(mh.items, item)
	mh.itemsMap[item.Key] = item
}

// Pop removes and returns the last item (part of heap.Interface)
// Use PopItem to remove the minimum item.
func (mh *MapHeap[K, P]) Pop() any {
	old := mh.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // Avoid memory leak
	item.index = -1 // For safety
	mh.items = old[:n-1]
	delete(mh.itemsMap, item.Key)
	return item
}

// AddItem adds a new item to the queue or replaces the priority and payload of an existing one
func (mh *MapHeap[K, P]) AddItem(key K, priority int64, payload P) {
	// Check if item already exists
	if item, exists := mh.itemsMap[key]; exists {
		// Update priority and fix heap
		item.Priority = priority
		item.Payload = payload
		heap.Fix(mh, item.index)
		return
	}

	// Create and add new item
	heap.Push(mh, &Item[K, P]{
		Key:      key,
		Priority: priority,
		Payload:  payload,
	})
}

// PopItem removes and returns the item with the smallest priority
func (mh *MapHeap[K, P]) PopItem() (*Item[K, P], bool) {
	if len(mh.items) == 0 {
		return nil, false
	}
	return heap.Pop(mh).(*Item[K, P]), true
}

// RemoveByKey removes an item by its key
func (mh *MapHeap[K, P]) RemoveByKey(key K) (int64, bool) {
	item, exists := mh.itemsMap[key]
	if !exists {
		return 0, false
	}

	// Remove from heap
	heap.Remove(mh, item.index)
	return item.Priority, true
}

// Peek returns the minimum priority item without removing it
func (mh *MapHeap[K, P]) Peek() (*Item[K, P], bool) {
	if len(mh.items) == 0 {
		return nil, false
	}
	return mh.items[0], true
}

// Contains checks if a key exists in the queue
func (mh *MapHeap[K, P]) Contains(key K) bool {
	_, exists := mh.itemsMap[key]
	return exists
}

// GetByKey retrieves an item by its key without removing it
func (mh *MapHeap[K, P]) GetByKey(key K) (*Item[K, P], bool) {
	item, exists := mh.itemsMap[key]
	return item, exists
}

// Reset drops all items
func (mh *MapHeap[K, P]) Reset() {
	clear(mh.items)
	mh.items = mh.items[:0]
	mh.itemsMap = make(map[K]*Item[K, P])
}
