package util

import (
	"runtime"
	"sync"
	"testing"
)

// TestBasicOperations tests basic push and drain functionality
func TestBasicOperations(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	for i := 0; i < 10; i++ {
		v := i
		if !q.Push(&v) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	expected := 0
	n := q.Drain(func(val *int) {
		if *val != expected {
			t.Errorf("Expected %d, got %d", expected, *val)
		}
		expected++
	})

	if n != 10 {
		t.Errorf("Drain should report 10 items, got %d", n)
	}

	// Make sure queue is empty
	if n := q.Drain(func(val *int) { t.Errorf("Queue should be empty, but got %d", *val) }); n != 0 {
		t.Errorf("Second drain should be empty, got %d", n)
	}
}

// TestPushNil verifies nil values are rejected
func TestPushNil(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	if q.Push(nil) {
		t.Error("Pushing nil should fail")
	}
	if n := q.Drain(func(*int) {}); n != 0 {
		t.Errorf("Queue should be empty, drained %d items", n)
	}
}

// TestConcurrentProducers verifies the queue works correctly with multiple producers
// while a consumer drains in parallel
func TestConcurrentProducers(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	const numProducers = 10
	const itemsPerProducer = 1000
	totalItems := numProducers * itemsPerProducer

	received := make(map[int]bool, totalItems)
	record := func(val *int) {
		if received[*val] {
			t.Errorf("Duplicate item received: %d", *val)
		}
		received[*val] = true
	}

	var wg sync.WaitGroup
	wg.Add(numProducers)

	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()

			base := producerID * itemsPerProducer
			for i := 0; i < itemsPerProducer; i++ {
				val := base + i
				if !q.Push(&val) {
					t.Errorf("Producer %d failed to push item %d", producerID, i)
				}
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// drain while producers are running
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			q.Drain(record)
			runtime.Gosched()
		}
	}
	q.Drain(record)

	if len(received) != totalItems {
		t.Errorf("Expected %d items, got %d", totalItems, len(received))
	}
}

// TestOrderingSingleProducer tests that a single producer's items keep their order
func TestOrderingSingleProducer(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	const itemCount = 10000
	for i := 0; i < itemCount; i++ {
		v := i
		q.Push(&v)
	}

	prev := -1
	q.Drain(func(val *int) {
		if *val < prev {
			t.Fatalf("Item %d drained after %d", *val, prev)
		}
		prev = *val
	})
}

// BenchmarkSingleProducer benchmarks the queue with a single producer
func BenchmarkSingleProducer(b *testing.B) {
	q := NewLockFreeMPSC[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(&i)
		if i%1024 == 0 {
			q.Drain(func(*int) {})
		}
	}
}

// BenchmarkMultiProducer benchmarks the queue with multiple producers
func BenchmarkMultiProducer(b *testing.B) {
	q := NewLockFreeMPSC[int]()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(&i)
			i++
		}
	})
	b.StopTimer()
	q.Drain(func(*int) {})
}
