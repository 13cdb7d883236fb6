// Package util provides low level building blocks shared by the kvkit collections.
//
// The package contains:
//   - mapheap: A min priority queue that also supports key-based access, used to order deadlines
//   - lockfreempsc: A lock-free Multi-Producer Single-Consumer (MPSC) queue. Producers push
//     concurrently, a single consumer drains the queue on demand (no background goroutine)
//   - statistics: Simple descriptive statistics over float64 samples
//
// This package is particularly useful for:
//   - Expiring containers that need to find the entry with the smallest remaining lifetime
//   - Hand-off of work items from many goroutines to a single processing pass
//   - Benchmark reporting
package util
