// Package testing provides standardised tests and benchmarks for
// cache backings that satisfy the cache.Backing interface.
//
// The package contains:
//   - testing: a conformance suite for the Backing contract
//   - benchmark: throughput of the common backing operations
//
// Tests that need a capability the backing lacks (see cache.Feature) are skipped,
// except the retain tests, which check the no-op contract instead.
//
// Example usage:
//
//	factory := func() cache.Backing[string, *cachetesting.Item] {
//		return cache.NewUnbounded[string, *cachetesting.Item]()
//	}
//
//	cachetesting.RunBackingTests(t, "Unbounded", factory)
//	cachetesting.RunBackingBenchmarks(b, "Unbounded", factory)
package testing
