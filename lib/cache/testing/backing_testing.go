package testing

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/kvkit/lib/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Item is the value type used by the suite. It is a pointer target so that
// weakly referencing backings can be tested too.
type Item struct {
	ID   int
	Name string
}

// BackingFactory is a function that creates a new, empty backing
type BackingFactory func() cache.Backing[string, *Item]

// RunBackingTests runs the conformance suite for a backing implementation
func RunBackingTests(t *testing.T, name string, factory BackingFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Store&Load", func(t *testing.T) {
			testStoreLoad(t, factory())
		})

		t.Run("Replace", func(t *testing.T) {
			testReplace(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Any", func(t *testing.T) {
			testAny(t, factory())
		})

		t.Run("LoadOrCompute", func(t *testing.T) {
			testLoadOrCompute(t, factory())
		})

		t.Run("LoadOrComputeError", func(t *testing.T) {
			testLoadOrComputeError(t, factory())
		})

		t.Run("ConcurrentLoadOrCompute", func(t *testing.T) {
			testConcurrentLoadOrCompute(t, factory())
		})

		t.Run("NoRetain", func(t *testing.T) {
			testNoRetain(t, factory())
		})

		t.Run("ConcurrentMixed", func(t *testing.T) {
			testConcurrentMixed(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the backing supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, backing cache.Backing[string, *Item], feature cache.Feature) {
	if !backing.SupportsFeature(feature) {
		t.Skipf("backing does not support %s", feature)
	}
}

func key(i int) string {
	return fmt.Sprintf("test-key-%d", i)
}

// items creates n items; the caller keeps them referenced for weak backings
func items(n int) []*Item {
	out := make([]*Item, n)
	for i := range out {
		out[i] = &Item{ID: i, Name: fmt.Sprintf("item-%d", i)}
	}
	return out
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testStoreLoad(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	all := items(100)
	for i, it := range all {
		b.Store(key(i), it)
	}

	assert.Equal(t, len(all), b.Size())
	for i, it := range all {
		v, ok := b.Load(key(i))
		require.True(t, ok, "key %s should be present", key(i))
		assert.Same(t, it, v)
	}

	_, ok := b.Load("missing")
	assert.False(t, ok)
	runtime.KeepAlive(all)
}

func testReplace(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	first, second := &Item{ID: 1}, &Item{ID: 2}
	b.Store("k", first)
	b.Store("k", second)

	v, ok := b.Load("k")
	require.True(t, ok)
	assert.Same(t, second, v)
	assert.Equal(t, 1, b.Size())
	runtime.KeepAlive(first)
	runtime.KeepAlive(second)
}

func testDelete(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	all := items(3)
	for i, it := range all {
		b.Store(key(i), it)
	}
	b.Delete(key(1))
	b.Delete("missing")

	_, ok := b.Load(key(1))
	assert.False(t, ok)
	assert.Equal(t, 2, b.Size())
	runtime.KeepAlive(all)
}

func testClear(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	all := items(10)
	for i, it := range all {
		b.Store(key(i), it)
	}
	b.Clear()

	assert.Equal(t, 0, b.Size())
	_, ok := b.Load(key(0))
	assert.False(t, ok)
	runtime.KeepAlive(all)
}

func testAny(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	_, ok := b.Any()
	assert.False(t, ok, "empty backing has no value")

	all := items(5)
	for i, it := range all {
		b.Store(key(i), it)
	}
	v, ok := b.Any()
	require.True(t, ok)
	assert.Contains(t, all, v)
	runtime.KeepAlive(all)
}

func testLoadOrCompute(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	it := &Item{ID: 7}
	calls := 0
	fn := func() (*Item, error) {
		calls++
		return it, nil
	}

	v, loaded, err := b.LoadOrCompute("k", fn)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Same(t, it, v)

	v, loaded, err = b.LoadOrCompute("k", fn)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Same(t, it, v)
	assert.Equal(t, 1, calls)

	stored, ok := b.Load("k")
	require.True(t, ok)
	assert.Same(t, it, stored)
	runtime.KeepAlive(it)
}

func testLoadOrComputeError(t *testing.T, b cache.Backing[string, *Item]) {
	boom := errors.New("boom")

	v, loaded, err := b.LoadOrCompute("k", func() (*Item, error) {
		return &Item{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, loaded)
	assert.Nil(t, v)

	_, ok := b.Load("k")
	assert.False(t, ok, "a failed initializer must not store anything")
	assert.Equal(t, 0, b.Size())
}

func testConcurrentLoadOrCompute(t *testing.T, b cache.Backing[string, *Item]) {
	requireFeature(t, b, cache.FeatureRetain)

	const (
		workers = 16
		keys    = 50
	)
	var calls [keys]atomic.Int32
	results := make([][keys]*Item, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for k := 0; k < keys; k++ {
				v, _, err := b.LoadOrCompute(key(k), func() (*Item, error) {
					calls[k].Add(1)
					return &Item{ID: k}, nil
				})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				results[w][k] = v
			}
		}(w)
	}
	wg.Wait()

	for k := 0; k < keys; k++ {
		assert.Equal(t, int32(1), calls[k].Load(), "initializer for %s ran more than once", key(k))
		for w := 1; w < workers; w++ {
			assert.Same(t, results[0][k], results[w][k], "all callers must observe the same value")
		}
	}
	runtime.KeepAlive(results)
}

// testNoRetain checks the no-op contract for backings that do not retain values
func testNoRetain(t *testing.T, b cache.Backing[string, *Item]) {
	if b.SupportsFeature(cache.FeatureRetain) {
		t.Skip("backing retains values")
	}

	all := items(10)
	for i, it := range all {
		b.Store(key(i), it)
		_, ok := b.Load(key(i))
		assert.False(t, ok)
	}
	assert.Equal(t, 0, b.Size())
	_, ok := b.Any()
	assert.False(t, ok)

	calls := 0
	for i := 0; i < 3; i++ {
		v, loaded, err := b.LoadOrCompute("k", func() (*Item, error) {
			calls++
			return all[0], nil
		})
		require.NoError(t, err)
		assert.False(t, loaded)
		assert.Same(t, all[0], v)
	}
	assert.Equal(t, 3, calls, "nothing is stored, so every call computes")
	assert.Equal(t, 0, b.Size())
}

func testConcurrentMixed(t *testing.T, b cache.Backing[string, *Item]) {
	all := items(64)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				k := (i * (w + 1)) % len(all)
				switch i % 5 {
				case 0:
					b.Store(key(k), all[k])
				case 1:
					b.Load(key(k))
				case 2:
					_, _, _ = b.LoadOrCompute(key(k), func() (*Item, error) { return all[k], nil })
				case 3:
					b.Delete(key(k))
				case 4:
					b.Size()
				}
			}
		}(w)
	}
	wg.Wait()

	// every remaining value must belong to its key
	for k, it := range all {
		if v, ok := b.Load(key(k)); ok {
			assert.Same(t, it, v)
		}
	}
	assert.LessOrEqual(t, b.Size(), len(all))
	runtime.KeepAlive(all)
}
