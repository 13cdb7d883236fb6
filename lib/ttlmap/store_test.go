package ttlmap

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore[V any](clock *fakeClock, renewOnRead bool) *Store[string, V] {
	return New[string, V](&Options{
		DefaultLifetime: time.Second,
		RenewOnRead:     renewOnRead,
		Clock:           clock.Now,
	})
}

// --------------------------------------------------------------------------
// Deterministic tests
// --------------------------------------------------------------------------

func TestPutGet(t *testing.T) {
	s := newTestStore[string](newFakeClock(), false)

	_, loaded := s.Put("k", "a")
	assert.False(t, loaded)

	prev, loaded := s.Put("k", "b")
	assert.True(t, loaded)
	assert.Equal(t, "a", prev)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestExpiry(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)

	s.PutWithLifetime("short", 1, 50*time.Millisecond)
	s.PutWithLifetime("long", 2, time.Hour)

	v, ok := s.Get("short")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	clock.Advance(50 * time.Millisecond)

	_, ok = s.Get("short")
	assert.False(t, ok, "entry must expire exactly at its deadline")
	assert.False(t, s.ContainsKey("short"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"long"}, s.Keys())

	// the sweep removed the value from the table
	_, present := s.data.Load("short")
	assert.False(t, present)
	assert.Equal(t, int64(1), s.Stats().Expired)
}

func TestDefaultLifetime(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)
	assert.Equal(t, time.Second, s.DefaultLifetime())

	s.Put("k", 1)
	clock.Advance(999 * time.Millisecond)
	assert.True(t, s.ContainsKey("k"))

	clock.Advance(time.Millisecond)
	assert.False(t, s.ContainsKey("k"))
}

func TestNilOptions(t *testing.T) {
	s := New[int, int](nil)
	assert.Equal(t, defaultLifetime, s.DefaultLifetime())
	s.Put(1, 1)
	v, ok := s.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestNonPositiveLifetimeIsImmediatelyExpired(t *testing.T) {
	s := newTestStore[string](newFakeClock(), false)

	_, loaded := s.PutWithLifetime("zero", "x", 0)
	assert.False(t, loaded)
	s.PutWithLifetime("negative", "y", -time.Second)

	_, ok := s.Get("zero")
	assert.False(t, ok)
	assert.False(t, s.ContainsKey("negative"))
	assert.Equal(t, 0, s.Len())

	// replacing a live value with a non-positive lifetime reports the old value and hides it
	s.Put("k", "live")
	prev, loaded := s.PutWithLifetime("k", "dead", 0)
	assert.True(t, loaded)
	assert.Equal(t, "live", prev)
	_, ok = s.Get("k")
	assert.False(t, ok)

	assert.Equal(t, 0, s.Cleanup(), "the reads above already swept the expired entries")
	assert.Equal(t, 0, s.Len())
}

func TestReplaceResetsDeadline(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[string](clock, false)

	s.PutWithLifetime("k", "a", time.Second)
	clock.Advance(500 * time.Millisecond)
	s.PutWithLifetime("k", "b", time.Second)
	clock.Advance(700 * time.Millisecond)

	v, ok := s.Get("k")
	require.True(t, ok, "the second put must reset the deadline")
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.deadlines.Len(), "at most one deadline record per key")

	clock.Advance(300 * time.Millisecond)
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestTombstonedRecordDoesNotDeleteNewValue(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[string](clock, false)

	s.PutWithLifetime("k", "old", 10*time.Millisecond)
	s.Cleanup() // old record is now in the heap

	s.PutWithLifetime("k", "new", time.Hour)
	clock.Advance(20 * time.Millisecond)

	// the old record's deadline passed; it must be discarded, not acted upon
	s.Cleanup()
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestStaleRecordIsDiscardedOnDrain(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[string](clock, false)

	// directly replace the entry after tracking so that the queued record is superseded
	s.PutWithLifetime("k", "a", time.Hour)
	e := s.newEntry("b", time.Hour, clock.Now())
	s.data.Store("k", e)

	s.Cleanup()
	assert.GreaterOrEqual(t, s.Stats().Tombstoned, int64(1))
	assert.False(t, s.deadlines.Contains("k"))
}

func TestRenewOnRead(t *testing.T) {
	clock := newFakeClock()
	s := New[string, int](&Options{
		DefaultLifetime: 100 * time.Millisecond,
		RenewOnRead:     true,
		Clock:           clock.Now,
	})

	s.Put("k", 1)
	for i := 0; i < 12; i++ {
		clock.Advance(40 * time.Millisecond)
		_, ok := s.Get("k")
		require.True(t, ok, "read %d must observe the value", i)
	}

	clock.Advance(99 * time.Millisecond)
	assert.True(t, s.ContainsKey("k"), "ContainsKey does not renew")
	clock.Advance(time.Millisecond)
	_, ok := s.Get("k")
	assert.False(t, ok, "value must expire one lifetime after the last read")
	assert.Positive(t, s.Stats().Renewed)
}

func TestRenewKey(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)

	assert.False(t, s.RenewKey("missing"))

	s.PutWithLifetime("k", 1, 100*time.Millisecond)
	clock.Advance(80 * time.Millisecond)
	assert.True(t, s.RenewKey("k"))

	remaining, ok := s.Lifetime("k")
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, remaining)

	clock.Advance(80 * time.Millisecond)
	assert.True(t, s.ContainsKey("k"))

	clock.Advance(20 * time.Millisecond)
	assert.False(t, s.RenewKey("k"), "an expired key can not be renewed")
	_, ok = s.Lifetime("k")
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)

	_, ok := s.Remove("missing")
	assert.False(t, ok)

	s.Put("k", 7)
	s.Cleanup()
	require.True(t, s.deadlines.Contains("k"))

	v, ok := s.Remove("k")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.False(t, s.deadlines.Contains("k"), "remove retires the deadline record")
	assert.False(t, s.ContainsKey("k"))

	// removing an expired key reports absent
	s.PutWithLifetime("e", 1, time.Millisecond)
	clock.Advance(time.Millisecond)
	_, ok = s.Remove("e")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	s := newTestStore[int](newFakeClock(), false)
	for i, k := range []string{"a", "b", "c"} {
		s.Put(k, i)
	}
	s.Cleanup()

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.deadlines.Len())
	assert.Equal(t, 0, s.queue.Drain(func(*record[string, int]) {}))

	s.Put("a", 1)
	assert.Equal(t, 1, s.Len())
}

func TestAccessors(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)

	s.PutWithLifetime("a", 1, time.Second)
	s.PutWithLifetime("b", 2, time.Second)
	s.PutWithLifetime("gone", 3, time.Millisecond)
	clock.Advance(time.Millisecond)

	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)

	values := s.Values()
	sort.Ints(values)
	assert.Equal(t, []int{1, 2}, values)

	assert.True(t, ContainsValue(s, 2))
	assert.False(t, ContainsValue(s, 3), "expired values are not reported")
	assert.True(t, s.ContainsValueFunc(func(v int) bool { return v > 1 }))

	entries := s.Entries()
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Deadline.Equal(clock.Now().Add(time.Second-time.Millisecond)))
	}

	v, ok := s.Any()
	assert.True(t, ok)
	assert.Contains(t, []int{1, 2}, v)

	count := 0
	s.Range(func(string, int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count, "Range stops when fn returns false")

	s.Clear()
	_, ok = s.Any()
	assert.False(t, ok)
}

func TestGetOrCompute(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)

	calls := 0
	create := func() int {
		calls++
		return calls * 10
	}

	v, loaded := s.GetOrCompute("k", 100*time.Millisecond, create)
	assert.False(t, loaded)
	assert.Equal(t, 10, v)

	v, loaded = s.GetOrCompute("k", 100*time.Millisecond, create)
	assert.True(t, loaded)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, calls)

	// an expired value is replaced
	clock.Advance(100 * time.Millisecond)
	v, loaded = s.GetOrCompute("k", 100*time.Millisecond, create)
	assert.False(t, loaded)
	assert.Equal(t, 20, v)

	// the created value is tracked and expires
	clock.Advance(100 * time.Millisecond)
	s.Cleanup()
	_, present := s.data.Load("k")
	assert.False(t, present)
}

func TestPutIfAbsent(t *testing.T) {
	s := newTestStore[string](newFakeClock(), false)

	v, loaded := s.PutIfAbsent("k", "a", time.Second)
	assert.False(t, loaded)
	assert.Equal(t, "a", v)

	v, loaded = s.PutIfAbsent("k", "b", time.Second)
	assert.True(t, loaded)
	assert.Equal(t, "a", v)
}

func TestGetOrTryComputeError(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore[int](clock, false)
	boom := errors.New("boom")

	_, _, err := s.GetOrTryCompute("k", time.Second, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.ContainsKey("k"))
	assert.Equal(t, 0, s.data.Size(), "a failed initializer must not store anything")

	// an expired entry is dropped when the initializer fails
	s.PutWithLifetime("e", 1, time.Millisecond)
	clock.Advance(time.Millisecond)
	s.mu.Lock() // keep the sweep from removing it first
	_, _, err = s.GetOrTryCompute("e", time.Second, func() (int, error) { return 0, boom })
	s.mu.Unlock()
	assert.ErrorIs(t, err, boom)
	_, present := s.data.Load("e")
	assert.False(t, present)
}

func TestGetOrComputeRenewsOnRead(t *testing.T) {
	clock := newFakeClock()
	s := New[string, int](&Options{DefaultLifetime: time.Second, RenewOnRead: true, Clock: clock.Now})

	s.GetOrCompute("k", 100*time.Millisecond, func() int { return 1 })
	clock.Advance(90 * time.Millisecond)
	_, loaded := s.GetOrCompute("k", 100*time.Millisecond, func() int { return 2 })
	assert.True(t, loaded)

	clock.Advance(90 * time.Millisecond)
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestRegistryCounters(t *testing.T) {
	clock := newFakeClock()
	r := gometrics.NewRegistry()
	s := New[string, int](&Options{Name: "sessions", Clock: clock.Now, Registry: r})

	s.PutWithLifetime("k", 1, time.Millisecond)
	clock.Advance(time.Millisecond)
	s.Cleanup()

	c, ok := r.Get("sessions.expired").(gometrics.Counter)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.Count())
	assert.NotNil(t, r.Get("sessions.sweeps"))
}

// --------------------------------------------------------------------------
// Concurrency
// --------------------------------------------------------------------------

func TestConcurrentGetOrComputeSingleInvocation(t *testing.T) {
	s := New[int, int](&Options{DefaultLifetime: time.Hour})

	const goroutines = 32
	const keys = 64
	var calls [keys]atomic.Int32

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for k := 0; k < keys; k++ {
				v, _ := s.GetOrCompute(k, time.Hour, func() int {
					calls[k].Add(1)
					return k * 2
				})
				if v != k*2 {
					t.Errorf("key %d: expected %d, got %d", k, k*2, v)
				}
			}
		}()
	}
	wg.Wait()

	for k := 0; k < keys; k++ {
		assert.Equal(t, int32(1), calls[k].Load(), "initializer for key %d", k)
	}
}

func TestConcurrentPutsAndSweeps(t *testing.T) {
	clock := newFakeClock()
	s := New[int, int](&Options{DefaultLifetime: time.Millisecond, Clock: clock.Now})

	const writers = 8
	const rounds = 500

	var wg sync.WaitGroup
	wg.Add(writers + 1)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				key := i % 16
				if i%3 == 0 {
					s.PutWithLifetime(key, w, time.Millisecond)
				} else {
					s.PutWithLifetime(key, w, time.Hour)
				}
			}
		}(w)
	}
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			clock.Advance(time.Microsecond * 10)
			s.Cleanup()
		}
	}()
	wg.Wait()

	// every key's final value is only removed if its own deadline passed
	clock.Advance(2 * time.Millisecond)
	s.Cleanup()
	for _, e := range s.Entries() {
		assert.True(t, e.Deadline.After(clock.Now()))
	}
	assert.LessOrEqual(t, s.deadlines.Len(), 16)
}

// --------------------------------------------------------------------------
// Wall clock properties
// --------------------------------------------------------------------------

func TestWallClockExpiry(t *testing.T) {
	s := New[string, string](nil)

	s.PutWithLifetime("k", "v", 50*time.Millisecond)
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(100 * time.Millisecond)

	_, ok = s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestWallClockRenewOnRead(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping wall clock test in short mode")
	}

	s := New[string, int](&Options{DefaultLifetime: 100 * time.Millisecond, RenewOnRead: true})
	s.Put("k", 1)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		time.Sleep(40 * time.Millisecond)
		_, ok := s.Get("k")
		require.True(t, ok, "value expired although it was read every 40ms")
	}

	time.Sleep(200 * time.Millisecond)
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestWallClockReplaceResetsTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping wall clock test in short mode")
	}

	s := New[string, string](nil)
	s.PutWithLifetime("k", "a", time.Second)
	time.Sleep(500 * time.Millisecond)
	s.PutWithLifetime("k", "b", time.Second)
	size := s.Len()
	time.Sleep(700 * time.Millisecond)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, size, s.Len())
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

func BenchmarkPut(b *testing.B) {
	s := New[int, int](&Options{DefaultLifetime: time.Minute})
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Put(i%1024, i)
			i++
		}
	})
}

func BenchmarkGet(b *testing.B) {
	s := New[int, int](&Options{DefaultLifetime: time.Minute})
	for i := 0; i < 1024; i++ {
		s.Put(i, i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Get(i % 1024)
			i++
		}
	})
}
