package ttlmap

import (
	"sync"
	"time"

	"github.com/ValentinKolb/kvkit/lib/util"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("ttlmap")

// --------------------------------------------------------------------------
// Entry and deadline record types
// --------------------------------------------------------------------------

// entry is an immutable value with its deadline. A pointer to an entry is also its
// deadline record: replacing or renewing a key always installs a new entry, so a record
// is active exactly as long as the table still points to the same entry.
type entry[V any] struct {
	value    V
	lifetime time.Duration // lifetime used at the last put or renewal
	deadline int64         // absolute deadline (unix nanos)
}

// alive reports whether the entry's deadline lies after now (unix nanos)
func (e *entry[V]) alive(now int64) bool {
	return now < e.deadline
}

// record is pushed to the event queue whenever a new entry is installed
type record[K comparable, V any] struct {
	key   K
	entry *entry[V]
}

// Entry is a snapshot of a live key-value pair
type Entry[K comparable, V any] struct {
	Key      K
	Value    V
	Deadline time.Time
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is a concurrent key-value container in which every entry expires after its lifetime.
//
// Expiry is enforced lazily: every read and write first runs a cleanup pass that removes
// the entries whose deadline passed. Additionally, every read compares deadlines itself,
// so an expired entry is never returned even if no pass removed it yet.
//
// Thread-safety: All methods are thread-safe and can be called concurrently.
type Store[K comparable, V any] struct {
	data  *xsync.MapOf[K, *entry[V]]       // key -> current entry (= active deadline record)
	queue *util.LockFreeMPSC[record[K, V]] // newly installed records, drained by cleanup

	mu        sync.Mutex                  // guards deadlines, held by the running cleanup pass
	deadlines *util.MapHeap[K, *entry[V]] // at most one record per key, smallest deadline first

	defaultLifetime time.Duration
	renewOnRead     bool
	now             func() time.Time
	name            string
	counters        counters
}

// New creates a new Store with the specified options (optional)
func New[K comparable, V any](opts *Options) *Store[K, V] {
	if opts == nil {
		opts = DefaultOptions()
	}
	opts = opts.withDefaults()

	s := &Store[K, V]{
		data:            xsync.NewMapOf[K, *entry[V]](),
		queue:           util.NewLockFreeMPSC[record[K, V]](),
		deadlines:       util.NewMapHeap[K, *entry[V]](),
		defaultLifetime: opts.DefaultLifetime,
		renewOnRead:     opts.RenewOnRead,
		now:             opts.Clock,
		name:            opts.Name,
		counters:        newCounters(opts.Name, opts.Registry),
	}

	Logger.Debugf("%s: created store (default lifetime %s, renew on read %t)", s.name, s.defaultLifetime, s.renewOnRead)
	return s
}

// DefaultLifetime returns the lifetime used by Put
func (s *Store[K, V]) DefaultLifetime() time.Duration {
	return s.defaultLifetime
}

// newEntry creates an entry with deadline now+lifetime.
// A lifetime <= 0 yields an entry that is already expired.
func (s *Store[K, V]) newEntry(value V, lifetime time.Duration, now time.Time) *entry[V] {
	deadline := now.UnixNano()
	if lifetime > 0 {
		deadline = now.Add(lifetime).UnixNano()
	}
	return &entry[V]{
		value:    value,
		lifetime: lifetime,
		deadline: deadline,
	}
}

// track hands a newly installed entry to the next cleanup pass
func (s *Store[K, V]) track(key K, e *entry[V]) {
	s.queue.Push(&record[K, V]{key: key, entry: e})
}

// removeIf deletes key only if it still maps to e. Returns whether it was deleted.
func (s *Store[K, V]) removeIf(key K, e *entry[V]) bool {
	deleted := false
	s.data.Compute(key, func(cur *entry[V], loaded bool) (*entry[V], bool) {
		if loaded && cur == e {
			deleted = true
			return cur, true
		}
		// delete=true for a missing key prevents storing a nil entry
		return cur, !loaded
	})
	return deleted
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Put inserts or replaces the value for key using the default lifetime.
// Returns the previous (live) value, if any.
func (s *Store[K, V]) Put(key K, value V) (V, bool) {
	return s.PutWithLifetime(key, value, s.defaultLifetime)
}

// PutWithLifetime inserts or replaces the value for key with the given lifetime.
// The deadline of the key is reset to now+lifetime, the record of the replaced value is retired.
// A lifetime <= 0 stores an entry that is immediately expired: it is never returned by any
// read and is removed by the next cleanup pass.
// Returns the previous (live) value, if any.
func (s *Store[K, V]) PutWithLifetime(key K, value V, lifetime time.Duration) (V, bool) {
	s.cleanup()

	now := s.now()
	e := s.newEntry(value, lifetime, now)

	var (
		prev   V
		loaded bool
	)
	s.data.Compute(key, func(old *entry[V], exists bool) (*entry[V], bool) {
		if exists && old.alive(now.UnixNano()) {
			prev, loaded = old.value, true
		}
		return e, false
	})
	s.track(key, e)

	return prev, loaded
}

// PutIfAbsent stores value with the given lifetime only if key has no live value.
// Returns the live value and true if the key was present, else value and false.
func (s *Store[K, V]) PutIfAbsent(key K, value V, lifetime time.Duration) (V, bool) {
	return s.GetOrCompute(key, lifetime, func() V { return value })
}

// RenewKey resets the deadline of key to now plus the lifetime used at its last put or renewal.
// Returns false if the key has no live value.
func (s *Store[K, V]) RenewKey(key K) bool {
	s.cleanup()

	now := s.now()
	renewed := s.renew(key, nil, now)
	return renewed != nil
}

// renew replaces the live entry of key by a copy with a fresh deadline.
// If expected is not nil, the entry is only renewed if it is still the current one.
// Returns the new entry or nil.
func (s *Store[K, V]) renew(key K, expected *entry[V], now time.Time) *entry[V] {
	var renewed *entry[V]
	s.data.Compute(key, func(cur *entry[V], loaded bool) (*entry[V], bool) {
		if !loaded {
			return cur, true
		}
		if !cur.alive(now.UnixNano()) || (expected != nil && cur != expected) {
			return cur, false
		}
		renewed = s.newEntry(cur.value, cur.lifetime, now)
		return renewed, false
	})

	if renewed != nil {
		s.track(key, renewed)
		s.counters.renewed.Inc(1)
	}
	return renewed
}

// Remove deletes key and retires its deadline record.
// Returns the previous (live) value, if any.
func (s *Store[K, V]) Remove(key K) (V, bool) {
	s.cleanup()

	var zero V
	e, ok := s.data.LoadAndDelete(key)
	if !ok {
		return zero, false
	}

	// retire the heap record if it belongs to the removed entry
	s.mu.Lock()
	if item, exists := s.deadlines.GetByKey(key); exists && item.Payload == e {
		s.deadlines.RemoveByKey(key)
	}
	s.mu.Unlock()

	if !e.alive(s.now().UnixNano()) {
		return zero, false
	}
	return e.value, true
}

// Clear drops all values and all deadline tracking.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Clear()
	s.queue.Drain(func(*record[K, V]) {})
	s.deadlines.Reset()
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get returns the live value for key.
// If the store renews on read, a hit resets the deadline of the key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.cleanup()

	var zero V
	now := s.now()

	e, ok := s.data.Load(key)
	if !ok {
		return zero, false
	}
	if !e.alive(now.UnixNano()) {
		s.removeIf(key, e)
		return zero, false
	}

	if s.renewOnRead {
		s.renew(key, e, now)
	}
	return e.value, true
}

// GetOrCompute returns the live value for key, or creates it with fn and stores it with the given lifetime.
// The boolean is true if the value was already present.
//
// fn is invoked at most once per call and only if no live value exists. Concurrent callers for
// the same key are serialized, so fn runs once per key until that value expires or is removed.
// An expired value is replaced inside the same critical section, so a concurrent cleanup pass
// can not remove the new value.
// fn must not access the store.
func (s *Store[K, V]) GetOrCompute(key K, lifetime time.Duration, fn func() V) (V, bool) {
	v, loaded, _ := s.GetOrTryCompute(key, lifetime, func() (V, error) {
		return fn(), nil
	})
	return v, loaded
}

// GetOrTryCompute is like GetOrCompute but fn may fail.
// If fn returns an error nothing is stored and the error is returned.
func (s *Store[K, V]) GetOrTryCompute(key K, lifetime time.Duration, fn func() (V, error)) (V, bool, error) {
	s.cleanup()

	now := s.now()
	var (
		created  *entry[V]
		renewed  *entry[V]
		existing *entry[V]
		err      error
	)

	s.data.Compute(key, func(cur *entry[V], loaded bool) (*entry[V], bool) {
		if loaded && cur.alive(now.UnixNano()) {
			existing = cur
			if s.renewOnRead {
				renewed = s.newEntry(cur.value, cur.lifetime, now)
				return renewed, false
			}
			return cur, false
		}

		var value V
		value, err = fn()
		if err != nil {
			// drop an expired entry, never create one
			return cur, true
		}
		created = s.newEntry(value, lifetime, now)
		return created, false
	})

	switch {
	case err != nil:
		var zero V
		return zero, false, err
	case created != nil:
		s.track(key, created)
		return created.value, false, nil
	default:
		if renewed != nil {
			s.track(key, renewed)
			s.counters.renewed.Inc(1)
		}
		return existing.value, true, nil
	}
}

// Lifetime returns the remaining lifetime of key
func (s *Store[K, V]) Lifetime(key K) (time.Duration, bool) {
	s.cleanup()

	e, ok := s.data.Load(key)
	if !ok {
		return 0, false
	}
	now := s.now().UnixNano()
	if !e.alive(now) {
		return 0, false
	}
	return time.Duration(e.deadline - now), true
}

// ContainsKey reports whether key has a live value (does not renew)
func (s *Store[K, V]) ContainsKey(key K) bool {
	s.cleanup()

	e, ok := s.data.Load(key)
	return ok && e.alive(s.now().UnixNano())
}

// ContainsValueFunc reports whether any live value satisfies match
func (s *Store[K, V]) ContainsValueFunc(match func(V) bool) bool {
	found := false
	s.Range(func(_ K, v V) bool {
		found = match(v)
		return !found
	})
	return found
}

// ContainsValue reports whether any live value of s equals value
func ContainsValue[K comparable, V comparable](s *Store[K, V], value V) bool {
	return s.ContainsValueFunc(func(v V) bool { return v == value })
}

// Range calls fn for every live entry until fn returns false.
// Expired entries encountered on the way are removed.
// Range does not renew entries.
func (s *Store[K, V]) Range(fn func(key K, value V) bool) {
	s.cleanup()
	s.rangeEntries(func(key K, e *entry[V]) bool {
		return fn(key, e.value)
	})
}

// rangeEntries iterates live entries without running a cleanup pass first
func (s *Store[K, V]) rangeEntries(fn func(key K, e *entry[V]) bool) {
	now := s.now().UnixNano()
	var expired []record[K, V]

	s.data.Range(func(key K, e *entry[V]) bool {
		if !e.alive(now) {
			expired = append(expired, record[K, V]{key: key, entry: e})
			return true
		}
		return fn(key, e)
	})

	for _, r := range expired {
		if s.removeIf(r.key, r.entry) {
			s.counters.expired.Inc(1)
		}
	}
}

// Len returns the number of live entries
func (s *Store[K, V]) Len() int {
	count := 0
	s.Range(func(K, V) bool {
		count++
		return true
	})
	return count
}

// Any returns an arbitrary live value
func (s *Store[K, V]) Any() (V, bool) {
	var (
		value V
		found bool
	)
	s.Range(func(_ K, v V) bool {
		value, found = v, true
		return false
	})
	return value, found
}

// Keys returns a snapshot of all live keys
func (s *Store[K, V]) Keys() []K {
	keys := make([]K, 0)
	s.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns a snapshot of all live values
func (s *Store[K, V]) Values() []V {
	values := make([]V, 0)
	s.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Entries returns a snapshot of all live entries
func (s *Store[K, V]) Entries() []Entry[K, V] {
	s.cleanup()

	entries := make([]Entry[K, V], 0)
	s.rangeEntries(func(k K, e *entry[V]) bool {
		entries = append(entries, Entry[K, V]{
			Key:      k,
			Value:    e.value,
			Deadline: time.Unix(0, e.deadline),
		})
		return true
	})
	return entries
}

// Stats returns a snapshot of the sweep counters
func (s *Store[K, V]) Stats() Stats {
	return s.counters.snapshot()
}

// --------------------------------------------------------------------------
// Cleanup
// --------------------------------------------------------------------------

// Cleanup runs a cleanup pass and returns the number of removed entries
func (s *Store[K, V]) Cleanup() int {
	return s.cleanup()
}

// cleanup removes all entries whose deadline passed.
//
// The pass first moves newly installed records from the event queue into the deadline heap,
// then pops records while their deadline is <= now. A popped record only removes the value if
// the table still points to that exact entry; a record of a replaced, renewed or removed value
// is a tombstone and is discarded without touching the table.
//
// If another goroutine is already running a pass, this call returns immediately: one pass
// anywhere is sufficient since reads never return expired entries.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store[K, V]) cleanup() int {
	if !s.mu.TryLock() {
		return 0
	}
	defer s.mu.Unlock()

	s.counters.sweeps.Inc(1)

	// move new records into the heap
	tombstoned := 0
	s.queue.Drain(func(r *record[K, V]) {
		if cur, ok := s.data.Load(r.key); ok && cur == r.entry {
			s.deadlines.AddItem(r.key, r.entry.deadline, r.entry)
			return
		}
		tombstoned++
	})

	/*
		Note: now is read once per pass so that a pass always terminates,
		even if entries with tiny lifetimes are added while it runs.
	*/
	now := s.now().UnixNano()
	removed := 0

	for {
		item, exists := s.deadlines.Peek()
		if !exists || item.Priority > now {
			break
		}
		s.deadlines.PopItem()

		if s.removeIf(item.Key, item.Payload) {
			removed++
		} else {
			tombstoned++
		}
	}

	s.counters.expired.Inc(int64(removed))
	s.counters.tombstoned.Inc(int64(tombstoned))

	if removed > 0 || tombstoned > 0 {
		Logger.Debugf("%s: swept %d expired entries, discarded %d tombstoned records", s.name, removed, tombstoned)
	}
	return removed
}
