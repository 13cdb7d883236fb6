package cache

import (
	"errors"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("cache")

// ErrNilInitializer is returned when a get-or-create call receives no initializer
var ErrNilInitializer = errors.New("cache: nil initializer")

const defaultName = "default"

// Options configures a Cache
type Options struct {
	Name string // Name used as the `cache` label of the metrics (empty = "default")
}

// DefaultOptions returns the default Cache options
func DefaultOptions() *Options {
	return &Options{
		Name: defaultName,
	}
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Creates uint64 `json:"creates"`
}

// --------------------------------------------------------------------------
// Cache
// --------------------------------------------------------------------------

// Cache is a get-or-create façade over a Backing.
// It holds no state besides the backing and its counters.
//
// Thread-safety: All methods are thread-safe and can be called concurrently.
type Cache[K comparable, V any] struct {
	backing Backing[K, V]
	name    string

	set     *metrics.Set
	hits    *metrics.Counter
	misses  *metrics.Counter
	creates *metrics.Counter
}

// New creates a Cache over backing with the specified options (optional)
func New[K comparable, V any](backing Backing[K, V], opts *Options) *Cache[K, V] {
	if opts == nil {
		opts = DefaultOptions()
	}
	name := opts.Name
	if name == "" {
		name = defaultName
	}

	set := metrics.NewSet()
	c := &Cache[K, V]{
		backing: backing,
		name:    name,
		set:     set,
		hits:    set.NewCounter(metricName("hits", name)),
		misses:  set.NewCounter(metricName("misses", name)),
		creates: set.NewCounter(metricName("creates", name)),
	}

	Logger.Debugf("%s: created cache (retain %t, expire %t, reclaim %t)", name,
		backing.SupportsFeature(FeatureRetain), backing.SupportsFeature(FeatureExpire), backing.SupportsFeature(FeatureReclaim))
	return c
}

func metricName(counter, cache string) string {
	return fmt.Sprintf(`kvkit_cache_%s_total{cache=%q}`, counter, cache)
}

// Name returns the name of the cache
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Backing returns the backing store of the cache
func (c *Cache[K, V]) Backing() Backing[K, V] {
	return c.backing
}

// Get returns the cached value for key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.backing.Load(key)
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return v, ok
}

// GetOrCreate returns the cached value for key, or creates it with fn, stores and returns it.
// fn is invoked at most once per key even under concurrent callers (see Backing.LoadOrCompute).
//
// fn runs while the backing holds the lock of the key's bucket. fn must not access the cache,
// otherwise it can deadlock.
func (c *Cache[K, V]) GetOrCreate(key K, fn func(K) V) (V, error) {
	if fn == nil {
		var zero V
		return zero, ErrNilInitializer
	}
	return c.TryGetOrCreate(key, func(k K) (V, error) {
		return fn(k), nil
	})
}

// TryGetOrCreate is like GetOrCreate but fn may fail.
// If fn returns an error nothing is stored and the error is returned.
// As with GetOrCreate, fn must not access the cache.
func (c *Cache[K, V]) TryGetOrCreate(key K, fn func(K) (V, error)) (V, error) {
	if fn == nil {
		var zero V
		return zero, ErrNilInitializer
	}

	created := false
	v, loaded, err := c.backing.LoadOrCompute(key, func() (V, error) {
		created = true
		return fn(key)
	})
	if loaded {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	if err != nil {
		return v, fmt.Errorf("cache %s: create value: %w", c.name, err)
	}
	if created {
		c.creates.Inc()
	}
	return v, nil
}

// Put inserts or replaces the value for key
func (c *Cache[K, V]) Put(key K, value V) {
	c.backing.Store(key, value)
}

// Delete removes key
func (c *Cache[K, V]) Delete(key K) {
	c.backing.Delete(key)
}

// Clear removes all values
func (c *Cache[K, V]) Clear() {
	c.backing.Clear()
}

// Size returns the number of cached values
func (c *Cache[K, V]) Size() int {
	return c.backing.Size()
}

// Any returns an arbitrary cached value
func (c *Cache[K, V]) Any() (V, bool) {
	return c.backing.Any()
}

// Stats returns the current counter values
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:    c.hits.Get(),
		Misses:  c.misses.Get(),
		Creates: c.creates.Get(),
	}
}

// WritePrometheus writes the counters of the cache in Prometheus text format to w.
// The counters live in a set owned by the cache, they are not part of the global metrics.
func (c *Cache[K, V]) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}
