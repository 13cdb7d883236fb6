package cache

import (
	"time"

	"github.com/ValentinKolb/kvkit/lib/ttlmap"
)

// TTL stores values in a ttlmap.Store with a fixed lifetime
type TTL[K comparable, V any] struct {
	store    *ttlmap.Store[K, V]
	lifetime time.Duration
}

// NewTTL creates a TTL backing. Every stored value expires after lifetime.
// opts configures the underlying store (optional); its DefaultLifetime is replaced by lifetime.
func NewTTL[K comparable, V any](lifetime time.Duration, opts *ttlmap.Options) *TTL[K, V] {
	if opts == nil {
		opts = ttlmap.DefaultOptions()
	}
	o := *opts
	o.DefaultLifetime = lifetime
	return &TTL[K, V]{
		store:    ttlmap.New[K, V](&o),
		lifetime: lifetime,
	}
}

// Lifetime returns the lifetime of stored values
func (t *TTL[K, V]) Lifetime() time.Duration {
	return t.lifetime
}

// Expiring returns the underlying expiring store
func (t *TTL[K, V]) Expiring() *ttlmap.Store[K, V] {
	return t.store
}

func (t *TTL[K, V]) Load(key K) (V, bool) {
	return t.store.Get(key)
}

// LoadOrCompute runs fn inside the per-key critical section of the store,
// so an expiry sweep can not remove a value while it is being created.
func (t *TTL[K, V]) LoadOrCompute(key K, fn func() (V, error)) (V, bool, error) {
	return t.store.GetOrTryCompute(key, t.lifetime, fn)
}

func (t *TTL[K, V]) Store(key K, value V) {
	t.store.PutWithLifetime(key, value, t.lifetime)
}

func (t *TTL[K, V]) Delete(key K) {
	t.store.Remove(key)
}

func (t *TTL[K, V]) Clear() {
	t.store.Clear()
}

func (t *TTL[K, V]) Size() int {
	return t.store.Len()
}

func (t *TTL[K, V]) Any() (V, bool) {
	return t.store.Any()
}

func (t *TTL[K, V]) SupportsFeature(f Feature) bool {
	return f == FeatureRetain || f == FeatureExpire
}
