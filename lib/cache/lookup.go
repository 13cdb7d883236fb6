package cache

// Lookup is the capability to resolve a key to a value.
//
// It is implemented by Cache, ttlmap.Store (Get) and segmap.Map (Lookup, via LookupFunc),
// and by any function through LookupFunc.
type Lookup[K any, V any] interface {
	Get(key K) (V, bool)
}

// LookupFunc adapts a function to the Lookup interface
type LookupFunc[K any, V any] func(key K) (V, bool)

// Get calls f(key)
func (f LookupFunc[K, V]) Get(key K) (V, bool) {
	return f(key)
}

// Total adapts a function that resolves every key, like segmap.Map.Get with its default value
func Total[K any, V any](fn func(K) V) LookupFunc[K, V] {
	return func(key K) (V, bool) {
		return fn(key), true
	}
}

// Chain returns a Lookup that asks every lookup in order and returns the first hit
func Chain[K any, V any](lookups ...Lookup[K, V]) LookupFunc[K, V] {
	return func(key K) (V, bool) {
		for _, l := range lookups {
			if v, ok := l.Get(key); ok {
				return v, true
			}
		}
		var zero V
		return zero, false
	}
}
