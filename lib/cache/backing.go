package cache

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Feature represents backing capabilities as bit flags
type Feature uint64

const (
	FeatureRetain  Feature = 1 << iota // Stored values can be loaded again
	FeatureExpire                      // Values expire after a lifetime
	FeatureReclaim                     // Values may be reclaimed by the garbage collector
)

func (f Feature) String() string {
	switch f {
	case FeatureRetain:
		return "Retain"
	case FeatureExpire:
		return "Expire"
	case FeatureReclaim:
		return "Reclaim"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Backing Interface
// --------------------------------------------------------------------------

// Backing is the storage policy behind a Cache.
// All implementations must be safe for concurrent use.
type Backing[K comparable, V any] interface {

	// Load returns the stored value for key
	Load(key K) (V, bool)

	// LoadOrCompute returns the stored value for key, or computes it with fn and stores it.
	// The boolean is true if the value was already stored.
	// Concurrent calls for the same key invoke fn at most once, unless the backing does not
	// retain values (see FeatureRetain). If fn fails, nothing is stored and the error is returned.
	// fn may run under a lock of the backing and must not access it.
	LoadOrCompute(key K, fn func() (V, error)) (V, bool, error)

	// Store inserts or replaces the value for key
	Store(key K, value V)

	// Delete removes key
	Delete(key K)

	// Clear removes all keys
	Clear()

	// Size returns the number of stored values
	Size() int

	// Any returns an arbitrary stored value
	Any() (V, bool)

	// SupportsFeature reports whether the backing has the given capability
	SupportsFeature(f Feature) bool
}
