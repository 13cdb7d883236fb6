package cache

// NoOp stores nothing: every Store is discarded and every Load misses.
// It disables caching at a call site without changing its call shape.
type NoOp[K comparable, V any] struct{}

// NewNoOp creates a NoOp backing
func NewNoOp[K comparable, V any]() NoOp[K, V] {
	return NoOp[K, V]{}
}

func (NoOp[K, V]) Load(K) (V, bool) {
	var zero V
	return zero, false
}

// LoadOrCompute always invokes fn and returns its result without storing it
func (NoOp[K, V]) LoadOrCompute(_ K, fn func() (V, error)) (V, bool, error) {
	v, err := fn()
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v, false, nil
}

func (NoOp[K, V]) Store(K, V) {}

func (NoOp[K, V]) Delete(K) {}

func (NoOp[K, V]) Clear() {}

func (NoOp[K, V]) Size() int { return 0 }

func (NoOp[K, V]) Any() (V, bool) {
	var zero V
	return zero, false
}

func (NoOp[K, V]) SupportsFeature(Feature) bool { return false }
