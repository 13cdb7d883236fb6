package cache

import "github.com/puzpuzpuz/xsync/v3"

// Unbounded keeps every value until it is deleted or the backing is cleared
type Unbounded[K comparable, V any] struct {
	data *xsync.MapOf[K, V]
}

// NewUnbounded creates an empty Unbounded backing
func NewUnbounded[K comparable, V any]() *Unbounded[K, V] {
	return &Unbounded[K, V]{data: xsync.NewMapOf[K, V]()}
}

func (u *Unbounded[K, V]) Load(key K) (V, bool) {
	return u.data.Load(key)
}

func (u *Unbounded[K, V]) LoadOrCompute(key K, fn func() (V, error)) (V, bool, error) {
	var (
		loaded bool
		err    error
	)
	v, _ := u.data.Compute(key, func(cur V, ok bool) (V, bool) {
		if ok {
			loaded = true
			return cur, false
		}
		var nv V
		if nv, err = fn(); err != nil {
			return cur, true
		}
		return nv, false
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return v, loaded, nil
}

func (u *Unbounded[K, V]) Store(key K, value V) {
	u.data.Store(key, value)
}

func (u *Unbounded[K, V]) Delete(key K) {
	u.data.Delete(key)
}

func (u *Unbounded[K, V]) Clear() {
	u.data.Clear()
}

func (u *Unbounded[K, V]) Size() int {
	return u.data.Size()
}

func (u *Unbounded[K, V]) Any() (v V, ok bool) {
	u.data.Range(func(_ K, value V) bool {
		v, ok = value, true
		return false
	})
	return v, ok
}

func (u *Unbounded[K, V]) SupportsFeature(f Feature) bool {
	return f == FeatureRetain
}
