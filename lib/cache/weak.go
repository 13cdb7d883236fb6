package cache

import (
	"runtime"
	"weak"

	"github.com/puzpuzpuz/xsync/v3"
)

// Weak references its values weakly: a value may be reclaimed by the garbage collector
// once nothing outside the cache references it. Loading a reclaimed key is a miss.
//
// Reclaimed keys are removed by a cleanup registered with the runtime, and lazily by
// every lookup that finds them.
type Weak[K comparable, T any] struct {
	data *xsync.MapOf[K, weak.Pointer[T]]
}

// NewWeak creates an empty Weak backing
func NewWeak[K comparable, T any]() *Weak[K, T] {
	return &Weak[K, T]{data: xsync.NewMapOf[K, weak.Pointer[T]]()}
}

// reclaim deletes key if it still maps to wp and wp was reclaimed
func (w *Weak[K, T]) reclaim(key K, wp weak.Pointer[T]) {
	w.data.Compute(key, func(cur weak.Pointer[T], loaded bool) (weak.Pointer[T], bool) {
		return cur, !loaded || (cur == wp && cur.Value() == nil)
	})
}

// reference creates the weak pointer for value and removes key once value is reclaimed
func (w *Weak[K, T]) reference(key K, value *T) weak.Pointer[T] {
	wp := weak.Make(value)
	runtime.AddCleanup(value, func(key K) { w.reclaim(key, wp) }, key)
	return wp
}

func (w *Weak[K, T]) Load(key K) (*T, bool) {
	wp, ok := w.data.Load(key)
	if !ok {
		return nil, false
	}
	if v := wp.Value(); v != nil {
		return v, true
	}
	w.reclaim(key, wp)
	return nil, false
}

func (w *Weak[K, T]) LoadOrCompute(key K, fn func() (*T, error)) (*T, bool, error) {
	var (
		value  *T // strong reference held until the caller got it
		loaded bool
		err    error
	)
	w.data.Compute(key, func(cur weak.Pointer[T], ok bool) (weak.Pointer[T], bool) {
		if ok {
			if value = cur.Value(); value != nil {
				loaded = true
				return cur, false
			}
		}
		if value, err = fn(); err != nil || value == nil {
			return cur, true
		}
		return w.reference(key, value), false
	})
	if err != nil {
		return nil, false, err
	}
	return value, loaded, nil
}

// Store inserts or replaces the value for key. Storing nil deletes key.
func (w *Weak[K, T]) Store(key K, value *T) {
	if value == nil {
		w.data.Delete(key)
		return
	}
	w.data.Store(key, w.reference(key, value))
}

func (w *Weak[K, T]) Delete(key K) {
	w.data.Delete(key)
}

func (w *Weak[K, T]) Clear() {
	w.data.Clear()
}

// Size returns the number of values that were not reclaimed yet
func (w *Weak[K, T]) Size() int {
	n := 0
	w.data.Range(func(_ K, wp weak.Pointer[T]) bool {
		if wp.Value() != nil {
			n++
		}
		return true
	})
	return n
}

func (w *Weak[K, T]) Any() (v *T, ok bool) {
	w.data.Range(func(_ K, wp weak.Pointer[T]) bool {
		v = wp.Value()
		ok = v != nil
		return !ok
	})
	return v, ok
}

func (w *Weak[K, T]) SupportsFeature(f Feature) bool {
	return f == FeatureRetain || f == FeatureReclaim
}
