package segmap

import (
	"cmp"
	"errors"
	"fmt"
	"sync"

	"github.com/google/btree"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("segmap")

const btreeDegree = 32

var (
	// ErrInvalidRange is returned by Set if start >= end
	ErrInvalidRange = errors.New("segmap: start must be less than end")
	// ErrSegmentOrder is returned if the segment located for a point ends at or before that point.
	// This indicates a broken ordering invariant; the located segment is left untouched.
	ErrSegmentOrder = errors.New("segmap: located segment does not cover or follow the point")
)

// --------------------------------------------------------------------------
// Segment
// --------------------------------------------------------------------------

// Segment assigns Value to the half-open range [Start, End)
type Segment[K cmp.Ordered, V any] struct {
	Start K
	End   K
	Value V
}

// Contains reports whether x lies in [Start, End)
func (s Segment[K, V]) Contains(x K) bool {
	return s.Start <= x && x < s.End
}

func (s Segment[K, V]) String() string {
	return fmt.Sprintf("[%v, %v) -> %v", s.Start, s.End, s.Value)
}

func lessByStart[K cmp.Ordered, V any](a, b Segment[K, V]) bool {
	return a.Start < b.Start
}

// --------------------------------------------------------------------------
// Map
// --------------------------------------------------------------------------

// Map maps disjoint half-open key ranges to values.
// Points not covered by any segment map to the default value.
//
// Thread-safety: All methods are thread-safe. Set calls are serialized, Get calls may run concurrently.
type Map[K cmp.Ordered, V any] struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[Segment[K, V]] // segments ordered by Start, pairwise non-overlapping
	def  V
}

// New creates an empty Map whose uncovered points map to def
func New[K cmp.Ordered, V any](def V) *Map[K, V] {
	return &Map[K, V]{
		tree: btree.NewG[Segment[K, V]](btreeDegree, lessByStart[K, V]),
		def:  def,
	}
}

// Default returns the value of uncovered points
func (m *Map[K, V]) Default() V {
	return m.def
}

// Get returns the value of the segment containing x or the default value
func (m *Map[K, V]) Get(x K) V {
	if v, ok := m.Lookup(x); ok {
		return v
	}
	return m.def
}

// Lookup returns the value of the segment containing x.
// The boolean is false if no segment contains x.
func (m *Map[K, V]) Lookup(x K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.floor(x); ok && s.Contains(x) {
		return s.Value, true
	}
	var zero V
	return zero, false
}

// Set assigns value to every point in [x, y).
// Segments intersecting the range are split: their parts outside the range keep their value.
// The range itself is stored as one segment.
// Returns ErrInvalidRange if x >= y (the map is not changed).
func (m *Map[K, V]) Set(x, y K, value V) error {
	if !(x < y) {
		return fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, x, y)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	/*
		Note: each step either finishes the range or consumes one existing segment
		and continues at its end. The loop replaces a recursion whose depth would grow
		with the number of overlapped segments. Consumed segments are only deleted,
		[x, y) is inserted once at the end.
	*/
	start := x
	for more := true; more; {
		s, found := m.locate(x)

		var err error
		x, more, err = m.consume(s, found, x, y)
		if err != nil {
			// the part consumed so far lost its old segments, it gets the new value
			m.insert(start, x, value)
			Logger.Errorf("set [%v, %v): %v", start, y, err)
			return err
		}
	}
	m.insert(start, y, value)
	return nil
}

// Len returns the number of stored segments
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Len()
}

// Segments returns a snapshot of all segments ordered by start
func (m *Map[K, V]) Segments() []Segment[K, V] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	segments := make([]Segment[K, V], 0, m.tree.Len())
	m.tree.Ascend(func(s Segment[K, V]) bool {
		segments = append(segments, s)
		return true
	})
	return segments
}

// Clear removes all segments
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Clear(false)
}

// --------------------------------------------------------------------------
// Internal helpers (callers hold the lock)
// --------------------------------------------------------------------------

// floor returns the segment with the largest start <= x
func (m *Map[K, V]) floor(x K) (Segment[K, V], bool) {
	var (
		found Segment[K, V]
		ok    bool
	)
	m.tree.DescendLessOrEqual(Segment[K, V]{Start: x}, func(s Segment[K, V]) bool {
		found, ok = s, true
		return false
	})
	return found, ok
}

// ceiling returns the segment with the smallest start >= x
func (m *Map[K, V]) ceiling(x K) (Segment[K, V], bool) {
	var (
		found Segment[K, V]
		ok    bool
	)
	m.tree.AscendGreaterOrEqual(Segment[K, V]{Start: x}, func(s Segment[K, V]) bool {
		found, ok = s, true
		return false
	})
	return found, ok
}

// locate returns the segment relevant for x: the segment containing x if any,
// else the next segment starting after x.
func (m *Map[K, V]) locate(x K) (Segment[K, V], bool) {
	if s, ok := m.floor(x); ok && s.Contains(x) {
		return s, true
	}
	return m.ceiling(x)
}

// insert stores [x, y) -> value, empty ranges are skipped
func (m *Map[K, V]) insert(x, y K, value V) {
	if x < y {
		m.tree.ReplaceOrInsert(Segment[K, V]{Start: x, End: y, Value: value})
	}
}

// consume performs one step of Set for the range [x, y) against the located segment s.
// It deletes s if it intersects the range and re-inserts the parts of s outside the range.
// It returns where the range continues and whether it must continue.
func (m *Map[K, V]) consume(s Segment[K, V], found bool, x, y K) (K, bool, error) {
	if !found {
		return y, false, nil
	}

	switch {
	case x < s.Start:
		// disjoint, s starts after the range
		if y <= s.Start {
			return y, false, nil
		}
		m.tree.Delete(s)

	case x < s.End:
		// s contains x, keep its head
		m.tree.Delete(s)
		m.insert(s.Start, x, s.Value)

	default:
		return x, false, fmt.Errorf("%w: point %v, segment %s", ErrSegmentOrder, x, s)
	}

	// the range ends inside s, keep its tail
	if y <= s.End {
		m.insert(y, s.End, s.Value)
		return y, false, nil
	}

	// the range covers the rest of s and continues after it
	return s.End, true, nil
}
