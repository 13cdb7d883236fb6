package seq

import (
	"errors"
	"iter"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("seq")

// ErrUnbounded is returned when a chain containing a generator is materialized
var ErrUnbounded = errors.New("seq: chain contains an unbounded source")

// --------------------------------------------------------------------------
// Seq
// --------------------------------------------------------------------------

// Seq is an ordered chain of sources and a single-pass Cursor over their concatenation.
// The With methods append a source to the end of the chain and return the receiver.
//
// Thread-safety: A Seq must not be used concurrently.
type Seq[T any] struct {
	sources   []Cursor[T]
	unbounded bool
}

// Of creates a sequence holding the given values
func Of[T any](values ...T) *Seq[T] {
	return new(Seq[T]).With(values...)
}

// FromSlice creates a sequence over items. The slice is not copied.
func FromSlice[T any](items []T) *Seq[T] {
	return new(Seq[T]).WithSlice(items)
}

// Generate creates an unbounded sequence that calls gen for every element
func Generate[T any](gen func() T) *Seq[T] {
	return new(Seq[T]).WithFunc(gen)
}

// FromCursor creates a sequence over an existing cursor
func FromCursor[T any](c Cursor[T]) *Seq[T] {
	return new(Seq[T]).WithCursor(c)
}

// With appends values to the chain
func (s *Seq[T]) With(values ...T) *Seq[T] {
	switch len(values) {
	case 0:
		return s
	case 1:
		return s.WithCursor(&valueCursor[T]{value: values[0], pending: true})
	default:
		return s.WithSlice(values)
	}
}

// WithSlice appends items to the chain. The slice is not copied.
func (s *Seq[T]) WithSlice(items []T) *Seq[T] {
	if len(items) == 0 {
		return s
	}
	return s.WithCursor(&sliceCursor[T]{items: items})
}

// WithFunc appends an unbounded generator to the chain
func (s *Seq[T]) WithFunc(gen func() T) *Seq[T] {
	s.unbounded = true
	return s.WithCursor(&generatorCursor[T]{gen: gen})
}

// WithCursor appends c to the chain. A cursor that reports itself as unbounded
// (see Seq.Unbounded) makes the chain unbounded.
// Appending a sequence to itself is ignored. Longer cycles (a.WithSeq(b) and b.WithSeq(a))
// are not detected and make HasNext recurse forever.
func (s *Seq[T]) WithCursor(c Cursor[T]) *Seq[T] {
	if other, ok := c.(*Seq[T]); ok && other == s {
		Logger.Warningf("ignoring attempt to append a sequence to itself")
		return s
	}
	if u, ok := c.(interface{ Unbounded() bool }); ok && u.Unbounded() {
		s.unbounded = true
	}
	s.sources = append(s.sources, c)
	return s
}

// WithSeq appends the remaining elements of other to the chain.
// s.WithSeq(s) is ignored (see WithCursor).
func (s *Seq[T]) WithSeq(other *Seq[T]) *Seq[T] {
	return s.WithCursor(other)
}

// Unbounded reports whether the chain contains a generator that was not bounded by Limit
func (s *Seq[T]) Unbounded() bool {
	return s.unbounded
}

// current returns the first source that still has elements.
// The scan always starts at the first source.
func (s *Seq[T]) current() (Cursor[T], bool) {
	for _, c := range s.sources {
		if c.HasNext() {
			return c, true
		}
	}
	return nil, false
}

// HasNext reports whether any source has elements left
func (s *Seq[T]) HasNext() bool {
	_, ok := s.current()
	return ok
}

// Next pulls the next element from the first source that has one
func (s *Seq[T]) Next() T {
	c, ok := s.current()
	if !ok {
		var zero T
		return zero
	}
	return c.Next()
}

// All returns an iterator that pulls the remaining elements of the sequence.
// Since the sequence is single-pass, a second iteration yields only what the first left.
func (s *Seq[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for s.HasNext() {
			if !yield(s.Next()) {
				return
			}
		}
	}
}

// Limit returns a bounded sequence yielding at most n remaining elements of s
func (s *Seq[T]) Limit(n int) *Seq[T] {
	if n < 0 {
		n = 0
	}
	return FromCursor[T](&limitCursor[T]{src: s, left: n})
}

// Repeatable materializes the remaining elements of the chain into a Replayable.
// The chain is consumed. Returns ErrUnbounded if the chain is unbounded.
func (s *Seq[T]) Repeatable() (*Replayable[T], error) {
	if s.unbounded {
		return nil, ErrUnbounded
	}
	var items []T
	for s.HasNext() {
		items = append(items, s.Next())
	}
	Logger.Debugf("materialized %d elements from %d sources", len(items), len(s.sources))
	return &Replayable[T]{items: items}, nil
}

// Map returns a sequence applying fn to every remaining element of s
func Map[T, U any](s *Seq[T], fn func(T) U) *Seq[U] {
	out := FromCursor[U](&mapCursor[T, U]{src: s, fn: fn})
	out.unbounded = s.unbounded
	return out
}

// Filter returns a sequence of the remaining elements of s matching keep.
// On an unbounded sequence HasNext does not return until a match is found.
func Filter[T any](s *Seq[T], keep func(T) bool) *Seq[T] {
	out := FromCursor[T](&filterCursor[T]{src: s, keep: keep})
	out.unbounded = s.unbounded
	return out
}

// --------------------------------------------------------------------------
// Replayable
// --------------------------------------------------------------------------

// Replayable is a materialized sequence that can be traversed any number of times.
//
// Thread-safety: A Replayable is immutable; cursors obtained from it are not safe for
// concurrent use.
type Replayable[T any] struct {
	items []T
}

// Cursor returns a fresh sequence positioned at the first element
func (r *Replayable[T]) Cursor() *Seq[T] {
	return FromSlice(r.items)
}

// All returns an iterator over all elements. Every call starts from the first element.
func (r *Replayable[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range r.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements
func (r *Replayable[T]) Slice() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of elements
func (r *Replayable[T]) Len() int {
	return len(r.items)
}
