package seq

// Cursor is a forward-only, pull-based traversal.
//
// Next must only be called after HasNext reported true. Calling Next on an exhausted
// cursor returns the zero value.
type Cursor[T any] interface {
	HasNext() bool
	Next() T
}

// --------------------------------------------------------------------------
// Source cursors
// --------------------------------------------------------------------------

// valueCursor yields a single pending value
type valueCursor[T any] struct {
	value   T
	pending bool
}

func (c *valueCursor[T]) HasNext() bool { return c.pending }

func (c *valueCursor[T]) Next() T {
	if !c.pending {
		var zero T
		return zero
	}
	c.pending = false
	v := c.value
	var zero T
	c.value = zero
	return v
}

// sliceCursor walks a slice without copying it
type sliceCursor[T any] struct {
	items []T
	pos   int
}

func (c *sliceCursor[T]) HasNext() bool { return c.pos < len(c.items) }

func (c *sliceCursor[T]) Next() T {
	if c.pos >= len(c.items) {
		var zero T
		return zero
	}
	v := c.items[c.pos]
	c.pos++
	return v
}

// generatorCursor always has a next element, computed on demand
type generatorCursor[T any] struct {
	gen func() T
}

func (c *generatorCursor[T]) HasNext() bool { return true }

func (c *generatorCursor[T]) Next() T { return c.gen() }

// --------------------------------------------------------------------------
// Derived cursors
// --------------------------------------------------------------------------

// limitCursor yields at most n elements of src
type limitCursor[T any] struct {
	src  Cursor[T]
	left int
}

func (c *limitCursor[T]) HasNext() bool { return c.left > 0 && c.src.HasNext() }

func (c *limitCursor[T]) Next() T {
	if !c.HasNext() {
		var zero T
		return zero
	}
	c.left--
	return c.src.Next()
}

// mapCursor applies fn to every element of src
type mapCursor[T, U any] struct {
	src Cursor[T]
	fn  func(T) U
}

func (c *mapCursor[T, U]) HasNext() bool { return c.src.HasNext() }

func (c *mapCursor[T, U]) Next() U {
	if !c.src.HasNext() {
		var zero U
		return zero
	}
	return c.fn(c.src.Next())
}

// filterCursor yields the elements of src matching keep.
// HasNext pulls ahead until it finds a match and buffers it.
type filterCursor[T any] struct {
	src      Cursor[T]
	keep     func(T) bool
	next     T
	buffered bool
}

func (c *filterCursor[T]) HasNext() bool {
	for !c.buffered && c.src.HasNext() {
		v := c.src.Next()
		if c.keep(v) {
			c.next, c.buffered = v, true
		}
	}
	return c.buffered
}

func (c *filterCursor[T]) Next() T {
	var zero T
	if !c.HasNext() {
		return zero
	}
	v := c.next
	c.next, c.buffered = zero, false
	return v
}
