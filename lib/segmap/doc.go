// Package segmap provides Map, a container mapping disjoint half-open key ranges
// [start, end) to values.
//
// Assigning a value to a range overwrites every point of that range. Segments that
// intersect the range are split: the parts outside the range survive with their old value.
// Segments are never mutated in place; a changed range is always a delete and an insert.
//
// Example:
//
//	m := segmap.New[int, string]("none")
//	_ = m.Set(1, 5, "a")
//	_ = m.Set(3, 7, "b")
//
//	m.Get(2) // "a"
//	m.Get(4) // "b"
//	m.Get(8) // "none"
//
// Segments are kept in a github.com/google/btree B-tree ordered by their start, which
// provides the floor (largest start <= x) and ceiling (smallest start >= x) lookups Set
// and Get are built on. Set works iteratively, consuming one overlapped segment per step.
//
// Preconditions:
//
//   - Set(x, y, v) requires x < y. Otherwise ErrInvalidRange is returned and the map is unchanged.
//   - If the segment located for a point ends at or before that point, the ordering invariant
//     is broken. Set then fails with ErrSegmentOrder instead of silently ignoring the range.
//
// Adjacent segments with equal values are not merged.
package segmap
