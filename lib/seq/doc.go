/*
Package seq composes single values, slices and generator functions into one lazy,
pull-based traversal.

A Seq is a chain of sources that is exhausted strictly left to right. It is itself a
single-pass Cursor: once an element was pulled it can not be revisited.

	s := seq.Of(1).With(2).WithSlice([]int{3, 4})
	for v := range s.All() {
		fmt.Println(v) // 1 2 3 4
	}

Repeatable materializes a finite chain into a Replayable, which hands out a fresh cursor
for every traversal. Chains containing a generator are unbounded and must be bounded with
Limit first, otherwise Repeatable returns ErrUnbounded.
*/
package seq
