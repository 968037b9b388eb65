package store

import "slices"

// IDAllocator tracks the item id high-water mark and the holes below it.
// Ids start at 1. Backends persist Max; holes are rebuilt on load.
type IDAllocator struct {
	max   int
	holes []int
}

// Reset rebuilds state from a persisted mark: every id in 1..mark that
// isn't present becomes a hole.
func (a *IDAllocator) Reset(mark int, present func(id int) bool) {
	a.max = mark
	a.holes = a.holes[:0]
	for id := 1; id <= mark; id++ {
		if !present(id) {
			a.holes = append(a.holes, id)
		}
	}
}

// Clear forgets everything, as for an empty store.
func (a *IDAllocator) Clear() {
	a.max = 0
	a.holes = a.holes[:0]
}

func (a *IDAllocator) Max() int { return a.max }

// Clone returns an allocator that shares no state with a, for rolling back
// after a failed write.
func (a *IDAllocator) Clone() IDAllocator {
	return IDAllocator{max: a.max, holes: slices.Clone(a.holes)}
}

// Next returns an unused id. grew reports that Max changed and must be saved.
func (a *IDAllocator) Next() (id int, grew bool) {
	if n := len(a.holes); n > 0 {
		id = a.holes[n-1]
		a.holes = a.holes[:n-1]
		return id, false
	}
	a.max++
	return a.max, true
}

// Release gives id back. Releasing the top id lowers the mark instead of
// leaving a hole; shrunk reports that Max changed.
func (a *IDAllocator) Release(id int) (shrunk bool) {
	if id <= 0 || id > a.max {
		return false
	}
	if id == a.max {
		a.max--
		return true
	}
	a.holes = append(a.holes, id)
	return false
}
