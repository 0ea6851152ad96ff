package intmap

// Iterator walks all full slots of a Map in ascending slot index order.
// It is lazy, forward-only and non-restartable.
//
// The iterator is a live view of the map. Structural mutation during
// iteration (inserts that grow the table, or removals) yields undefined
// results.
type Iterator[V any] struct {
	m    *Map[V]
	next int
	last int
}

// Entries returns a fresh iterator over the map.
func (m *Map[V]) Entries() *Iterator[V] {
	it := &Iterator[V]{m: m, last: -1}
	it.next = it.skip(0)
	return it
}

// skip finds the index of the next full slot at or after idx.
func (it *Iterator[V]) skip(idx int) int {
	states := it.m.states
	for idx < len(states) && states[idx] != slotFull {
		idx++
	}
	return idx
}

// HasNext reports whether another entry remains.
func (it *Iterator[V]) HasNext() bool {
	return it.next < len(it.m.states)
}

// Next advances to the next entry, reporting whether one was found. Once
// Next has returned false, Key and Value panic again.
func (it *Iterator[V]) Next() bool {
	if !it.HasNext() {
		it.last = -1
		return false
	}
	it.last = it.next
	it.next = it.skip(it.next + 1)
	return true
}

// Key returns the key of the current entry. It panics if called before the
// first Next or after Next has returned false.
func (it *Iterator[V]) Key() int32 {
	if it.last < 0 {
		panic("intmap: Iterator.Key outside iteration")
	}
	return it.m.keys[it.last]
}

// Value returns the value of the current entry. It panics if called before
// the first Next or after Next has returned false.
func (it *Iterator[V]) Value() V {
	if it.last < 0 {
		panic("intmap: Iterator.Value outside iteration")
	}
	return it.m.values[it.last]
}
