package intmap

import "math"

// LRUMap is a bounded map that evicts its least recently used entry when a
// new key would exceed the limit. It layers entirely on Map's Tracker hook
// points: an intrusive doubly-linked recency list runs over slot indices,
// so no per-entry allocation happens after construction.
//
// Get and an in-place Put of an existing key refresh the entry; eviction
// removes from the cold end. Like Map, LRUMap is not synchronized.
type LRUMap[V any] struct {
	m     *Map[V]
	limit int

	// recency list over slot indices; head is the most recently used
	prev []int32
	next []int32
	head int32
	tail int32

	// tombstones created since the last rebuild
	churn  int
	budget int
}

// NewLRU creates an LRUMap holding at most limit entries. The backing table
// is sized so that its growth threshold is never reached: slot indices stay
// stable for the lifetime of the structure. Panics if limit < 1.
func NewLRU[V any](limit int) *LRUMap[V] {
	if limit < 1 {
		panic("intmap: LRU limit must be at least 1")
	}
	lm := &LRUMap[V]{limit: limit, head: -1, tail: -1}
	size := int(math.Ceil(float64(limit+2) / defaultLoadFactor))
	lm.m = New[V](size, WithTracker(lm))

	capacity := lm.m.Capacity()
	lm.prev = make([]int32, capacity)
	lm.next = make([]int32, capacity)
	// eviction tombstones are only reclaimed by rebuilding; keep enough
	// free slots that probe sequences always terminate
	lm.budget = max(capacity-limit-2, 1)
	return lm
}

// Get returns the value stored for key and marks it most recently used.
func (lm *LRUMap[V]) Get(key int32) (value V, ok bool) {
	return lm.m.Get(key)
}

// Contains reports whether key is present without refreshing it.
func (lm *LRUMap[V]) Contains(key int32) bool {
	return lm.m.ContainsKey(key)
}

// Put stores value under key, evicting the least recently used entry first
// if a new key would exceed the limit.
func (lm *LRUMap[V]) Put(key int32, value V) (previous V, loaded bool) {
	if lm.churn >= lm.budget {
		lm.rebuild()
	}
	if lm.m.Size() >= lm.limit && !lm.m.ContainsKey(key) {
		lm.evict()
	}
	return lm.m.Put(key, value)
}

// Remove deletes key, returning the value it held.
func (lm *LRUMap[V]) Remove(key int32) (previous V, loaded bool) {
	return lm.m.Remove(key)
}

// Size returns the number of entries currently held.
func (lm *LRUMap[V]) Size() int {
	return lm.m.Size()
}

// Limit returns the configured maximum number of entries.
func (lm *LRUMap[V]) Limit() int {
	return lm.limit
}

// Oldest returns the least recently used key.
func (lm *LRUMap[V]) Oldest() (key int32, ok bool) {
	if lm.tail < 0 {
		return 0, false
	}
	return lm.m.keys[lm.tail], true
}

// Range calls yield for every entry in the backing map's slot order.
func (lm *LRUMap[V]) Range(yield func(key int32, value V) bool) {
	lm.m.Range(yield)
}

func (lm *LRUMap[V]) evict() {
	if lm.tail < 0 {
		return
	}
	lm.m.Remove(lm.m.keys[lm.tail])
}

// rebuild re-inserts all live entries into a fresh table of the same
// capacity, in cold-to-hot order so the recency list is rebuilt intact.
// This compacts eviction tombstones, which the core table only reclaims on
// growth, and growth is exactly what LRUMap's sizing rules out.
func (lm *LRUMap[V]) rebuild() {
	n := lm.m.Size()
	keys := make([]int32, 0, n)
	values := make([]V, 0, n)
	for i := lm.tail; i >= 0; i = lm.prev[i] {
		keys = append(keys, lm.m.keys[i])
		values = append(values, lm.m.values[i])
	}

	lm.m = New[V](lm.m.Capacity(), WithoutPrimeSizing(), WithTracker(lm))
	lm.head, lm.tail = -1, -1
	lm.churn = 0
	for i := range keys {
		lm.m.Put(keys[i], values[i])
	}
}

// BeforeInsert implements Tracker.
func (lm *LRUMap[V]) BeforeInsert(idx int) {}

// AfterInsert implements Tracker, attaching the new slot at the hot end.
func (lm *LRUMap[V]) AfterInsert(idx int) {
	lm.attach(int32(idx))
}

// RecordAccess implements Tracker, moving the slot to the hot end.
func (lm *LRUMap[V]) RecordAccess(idx int) {
	i := int32(idx)
	if lm.head == i {
		return
	}
	lm.unlink(i)
	lm.attach(i)
}

// RecordRemoval implements Tracker, unlinking the tombstoned slot.
func (lm *LRUMap[V]) RecordRemoval(idx int) {
	lm.unlink(int32(idx))
	lm.churn++
}

func (lm *LRUMap[V]) attach(i int32) {
	lm.prev[i] = -1
	lm.next[i] = lm.head
	if lm.head >= 0 {
		lm.prev[lm.head] = i
	}
	lm.head = i
	if lm.tail < 0 {
		lm.tail = i
	}
}

func (lm *LRUMap[V]) unlink(i int32) {
	p, n := lm.prev[i], lm.next[i]
	if p >= 0 {
		lm.next[p] = n
	} else {
		lm.head = n
	}
	if n >= 0 {
		lm.prev[n] = p
	} else {
		lm.tail = p
	}
}
