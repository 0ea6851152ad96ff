package intmap

import (
	"fmt"
	"math"
	"strings"
)

const (
	defaultLoadFactor = 0.7
	defaultGrowFactor = 2.0
)

// Map is an int32-keyed hash map with open addressing and double hashing.
//
// Entries live in three parallel arrays (keys, values, states) of equal,
// prime length. A key probes from hash%capacity and, on collision, walks
// backwards in steps of 1+hash%(capacity-2); because the capacity is prime,
// the step is coprime with it and the probe sequence covers every slot
// before repeating. Removal leaves a tombstone so probe sequences for keys
// displaced past the slot stay intact; tombstones are compacted away on
// growth.
//
// Key properties of intmap.Map:
//   - Lookup, insert and remove are O(1) expected, O(capacity) worst case
//   - Growth triggers pre-emptively at used+1 >= round(capacity*loadFactor)
//     and always lands on a larger prime capacity
//   - Four Tracker hook points allow eviction layers (see LRUMap) to track
//     accesses and removals without touching the probing logic
//   - The binary, JSON and snapshot codecs in this package round-trip the
//     key-value mapping (not the physical slot layout)
//
// Map is not synchronized. It is a single-writer, in-process structure;
// concurrent mutation without external locking is a data race.
//
// The zero Map is not usable; construct with New or Decode.
type Map[V any] struct {
	keys   []int32
	values []V
	states []slotState

	used      int
	threshold int

	loadFactor float64
	growFactor float64

	tracker Tracker
}

// MapConfig defines configurable Map options.
type MapConfig struct {
	loadFactor float64
	growFactor float64
	forcePrime bool
	tracker    Tracker
}

// WithLoadFactor sets the occupancy ratio at which the table grows.
// Values outside (0, 1) are ignored.
func WithLoadFactor(f float64) func(*MapConfig) {
	return func(c *MapConfig) {
		if f > 0 && f < 1 {
			c.loadFactor = f
		}
	}
}

// WithGrowFactor sets the multiplicative capacity target for the next
// growth, before prime rounding. Values <= 1 are ignored.
func WithGrowFactor(f float64) func(*MapConfig) {
	return func(c *MapConfig) {
		if f > 1 {
			c.growFactor = f
		}
	}
}

// WithoutPrimeSizing uses the requested size as the capacity verbatim
// instead of rounding it up to a prime. The caller is then responsible for
// passing a prime; a composite capacity shares factors with some step sizes
// and forfeits the full-cycle probing guarantee.
func WithoutPrimeSizing() func(*MapConfig) {
	return func(c *MapConfig) {
		c.forcePrime = false
	}
}

// WithTracker attaches a Tracker whose callbacks run at the four hook
// points. A nil value is ignored.
func WithTracker(t Tracker) func(*MapConfig) {
	return func(c *MapConfig) {
		if t != nil {
			c.tracker = t
		}
	}
}

// New creates a Map with capacity for at least size entries.
//
// Parameters:
//   - WithLoadFactor, WithGrowFactor options for the growth schedule
//   - WithoutPrimeSizing option to suppress prime rounding
//   - WithTracker option to attach hook callbacks
//
// Panics if size < 1, or if prime rounding is suppressed and size < 3.
func New[V any](size int, options ...func(*MapConfig)) *Map[V] {
	if size < 1 {
		panic("intmap: size must be at least 1")
	}
	c := &MapConfig{
		loadFactor: defaultLoadFactor,
		growFactor: defaultGrowFactor,
		forcePrime: true,
		tracker:    noopTracker{},
	}
	for _, o := range options {
		o(c)
	}
	capacity := size
	if c.forcePrime {
		capacity = NextPrime(size)
	}
	if capacity < 3 {
		// the probe step is computed modulo capacity-2
		panic("intmap: capacity must be at least 3")
	}
	return &Map[V]{
		keys:       make([]int32, capacity),
		values:     make([]V, capacity),
		states:     make([]slotState, capacity),
		threshold:  int(math.Round(float64(capacity) * c.loadFactor)),
		loadFactor: c.loadFactor,
		growFactor: c.growFactor,
		tracker:    c.tracker,
	}
}

// keyHash masks the sign bit so the hash is always non-negative. Keys are
// their own hash source; there is no additional mixing.
func keyHash(key int32) int {
	return int(key & 0x7fffffff)
}

// available reports whether the slot can take a new entry for key: either
// it is free, or it is a tombstone left behind by the same key. A tombstone
// of a different key is never reused, because the displaced key may live
// further along a probe sequence that runs through this slot.
func (m *Map[V]) available(idx int, key int32) bool {
	switch m.states[idx] {
	case slotFree:
		return true
	case slotRemoved:
		return m.keys[idx] == key
	}
	return false
}

// findKey returns the slot index holding key, or -1 if absent. The probe
// stops on a free slot or on key's own tombstone; tombstones of other keys
// are passed through.
func (m *Map[V]) findKey(key int32) int {
	keys := m.keys
	states := m.states
	n := len(keys)

	hash := keyHash(key)
	idx := hash % n
	if states[idx] == slotFree {
		return -1
	}
	if states[idx] == slotFull && keys[idx] == key {
		return idx
	}
	decr := 1 + hash%(n-2)
	for {
		idx -= decr
		if idx < 0 {
			idx += n
		}
		if m.available(idx, key) {
			return -1
		}
		if states[idx] == slotFull && keys[idx] == key {
			return idx
		}
	}
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key int32) (value V, ok bool) {
	i := m.findKey(key)
	if i < 0 {
		return value, false
	}
	m.tracker.RecordAccess(i)
	return m.values[i], true
}

// ContainsKey reports whether key is present. Unlike Get it does not count
// as an access for Tracker purposes.
func (m *Map[V]) ContainsKey(key int32) bool {
	return m.findKey(key) >= 0
}

// Put stores value under key, returning the previous value if the key was
// already present.
func (m *Map[V]) Put(key int32, value V) (previous V, loaded bool) {
	hash := keyHash(key)
	idx := hash % len(m.keys)
	if m.preAdd(idx) {
		idx = hash % len(m.keys)
	}

	keys := m.keys
	values := m.values
	states := m.states
	n := len(keys)

	if !m.available(idx, key) {
		if states[idx] == slotFull && keys[idx] == key {
			previous = values[idx]
			values[idx] = value
			m.tracker.RecordAccess(idx)
			return previous, true
		}
		decr := 1 + hash%(n-2)
		for {
			idx -= decr
			if idx < 0 {
				idx += n
			}
			if m.available(idx, key) {
				break
			}
			if states[idx] == slotFull && keys[idx] == key {
				previous = values[idx]
				values[idx] = value
				m.tracker.RecordAccess(idx)
				return previous, true
			}
		}
	}
	keys[idx] = key
	values[idx] = value
	states[idx] = slotFull
	m.used++
	m.tracker.AfterInsert(idx)
	return previous, false
}

// PutIfAbsent stores value under key only if the key is not already
// present; otherwise it returns the existing value untouched.
func (m *Map[V]) PutIfAbsent(key int32, value V) (existing V, loaded bool) {
	hash := keyHash(key)
	idx := hash % len(m.keys)
	if m.preAdd(idx) {
		idx = hash % len(m.keys)
	}

	keys := m.keys
	values := m.values
	states := m.states
	n := len(keys)

	if !m.available(idx, key) {
		if states[idx] == slotFull && keys[idx] == key {
			return values[idx], true
		}
		decr := 1 + hash%(n-2)
		for {
			idx -= decr
			if idx < 0 {
				idx += n
			}
			if m.available(idx, key) {
				break
			}
			if states[idx] == slotFull && keys[idx] == key {
				return values[idx], true
			}
		}
	}
	keys[idx] = key
	values[idx] = value
	states[idx] = slotFull
	m.used++
	m.tracker.AfterInsert(idx)
	return existing, false
}

// Remove deletes key, returning the value it held. The slot becomes a
// tombstone rather than free so that probe sequences running through it
// keep working.
func (m *Map[V]) Remove(key int32) (previous V, loaded bool) {
	var zero V
	i := m.findKey(key)
	if i < 0 {
		return zero, false
	}
	previous = m.values[i]
	m.values[i] = zero // tombstones keep the key, not the value
	m.states[i] = slotRemoved
	m.used--
	m.tracker.RecordRemoval(i)
	return previous, true
}

// preAdd runs the before-insert hook and grows the table if one more entry
// would reach the load threshold. Reports whether the table was replaced,
// in which case the caller must recompute its primary index.
func (m *Map[V]) preAdd(idx int) bool {
	m.tracker.BeforeInsert(idx)
	if m.used+1 >= m.threshold {
		m.ensureCapacity(int(math.Round(float64(len(m.keys)) * m.growFactor)))
		return true
	}
	return false
}

func (m *Map[V]) ensureCapacity(newCapacity int) {
	prime := NextPrime(newCapacity)
	m.rehash(prime)
	m.threshold = int(math.Round(float64(prime) * m.loadFactor))
}

// rehash rebuilds the backing arrays at newCapacity, re-probing every full
// entry. Free and removed slots are dropped, so rehashing compacts
// tombstones. Growth is strictly monotonic; a non-larger target is a
// programming error.
func (m *Map[V]) rehash(newCapacity int) {
	oldCapacity := len(m.keys)
	if newCapacity <= oldCapacity {
		panic(fmt.Sprintf("intmap: rehash from %d to %d", oldCapacity, newCapacity))
	}
	oldKeys := m.keys
	oldValues := m.values
	oldStates := m.states

	newKeys := make([]int32, newCapacity)
	newValues := make([]V, newCapacity)
	newStates := make([]slotState, newCapacity)
	used := 0
	for i := 0; i < oldCapacity; i++ {
		if oldStates[i] != slotFull {
			continue
		}
		used++
		k := oldKeys[i]
		hash := keyHash(k)
		idx := hash % newCapacity
		if newStates[idx] == slotFull {
			decr := 1 + hash%(newCapacity-2)
			for newStates[idx] != slotFree {
				idx -= decr
				if idx < 0 {
					idx += newCapacity
				}
			}
		}
		newKeys[idx] = k
		newValues[idx] = oldValues[i]
		newStates[idx] = slotFull
	}
	m.keys = newKeys
	m.values = newValues
	m.states = newStates
	m.used = used
}

// Size returns the number of entries in the map.
func (m *Map[V]) Size() int {
	return m.used
}

// Capacity returns the current backing array length.
func (m *Map[V]) Capacity() int {
	return len(m.keys)
}

// Clear removes all entries, retaining the current capacity.
func (m *Map[V]) Clear() {
	clear(m.states)
	clear(m.values)
	m.used = 0
}

// Range calls yield for every entry in ascending slot order until yield
// returns false. The order is an artifact of hashing, not insertion.
func (m *Map[V]) Range(yield func(key int32, value V) bool) {
	for i, s := range m.states {
		if s != slotFull {
			continue
		}
		if !yield(m.keys[i], m.values[i]) {
			return
		}
	}
}

// All is the iterator version of Range, usable with range-over-func.
func (m *Map[V]) All() func(yield func(int32, V) bool) {
	return m.Range
}

// ToMap returns a built-in map holding a copy of all entries.
func (m *Map[V]) ToMap() map[int32]V {
	out := make(map[int32]V, m.used)
	m.Range(func(k int32, v V) bool {
		out[k] = v
		return true
	})
	return out
}

// String implements fmt.Stringer, rendering {k1=v1,k2=v2,...} in iteration
// order.
func (m *Map[V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for it := m.Entries(); it.Next(); {
		if sb.Len() > 1 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%v=%v", it.Key(), it.Value())
	}
	sb.WriteByte('}')
	return sb.String()
}
