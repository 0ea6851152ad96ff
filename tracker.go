package intmap

// Tracker receives slot-level notifications from a Map so that a policy
// layer can maintain auxiliary metadata (recency lists, priorities, stats)
// without touching the probing logic. LRUMap is the in-package example.
//
// All callbacks receive a slot index into the map's backing arrays. Slot
// indices are stable until the table grows; a layer that stores them must
// either tolerate growth or size the table so growth never happens.
//
// Callbacks run synchronously inside the map operation that triggered them.
type Tracker interface {
	// BeforeInsert runs at the start of Put/PutIfAbsent with the prospective
	// primary slot index, before the growth check. A callback that removes
	// entries here (eviction) is observed by that growth check.
	BeforeInsert(idx int)

	// AfterInsert runs after a new entry has been written to slot idx.
	// It does not run for in-place overwrites of an existing key.
	AfterInsert(idx int)

	// RecordAccess runs when the entry in slot idx is read by Get or
	// overwritten in place by Put.
	RecordAccess(idx int)

	// RecordRemoval runs after the entry in slot idx has been tombstoned.
	RecordRemoval(idx int)
}

// noopTracker is the default Tracker; every callback is empty.
type noopTracker struct{}

func (noopTracker) BeforeInsert(int)  {}
func (noopTracker) AfterInsert(int)   {}
func (noopTracker) RecordAccess(int)  {}
func (noopTracker) RecordRemoval(int) {}
