package intmap

// slotState is the per-slot occupancy marker kept in the states array,
// parallel to the keys and values arrays.
//
// A removed slot (tombstone) still carries its old key so that probe
// sequences passing over it stay intact and a re-insert of the same key can
// reclaim the slot in place.
type slotState byte

const (
	slotFree slotState = iota
	slotFull
	slotRemoved
)
