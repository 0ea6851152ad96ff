package intmap

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ValueCodec translates values to and from their wire form. The value
// format is type-defined and opaque to the map record; it only has to
// round-trip exactly.
type ValueCodec[V any] interface {
	EncodeValue(w io.Writer, v V) error
	DecodeValue(r io.Reader) (V, error)
}

// Encode writes the map as a flat binary record:
//
//	int32 threshold
//	int32 used
//	int32 capacity
//	used × (int32 key, opaque value)
//
// All fixed-width fields are big-endian, matching the record layout
// produced by Java's DataOutput in the original format. The record carries
// no magic number or version tag; see EncodeSnapshot for a self-describing
// envelope.
func (m *Map[V]) Encode(w io.Writer, codec ValueCodec[V]) error {
	if err := writeInt32(w, int32(m.threshold)); err != nil {
		return err
	}
	if err := writeInt32(w, int32(m.used)); err != nil {
		return err
	}
	if err := writeInt32(w, int32(len(m.keys))); err != nil {
		return err
	}
	for it := m.Entries(); it.Next(); {
		if err := writeInt32(w, it.Key()); err != nil {
			return err
		}
		if err := codec.EncodeValue(w, it.Value()); err != nil {
			return err
		}
	}
	return nil
}

// Decode reconstructs a map from the record produced by Encode. Entries are
// re-probed into fresh arrays rather than copied by position, stopping at
// the first free slot along the probe path: the stream is trusted to hold
// no duplicate keys and at most threshold-1 entries, so this restricted
// insert never grows the table. The resulting slot layout may differ from
// the encoded table's; only the key-value mapping is preserved.
//
// Options configure the growth schedule and Tracker of the decoded map.
// Tracker hooks do not fire for the decoded entries.
func Decode[V any](r io.Reader, codec ValueCodec[V], options ...func(*MapConfig)) (*Map[V], error) {
	threshold, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: decode threshold: %w", err)
	}
	used, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: decode used: %w", err)
	}
	capacity32, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: decode capacity: %w", err)
	}
	capacity := int(capacity32)
	if capacity < 3 {
		return nil, fmt.Errorf("intmap: decode: capacity %d out of range", capacity)
	}
	if used < 0 || int(used) > capacity {
		return nil, fmt.Errorf("intmap: decode: used %d out of range for capacity %d", used, capacity)
	}

	c := &MapConfig{
		loadFactor: defaultLoadFactor,
		growFactor: defaultGrowFactor,
		tracker:    noopTracker{},
	}
	for _, o := range options {
		o(c)
	}

	m := &Map[V]{
		keys:       make([]int32, capacity),
		values:     make([]V, capacity),
		states:     make([]slotState, capacity),
		used:       int(used),
		threshold:  int(threshold),
		loadFactor: c.loadFactor,
		growFactor: c.growFactor,
		tracker:    c.tracker,
	}
	for i := 0; i < int(used); i++ {
		k, err := readInt32(r)
		if err != nil {
			return nil, fmt.Errorf("intmap: decode key %d: %w", i, err)
		}
		v, err := codec.DecodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("intmap: decode value for key %d: %w", k, err)
		}
		hash := keyHash(k)
		idx := hash % capacity
		if m.states[idx] != slotFree {
			decr := 1 + hash%(capacity-2)
			for {
				idx -= decr
				if idx < 0 {
					idx += capacity
				}
				if m.states[idx] == slotFree {
					break
				}
			}
		}
		m.states[idx] = slotFull
		m.keys[idx] = k
		m.values[idx] = v
	}
	return m, nil
}

func writeInt32(w io.Writer, v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	_, err := w.Write(b[:])
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// StringCodec encodes string values as an int32 byte length followed by the
// raw bytes.
type StringCodec struct{}

func (StringCodec) EncodeValue(w io.Writer, v string) error {
	if err := writeInt32(w, int32(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(w, v)
	return err
}

func (StringCodec) DecodeValue(r io.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("intmap: negative string length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Float64Codec encodes float64 values as 8 big-endian IEEE 754 bytes.
type Float64Codec struct{}

func (Float64Codec) EncodeValue(w io.Writer, v float64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	_, err := w.Write(b[:])
	return err
}

func (Float64Codec) DecodeValue(r io.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

// Int32Codec encodes int32 values as 4 big-endian bytes.
type Int32Codec struct{}

func (Int32Codec) EncodeValue(w io.Writer, v int32) error {
	return writeInt32(w, v)
}

func (Int32Codec) DecodeValue(r io.Reader) (int32, error) {
	return readInt32(r)
}
