package intmap

import (
	"fmt"
	"strconv"

	"github.com/sugawarayuuta/sonnet"
)

// MarshalJSON renders the map as a JSON object. Keys become decimal
// strings, since JSON object keys are strings.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	out := make(map[string]V, m.used)
	m.Range(func(k int32, v V) bool {
		out[strconv.FormatInt(int64(k), 10)] = v
		return true
	})
	return sonnet.Marshal(out)
}

// UnmarshalJSON inserts every entry of a JSON object produced by
// MarshalJSON. Existing entries are kept; colliding keys are overwritten.
// An uninitialized map is given a default configuration first.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	var in map[string]V
	if err := sonnet.Unmarshal(data, &in); err != nil {
		return err
	}
	if m.keys == nil {
		*m = *New[V](max(len(in), 1))
	}
	for s, v := range in {
		k, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return fmt.Errorf("intmap: unmarshal key %q: %w", s, err)
		}
		m.Put(int32(k), v)
	}
	return nil
}
