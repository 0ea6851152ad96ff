package intmap

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"
)

func TestEncodeHeaderLayout(t *testing.T) {
	m := New[string](7)
	m.Put(2, "x")
	m.Put(5, "y")

	var buf bytes.Buffer
	if err := m.Encode(&buf, StringCodec{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b := buf.Bytes()
	if len(b) < 12 {
		t.Fatalf("record too short: %d bytes", len(b))
	}
	if got := int32(binary.BigEndian.Uint32(b[0:4])); got != 5 {
		t.Errorf("threshold field = %d, want 5", got)
	}
	if got := int32(binary.BigEndian.Uint32(b[4:8])); got != 2 {
		t.Errorf("used field = %d, want 2", got)
	}
	if got := int32(binary.BigEndian.Uint32(b[8:12])); got != 7 {
		t.Errorf("capacity field = %d, want 7", got)
	}
	// first entry in slot order: key 2, then "x" length-prefixed
	if got := int32(binary.BigEndian.Uint32(b[12:16])); got != 2 {
		t.Errorf("first key = %d, want 2", got)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	m := New[string](7)
	m.Put(2, "x")
	m.Put(5, "y")

	var buf bytes.Buffer
	if err := m.Encode(&buf, StringCodec{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode[string](bytes.NewReader(buf.Bytes()), StringCodec{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Size() != 2 {
		t.Fatalf("decoded size = %d, want 2", got.Size())
	}
	if v, ok := got.Get(2); !ok || v != "x" {
		t.Fatalf("Get(2) = %q, %v", v, ok)
	}
	if v, ok := got.Get(5); !ok || v != "y" {
		t.Fatalf("Get(5) = %q, %v", v, ok)
	}
	if got.Capacity() != m.Capacity() {
		t.Fatalf("decoded capacity = %d, want %d", got.Capacity(), m.Capacity())
	}
}

// Round-trip a table that has been through growth and removals; only the
// key-value mapping must survive, not the physical layout.
func TestCodecRoundTripAfterChurn(t *testing.T) {
	m := New[float64](1)
	for i := int32(0); i < 500; i++ {
		m.Put(i, float64(i)/3)
	}
	for i := int32(0); i < 500; i += 3 {
		m.Remove(i)
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf, Float64Codec{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode[float64](bytes.NewReader(buf.Bytes()), Float64Codec{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Size() != m.Size() {
		t.Fatalf("decoded size = %d, want %d", got.Size(), m.Size())
	}
	if !reflect.DeepEqual(got.ToMap(), m.ToMap()) {
		t.Fatal("decoded content diverged from original")
	}

	// the decoded table keeps working as a map
	got.Put(10000, 1.5)
	if v, ok := got.Get(10000); !ok || v != 1.5 {
		t.Fatalf("Get(10000) on decoded table = %v, %v", v, ok)
	}
}

func TestCodecInt32Values(t *testing.T) {
	m := New[int32](11)
	for i := int32(0); i < 6; i++ {
		m.Put(i*7, -i)
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf, Int32Codec{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode[int32](bytes.NewReader(buf.Bytes()), Int32Codec{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got.ToMap(), m.ToMap()) {
		t.Fatal("decoded content diverged from original")
	}
}

func TestDecodeTruncated(t *testing.T) {
	m := New[string](7)
	m.Put(1, "hello")
	m.Put(2, "world")

	var buf bytes.Buffer
	if err := m.Encode(&buf, StringCodec{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	full := buf.Bytes()
	for _, n := range []int{0, 3, 8, 12, 14, len(full) - 1} {
		if _, err := Decode[string](bytes.NewReader(full[:n]), StringCodec{}); err == nil {
			t.Errorf("Decode of %d/%d bytes succeeded", n, len(full))
		}
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	header := func(threshold, used, capacity int32) []byte {
		var buf bytes.Buffer
		writeInt32(&buf, threshold)
		writeInt32(&buf, used)
		writeInt32(&buf, capacity)
		return buf.Bytes()
	}
	cases := []struct {
		name string
		b    []byte
	}{
		{"capacity 0", header(1, 0, 0)},
		{"capacity 2", header(1, 0, 2)},
		{"negative capacity", header(1, 0, -7)},
		{"negative used", header(5, -1, 7)},
		{"used beyond capacity", header(5, 8, 7)},
	}
	for _, c := range cases {
		if _, err := Decode[string](bytes.NewReader(c.b), StringCodec{}); err == nil {
			t.Errorf("%s: Decode succeeded", c.name)
		}
	}
}
