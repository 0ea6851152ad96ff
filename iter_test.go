package intmap

import "testing"

func TestIteratorOrder(t *testing.T) {
	m := New[string](7)
	m.Put(1, "a")  // slot 1
	m.Put(8, "b")  // collides with 1, lands in slot 4
	m.Put(15, "c") // collides with 1, lands in slot 0

	// iteration follows slot order, not insertion order
	wantKeys := []int32{15, 1, 8}
	wantValues := []string{"c", "a", "b"}

	it := m.Entries()
	for i := range wantKeys {
		if !it.Next() {
			t.Fatalf("Next() = false at entry %d", i)
		}
		if it.Key() != wantKeys[i] || it.Value() != wantValues[i] {
			t.Fatalf("entry %d = (%d, %q), want (%d, %q)",
				i, it.Key(), it.Value(), wantKeys[i], wantValues[i])
		}
	}
	if it.Next() {
		t.Fatal("Next() = true past the last entry")
	}
}

func TestIteratorEmpty(t *testing.T) {
	m := New[string](7)
	it := m.Entries()
	if it.HasNext() {
		t.Fatal("HasNext() = true on empty map")
	}
	if it.Next() {
		t.Fatal("Next() = true on empty map")
	}
}

func TestIteratorSkipsTombstones(t *testing.T) {
	m := New[string](7)
	m.Put(1, "a")
	m.Put(8, "b")
	m.Remove(1)

	it := m.Entries()
	if !it.Next() {
		t.Fatal("Next() = false with one live entry")
	}
	if it.Key() != 8 {
		t.Fatalf("Key() = %d, want 8", it.Key())
	}
	if it.Next() {
		t.Fatal("iterator yielded a tombstoned entry")
	}
}

func TestIteratorMisusePanics(t *testing.T) {
	m := New[string](7)
	m.Put(1, "a")

	it := m.Entries()
	mustPanic(t, "Key before Next", func() { it.Key() })
	mustPanic(t, "Value before Next", func() { it.Value() })

	if !it.Next() {
		t.Fatal("Next() = false")
	}
	_ = it.Key()
	_ = it.Value()

	if it.Next() {
		t.Fatal("Next() = true past the end")
	}
	mustPanic(t, "Key after exhaustion", func() { it.Key() })
	mustPanic(t, "Value after exhaustion", func() { it.Value() })
}
