package intmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Snapshot envelope wrapping the raw Encode record:
//
//	uint32 magic
//	uint32 version
//	uint32 payload length
//	payload (the raw record, see Encode)
//	uint64 xxhash64(payload)
//
// The raw record itself is deliberately unversioned for compatibility with
// the original layout; magic, version and checksum live only in this
// envelope. All fields are big-endian.
const (
	snapshotMagic   uint32 = 0x494E544D // "INTM"
	snapshotVersion uint32 = 1
)

var (
	ErrSnapshotMagic    = errors.New("intmap: snapshot: bad magic number")
	ErrSnapshotVersion  = errors.New("intmap: snapshot: unsupported version")
	ErrSnapshotChecksum = errors.New("intmap: snapshot: checksum mismatch")
)

// EncodeSnapshot writes the map as a self-describing, checksummed snapshot.
func (m *Map[V]) EncodeSnapshot(w io.Writer, codec ValueCodec[V]) error {
	var payload bytes.Buffer
	if err := m.Encode(&payload, codec); err != nil {
		return err
	}
	if err := writeInt32(w, int32(snapshotMagic)); err != nil {
		return err
	}
	if err := writeInt32(w, int32(snapshotVersion)); err != nil {
		return err
	}
	if err := writeInt32(w, int32(payload.Len())); err != nil {
		return err
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return err
	}
	return writeUint64(w, xxhash.Sum64(payload.Bytes()))
}

// DecodeSnapshot verifies and unwraps a snapshot written by EncodeSnapshot,
// then decodes the enclosed record.
func DecodeSnapshot[V any](r io.Reader, codec ValueCodec[V], options ...func(*MapConfig)) (*Map[V], error) {
	magic, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: snapshot magic: %w", err)
	}
	if uint32(magic) != snapshotMagic {
		return nil, ErrSnapshotMagic
	}
	version, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: snapshot version: %w", err)
	}
	if uint32(version) != snapshotVersion {
		return nil, ErrSnapshotVersion
	}
	length, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: snapshot length: %w", err)
	}
	if length < 0 {
		return nil, fmt.Errorf("intmap: snapshot: negative payload length %d", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("intmap: snapshot payload: %w", err)
	}
	sum, err := readUint64(r)
	if err != nil {
		return nil, fmt.Errorf("intmap: snapshot checksum: %w", err)
	}
	if sum != xxhash.Sum64(payload) {
		return nil, ErrSnapshotChecksum
	}
	return Decode(bytes.NewReader(payload), codec, options...)
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
