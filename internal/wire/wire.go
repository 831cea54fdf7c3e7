package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1

	KindCanonical byte = 1 // human -> canonical
	KindHuman     byte = 2 // canonical -> human
)

var (
	ErrCorrupt = errors.New("bechflip: corrupt memo entry")
	magic4     = [...]byte{'B', 'F', 'L', 'P'}
)

const hdrLen = 4 + 1 + 1 + 8 + 4

// Entry: magic(4) | ver(1) | kind(1) | fingerprint(u64 be) | plen(u32 be) | payload(plen)
//
// The fingerprint identifies the transcoder configuration that produced the
// entry; readers with a different configuration must ignore it.
func EncodeEntry(kind byte, fp uint64, payload []byte) []byte {
	out := make([]byte, hdrLen, hdrLen+len(payload))
	copy(out, magic4[:])
	out[4] = version
	out[5] = kind
	binary.BigEndian.PutUint64(out[6:14], fp)
	binary.BigEndian.PutUint32(out[14:18], uint32(len(payload)))
	return append(out, payload...)
}

// DecodeEntry parses an entry. The returned payload aliases b.
func DecodeEntry(b []byte) (kind byte, fp uint64, payload []byte, err error) {
	if len(b) < hdrLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return 0, 0, nil, ErrCorrupt
	}
	kind = b[5]
	if kind != KindCanonical && kind != KindHuman {
		return 0, 0, nil, ErrCorrupt
	}
	fp = binary.BigEndian.Uint64(b[6:14])
	plen := int(binary.BigEndian.Uint32(b[14:18]))
	if plen != len(b)-hdrLen { // also rejects trailing bytes
		return 0, 0, nil, ErrCorrupt
	}
	return kind, fp, b[hdrLen:], nil
}
