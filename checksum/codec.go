// Package checksum defines the checksummed-text codec used by bechflip and
// ships a bech32/bech32m implementation of it.
//
// A checksummed text is prefix + "1" + data + 6 character checksum, using the
// lowercase alphabet "qpzry9x8gf2tvdw0s3jn54khce6mua7l". Two checksum
// constants exist (bech32 and bech32m); a string verifies under at most one.
package checksum

import (
	"errors"
	"fmt"
)

// Variant selects the checksum constant.
type Variant uint8

const (
	Bech32 Variant = iota + 1
	Bech32m
)

func (v Variant) String() string {
	switch v {
	case Bech32:
		return "bech32"
	case Bech32m:
		return "bech32m"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool { return v == Bech32 || v == Bech32m }

// ParseVariant maps "bech32" / "bech32m" to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "bech32":
		return Bech32, nil
	case "bech32m":
		return Bech32m, nil
	default:
		return 0, fmt.Errorf("checksum: unknown variant %q", s)
	}
}

// Decoded is the result of a successful Decode.
type Decoded struct {
	Prefix  string // always lowercase
	Payload []byte // 8-bit payload
	Variant Variant
}

// Codec encodes (prefix, payload, variant) into checksummed text and back.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(prefix string, payload []byte, v Variant) (string, error)
	Decode(text string) (Decoded, error)
}

// Fingerprinter is implemented by codecs whose output depends on their
// configuration. Two codecs with equal fingerprints must produce the same
// results for every input.
type Fingerprinter interface {
	Fingerprint() string
}

// FingerprintOf describes c for cache validation. Codecs that do not
// implement Fingerprinter are identified by their dynamic type only.
func FingerprintOf(c Codec) string {
	if f, ok := c.(Fingerprinter); ok {
		return f.Fingerprint()
	}
	return fmt.Sprintf("%T", c)
}

var (
	ErrInvalidPrefix   = errors.New("checksum: invalid prefix")
	ErrUnknownVariant  = errors.New("checksum: unknown variant")
	ErrPayloadTooLarge = errors.New("checksum: payload too large")
	ErrTextTooLong     = errors.New("checksum: text too long")
)

// EncodeError is returned by Encode.
type EncodeError struct {
	Prefix string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("checksum: encode with prefix %q: %v", e.Prefix, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError is returned by Decode.
type DecodeError struct {
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("checksum: decode %q: %v", truncate(e.Text, 32), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
