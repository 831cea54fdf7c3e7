package checksum

import "fmt"

// Limit wraps another Codec to bound payload size on Encode and text length
// on Decode. Non-positive limits disable the corresponding check.
//
// Typical use: keep canonical values of untrusted input within the size the
// surrounding system is prepared to store.
type Limit struct {
	// Inner is the underlying codec. It must be set.
	Inner Codec
	// MaxPayload is the maximum payload length in bytes accepted by Encode.
	MaxPayload int
	// MaxText is the maximum text length in bytes accepted by Decode.
	// Use 90 for strict bech32 conformance.
	MaxText int
}

var _ Codec = Limit{}

// Fingerprint covers both limits and the inner codec.
func (l Limit) Fingerprint() string {
	return fmt.Sprintf("limit:%d:%d:%s", l.MaxPayload, l.MaxText, FingerprintOf(l.Inner))
}

func (l Limit) Encode(prefix string, payload []byte, v Variant) (string, error) {
	if l.MaxPayload > 0 && len(payload) > l.MaxPayload {
		return "", &EncodeError{
			Prefix: prefix,
			Err:    fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), l.MaxPayload),
		}
	}
	return l.Inner.Encode(prefix, payload, v)
}

func (l Limit) Decode(text string) (Decoded, error) {
	if l.MaxText > 0 && len(text) > l.MaxText {
		return Decoded{}, &DecodeError{
			Text: text,
			Err:  fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(text), l.MaxText),
		}
	}
	return l.Inner.Decode(text)
}
