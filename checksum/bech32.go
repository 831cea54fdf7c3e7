package checksum

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// MaxPrefixLen is the longest human-readable part bech32 allows.
const MaxPrefixLen = 83

// Bech32Codec implements Codec on top of btcutil's bech32 package.
// The zero value is ready to use.
//
// Unlike bech32.Decode, Decode does not enforce the 90 character limit:
// wrapped payloads routinely exceed it. Wrap the codec in Limit when a bound
// is needed.
type Bech32Codec struct{}

var _ Codec = Bech32Codec{}

func (Bech32Codec) Fingerprint() string { return "bech32" }

// ValidPrefix reports whether p can be used as a human-readable part.
func ValidPrefix(p string) bool {
	if len(p) == 0 || len(p) > MaxPrefixLen {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 33 || p[i] > 126 {
			return false
		}
	}
	return true
}

func (Bech32Codec) Encode(prefix string, payload []byte, v Variant) (string, error) {
	if !ValidPrefix(prefix) {
		return "", &EncodeError{Prefix: prefix, Err: ErrInvalidPrefix}
	}
	conv, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", &EncodeError{Prefix: prefix, Err: err}
	}

	var out string
	switch v {
	case Bech32:
		out, err = bech32.Encode(prefix, conv)
	case Bech32m:
		out, err = bech32.EncodeM(prefix, conv)
	default:
		return "", &EncodeError{Prefix: prefix, Err: ErrUnknownVariant}
	}
	if err != nil {
		return "", &EncodeError{Prefix: prefix, Err: err}
	}
	return out, nil
}

func (Bech32Codec) Decode(text string) (Decoded, error) {
	hrp, data, err := bech32.DecodeNoLimit(text)
	if err != nil {
		return Decoded{}, &DecodeError{Text: text, Err: err}
	}

	// DecodeNoLimit accepts both checksum constants without telling which
	// one matched; recompute the bech32 form to find out.
	v := Bech32m
	if re, err := bech32.Encode(hrp, data); err == nil && re == strings.ToLower(text) {
		v = Bech32
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Decoded{}, &DecodeError{Text: text, Err: err}
	}
	return Decoded{Prefix: hrp, Payload: payload, Variant: v}, nil
}
