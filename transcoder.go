package bechflip

import (
	"crypto/sha256"
	"strings"

	"github.com/unkn0wn-root/bechflip/checksum"
	"github.com/unkn0wn-root/bechflip/internal/util"
)

// DefaultPrefix is the public prefix used by Default.
const DefaultPrefix = "cosmwasm"

// Transcoder converts between human and canonical address forms.
// It is immutable after construction and safe for concurrent use.
type Transcoder struct {
	prefix   string // public
	internal string // derived once from prefix
	variant  checksum.Variant
	codec    checksum.Codec
}

// New returns a bech32 Transcoder for the given public prefix.
func New(prefix string) (*Transcoder, error) {
	return NewWithOptions(Options{Prefix: prefix})
}

// NewM returns a bech32m Transcoder for the given public prefix.
func NewM(prefix string) (*Transcoder, error) {
	return NewWithOptions(Options{Prefix: prefix, Variant: checksum.Bech32m})
}

// Default returns a bech32 Transcoder for DefaultPrefix.
func Default() *Transcoder {
	t, err := New(DefaultPrefix)
	if err != nil {
		panic(err) // DefaultPrefix is a valid, non-palindromic prefix
	}
	return t
}

// NewWithOptions builds a Transcoder from opts. See Options for defaults.
func NewWithOptions(opts Options) (*Transcoder, error) {
	variant := coalesce(opts.Variant, checksum.Bech32)
	if !variant.Valid() {
		return nil, newError("new", KindInvalidInput, opts.Prefix, checksum.ErrUnknownVariant)
	}
	if err := checkPrefix(opts.Prefix); err != nil {
		return nil, newError("new", KindInvalidInput, opts.Prefix, err)
	}

	derive := opts.Internal
	if derive == nil {
		derive = Reverse
	}
	internal := derive(opts.Prefix)
	if err := checkPrefix(internal); err != nil {
		return nil, newError("new", KindInvalidInput, opts.Prefix, err)
	}
	if internal == opts.Prefix {
		return nil, newError("new", KindInvalidInput, opts.Prefix, errSamePrefix)
	}

	codec := opts.Codec
	if codec == nil {
		codec = checksum.Bech32Codec{}
	}
	return &Transcoder{
		prefix:   opts.Prefix,
		internal: internal,
		variant:  variant,
		codec:    codec,
	}, nil
}

func (t *Transcoder) Prefix() string            { return t.prefix }
func (t *Transcoder) InternalPrefix() string    { return t.internal }
func (t *Transcoder) Variant() checksum.Variant { return t.variant }

// Canonicalize converts a human address into its canonical bytes.
//
// Text that already decodes under the public prefix (and the configured
// variant) is returned byte-for-byte. Anything else, including text that
// decodes under the internal prefix, is lowercased and wrapped as the payload
// of a new string under the internal prefix.
func (t *Transcoder) Canonicalize(input string) ([]byte, error) {
	if d, err := t.codec.Decode(input); err == nil && t.isPublic(d) {
		return []byte(input), nil
	}

	wrapped, err := t.codec.Encode(t.internal, []byte(strings.ToLower(input)), t.variant)
	if err != nil {
		return nil, newError("canonicalize", KindInvalidInput, input, err)
	}
	return []byte(wrapped), nil
}

// Humanize converts canonical bytes back into a human address.
//
// Wrapped values under the internal prefix are unwrapped; public-prefix text
// is returned as-is. Any other bytes (e.g. a raw hash) are encoded as the
// payload of a fresh public-prefix string.
func (t *Transcoder) Humanize(canonical []byte) (string, error) {
	text := lossy(canonical)
	if d, err := t.codec.Decode(text); err == nil {
		switch {
		case t.isInternal(d):
			return lossy(d.Payload), nil
		case t.isPublic(d):
			return text, nil
		}
	}

	human, err := t.codec.Encode(t.prefix, canonical, t.variant)
	if err != nil {
		return "", newError("humanize", KindInvalidCanonicalAddress, text, err)
	}
	return human, nil
}

// Validate reports whether input is a normalized human address, i.e. one
// that survives Canonicalize followed by Humanize unchanged.
func (t *Transcoder) Validate(input string) (string, error) {
	canonical, err := t.Canonicalize(input)
	if err != nil {
		return "", err
	}
	human, err := t.Humanize(canonical)
	if err != nil {
		return "", err
	}
	if human != input {
		return "", newError("validate", KindNotNormalized, input, nil)
	}
	return input, nil
}

// Make derives a deterministic public-prefix address from label: the SHA-256
// digest of the label becomes the payload.
func (t *Transcoder) Make(label string) (string, error) {
	digest := sha256.Sum256([]byte(label))
	human, err := t.codec.Encode(t.prefix, digest[:], t.variant)
	if err != nil {
		return "", newError("make", KindInvalidInput, label, err)
	}
	return human, nil
}

// fingerprint identifies everything that shapes t's results: the prefix
// pair, the variant and the codec configuration.
func (t *Transcoder) fingerprint() uint64 {
	return util.Fingerprint(t.prefix, t.internal, t.variant.String(), checksum.FingerprintOf(t.codec))
}

func (t *Transcoder) isPublic(d checksum.Decoded) bool {
	return d.Prefix == t.prefix && d.Variant == t.variant
}

func (t *Transcoder) isInternal(d checksum.Decoded) bool {
	return d.Prefix == t.internal && d.Variant == t.variant
}

// Reverse returns s with its characters in reverse order. It is the default
// derivation of the internal prefix.
func Reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// lossy converts b to a string, replacing invalid UTF-8 with U+FFFD.
func lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func checkPrefix(p string) error {
	if !checksum.ValidPrefix(p) {
		return errBadPrefix
	}
	if strings.ToLower(p) != p {
		return errUpperPrefix
	}
	return nil
}
