package bechflip

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/unkn0wn-root/bechflip/checksum"
)

const (
	longInput  = "some-extremely-long-address-also-supported-by-this-api-some-extremely-long-address-also-supported-by-this-api-some-extremely-long-address-also-supported-by-this-api"
	longVector = "msawmsoc1wdhk6efdv4u8gun9d4jkc7fdd3hkueedv9jxgun9wdej6ctvwdhj6um4wpcx7un5v4jz6cne946xs6tn94shq6fdwdhk6efdv4u8gun9d4jkc7fdd3hkueedv9jxgun9wdej6ctvwdhj6um4wpcx7un5v4jz6cne946xs6tn94shq6fdwdhk6efdv4u8gun9d4jkc7fdd3hkueedv9jxgun9wdej6ctvwdhj6um4wpcx7un5v4jz6cne946xs6tn94shq6gvu3g2s"
)

func mustNew(t *testing.T, prefix string) *Transcoder {
	t.Helper()
	tr, err := New(prefix)
	if err != nil {
		t.Fatalf("New(%q): %v", prefix, err)
	}
	return tr
}

func mustCanon(t *testing.T, tr *Transcoder, in string) []byte {
	t.Helper()
	b, err := tr.Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize(%q): %v", in, err)
	}
	return b
}

func mustHuman(t *testing.T, tr *Transcoder, b []byte) string {
	t.Helper()
	s, err := tr.Humanize(b)
	if err != nil {
		t.Fatalf("Humanize(%x): %v", b, err)
	}
	return s
}

func mustEncode(t *testing.T, prefix string, payload []byte, v checksum.Variant) string {
	t.Helper()
	s, err := checksum.Bech32Codec{}.Encode(prefix, payload, v)
	if err != nil {
		t.Fatalf("Encode(%q): %v", prefix, err)
	}
	return s
}

// ==============================
// Known vectors
// ==============================

func TestCanonicalizeVectors(t *testing.T) {
	tr := Default()
	cases := []struct {
		in, want string
	}{
		{"foobar123", "msawmsoc1vehk7cnpwgcnyvclw6y9j"},
		{"", "msawmsoc1d2j362"},
		{"a", "msawmsoc1vylhjcfd"},
		{longInput, longVector},
	}
	for _, tc := range cases {
		got := mustCanon(t, tr, tc.in)
		if string(got) != tc.want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeVectorHexBytes(t *testing.T) {
	got := mustCanon(t, Default(), "foobar123")
	want := []byte{
		0x6D, 0x73, 0x61, 0x77, 0x6D, 0x73, 0x6F, 0x63, 0x31, 0x76, 0x65, 0x68, 0x6B, 0x37, 0x63,
		0x6E, 0x70, 0x77, 0x67, 0x63, 0x6E, 0x79, 0x76, 0x63, 0x6C, 0x77, 0x36, 0x79, 0x39, 0x6A,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("canonical bytes = %X, want %X", got, want)
	}
}

// ==============================
// Round trips
// ==============================

func TestRoundTripRestoresInput(t *testing.T) {
	tr := mustNew(t, "juno")
	cases := []struct {
		in, want string
	}{
		{"shorty", "shorty"},
		{"CosmWasmChef", "cosmwasmchef"},
		{"juno1v82su97skv6ucfqvuvswe0t5fph7pfsrtraxf0x33d8ylj5qnrysdvkc95", "juno1v82su97skv6ucfqvuvswe0t5fph7pfsrtraxf0x33d8ylj5qnrysdvkc95"},
		{"", ""},
		{"ünïcödé wallet", "ünïcödé wallet"},
	}
	for _, tc := range cases {
		got := mustHuman(t, tr, mustCanon(t, tr, tc.in))
		if got != tc.want {
			t.Fatalf("first round trip of %q = %q, want %q", tc.in, got, tc.want)
		}
		// second pass must be stable
		again := mustHuman(t, tr, mustCanon(t, tr, got))
		if again != tc.want {
			t.Fatalf("second round trip of %q = %q, want %q", tc.in, again, tc.want)
		}
	}
}

func TestCanonicalizeIsIdempotentForPlainText(t *testing.T) {
	tr := Default()
	for _, x := range []string{"foo", "Bar-Baz", "", "a b c", strings.Repeat("q", 300)} {
		first := mustCanon(t, tr, x)
		second := mustCanon(t, tr, mustHuman(t, tr, first))
		if !bytes.Equal(first, second) {
			t.Fatalf("Canonicalize not idempotent for %q: %q vs %q", x, first, second)
		}
	}
}

// Mixed-case text that lowercases into a valid public address is wrapped on
// the first pass, then passes through once humanized.
func TestCanonicalizeMixedCasePublicAddressIsNotIdempotent(t *testing.T) {
	tr := Default()
	const x = "Cosmwasm10qtfdqlj"
	lower := strings.ToLower(x)
	if _, err := tr.codec.Decode(lower); err != nil {
		t.Fatalf("%q should be a valid public address: %v", lower, err)
	}

	first := mustCanon(t, tr, x)
	if !strings.HasPrefix(string(first), tr.InternalPrefix()+"1") {
		t.Fatalf("mixed case input not wrapped: %q", first)
	}
	human := mustHuman(t, tr, first)
	if human != lower {
		t.Fatalf("Humanize = %q, want %q", human, lower)
	}
	second := mustCanon(t, tr, human)
	if string(second) != lower {
		t.Fatalf("second Canonicalize = %q, want pass-through %q", second, lower)
	}
	if bytes.Equal(first, second) {
		t.Fatal("expected the two passes to differ")
	}
}

func TestCanonicalizeIsCaseInsensitive(t *testing.T) {
	tr := Default()
	upper := mustCanon(t, tr, "FOO123")
	lower := mustCanon(t, tr, "foo123")
	if !bytes.Equal(upper, lower) {
		t.Fatalf("FOO123 -> %q, foo123 -> %q", upper, lower)
	}
	if got := mustHuman(t, tr, upper); got != "foo123" {
		t.Fatalf("Humanize = %q, want foo123", got)
	}
}

func TestPassThroughPublicPrefix(t *testing.T) {
	tr := mustNew(t, "juno")
	y := mustEncode(t, "juno", bytes.Repeat([]byte{0xAB}, 32), checksum.Bech32)

	canon := mustCanon(t, tr, y)
	if !bytes.Equal(canon, []byte(y)) {
		t.Fatalf("pass-through changed bytes: %q -> %q", y, canon)
	}
	if got := mustHuman(t, tr, canon); got != y {
		t.Fatalf("Humanize = %q, want %q", got, y)
	}

	// no case normalization on pass-through
	up := strings.ToUpper(y)
	if got := mustCanon(t, tr, up); string(got) != up {
		t.Fatalf("uppercase pass-through = %q, want %q", got, up)
	}
}

func TestHumanizeRawBytes(t *testing.T) {
	tr := mustNew(t, "juno")
	hash := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09,
		0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff, 0x80, 0x81, 0xc0, 0xc1,
	}
	human := mustHuman(t, tr, hash)
	if !strings.HasPrefix(human, "juno1") {
		t.Fatalf("Humanize(raw) = %q, want juno1...", human)
	}
	d, err := checksum.Bech32Codec{}.Decode(human)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(d.Payload, hash) {
		t.Fatalf("payload = %x, want %x", d.Payload, hash)
	}
	// and back: the public-prefix text passes through
	if got := mustCanon(t, tr, human); string(got) != human {
		t.Fatalf("Canonicalize(%q) = %q", human, got)
	}
}

func TestHumanizeForeignPrefixIsReencoded(t *testing.T) {
	tr := mustNew(t, "juno")
	foreign := mustEncode(t, "osmo", []byte("x"), checksum.Bech32)
	got := mustHuman(t, tr, []byte(foreign))
	d, err := checksum.Bech32Codec{}.Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Prefix != "juno" || string(d.Payload) != foreign {
		t.Fatalf("got prefix %q payload %q", d.Prefix, d.Payload)
	}
}

func TestCanonicalizeWrapsForeignAndInternalPrefixes(t *testing.T) {
	tr := Default()
	for _, in := range []string{
		mustEncode(t, "osmo", []byte("x"), checksum.Bech32),
		mustEncode(t, tr.InternalPrefix(), []byte("x"), checksum.Bech32),
		mustEncode(t, tr.Prefix(), []byte("x"), checksum.Bech32m), // other variant
	} {
		canon := mustCanon(t, tr, in)
		d, err := checksum.Bech32Codec{}.Decode(string(canon))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if d.Prefix != tr.InternalPrefix() || string(d.Payload) != in {
			t.Fatalf("Canonicalize(%q) did not wrap: %q", in, canon)
		}
		if got := mustHuman(t, tr, canon); got != in {
			t.Fatalf("round trip of %q = %q", in, got)
		}
	}
}

func TestHumanizeInvalidUTF8IsLossy(t *testing.T) {
	tr := Default()
	wrapped := mustEncode(t, tr.InternalPrefix(), []byte{'o', 'k', 0xff, '!'}, checksum.Bech32)
	if got := mustHuman(t, tr, []byte(wrapped)); got != "ok\uFFFD!" {
		t.Fatalf("Humanize = %q", got)
	}
}

// ==============================
// Nested wrapping
// ==============================

// An outer public-prefix address whose payload is itself an internal-prefix
// address is public text like any other: it passes through both directions
// unchanged, and the inner value is never unwrapped.
func TestNestedWrapIsPreserved(t *testing.T) {
	tr := Default()
	for _, v := range []checksum.Variant{checksum.Bech32, checksum.Bech32m} {
		inner := mustEncode(t, tr.InternalPrefix(), []byte("foobar123"), v)
		outer := mustEncode(t, tr.Prefix(), []byte(inner), checksum.Bech32)

		canon := mustCanon(t, tr, outer)
		if string(canon) != outer {
			t.Fatalf("inner %v: Canonicalize(outer) = %q, want outer", v, canon)
		}
		if got := mustHuman(t, tr, canon); got != outer {
			t.Fatalf("inner %v: Humanize(Canonicalize(outer)) = %q, want %q", v, got, outer)
		}
	}
}

// ==============================
// Limits and errors
// ==============================

func TestLongInputsNeverPanic(t *testing.T) {
	tr := Default()
	long := strings.Repeat("Long-Address-", 200)
	canon := mustCanon(t, tr, long)
	if got := mustHuman(t, tr, canon); got != strings.ToLower(long) {
		t.Fatalf("long round trip mismatch")
	}

	limited, err := NewWithOptions(Options{
		Prefix: "cosmwasm",
		Codec:  checksum.Limit{Inner: checksum.Bech32Codec{}, MaxPayload: 64},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = limited.Canonicalize(long)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if !errors.Is(err, checksum.ErrPayloadTooLarge) {
		t.Fatalf("cause not preserved: %v", err)
	}
	var te *Error
	if !errors.As(err, &te) || te.Op != "canonicalize" {
		t.Fatalf("want *Error for canonicalize, got %#v", err)
	}

	_, err = limited.Humanize(bytes.Repeat([]byte{0xff}, 100))
	if !errors.Is(err, ErrInvalidCanonicalAddress) {
		t.Fatalf("want ErrInvalidCanonicalAddress, got %v", err)
	}
}

func TestNewRejectsBadPrefixes(t *testing.T) {
	bad := []string{"", "a", "aba", "noon", "Juno", "sp ace", strings.Repeat("x", 84)}
	for _, p := range bad {
		_, err := New(p)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("New(%q): want ErrInvalidInput, got %v", p, err)
		}
	}
	if _, err := NewWithOptions(Options{Prefix: "juno", Variant: checksum.Variant(7)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown variant: %v", err)
	}
	identity := func(s string) string { return s }
	if _, err := NewWithOptions(Options{Prefix: "juno", Internal: identity}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("identity derivation: %v", err)
	}
}

func TestCustomInternalPrefix(t *testing.T) {
	tr, err := NewWithOptions(Options{
		Prefix:   "juno",
		Internal: func(p string) string { return "x" + p },
	})
	if err != nil {
		t.Fatal(err)
	}
	if tr.InternalPrefix() != "xjuno" {
		t.Fatalf("InternalPrefix = %q", tr.InternalPrefix())
	}
	canon := mustCanon(t, tr, "alice")
	if !strings.HasPrefix(string(canon), "xjuno1") {
		t.Fatalf("Canonicalize = %q", canon)
	}
	if got := mustHuman(t, tr, canon); got != "alice" {
		t.Fatalf("Humanize = %q", got)
	}
}

func TestBech32mTranscoder(t *testing.T) {
	tr, err := NewM("juno")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Variant() != checksum.Bech32m {
		t.Fatalf("Variant = %v", tr.Variant())
	}
	canon := mustCanon(t, tr, "shorty")
	d, err := checksum.Bech32Codec{}.Decode(string(canon))
	if err != nil || d.Variant != checksum.Bech32m || d.Prefix != "onuj" {
		t.Fatalf("Decode(%q) = %+v, %v", canon, d, err)
	}
	if got := mustHuman(t, tr, canon); got != "shorty" {
		t.Fatalf("Humanize = %q", got)
	}
	// a bech32 wrap is foreign to a bech32m transcoder
	b32 := mustCanon(t, mustNew(t, "juno"), "shorty")
	if got := mustHuman(t, tr, b32); got == "shorty" {
		t.Fatalf("bech32 wrap must not be unwrapped by a bech32m transcoder")
	}
}

// ==============================
// Validate / Make
// ==============================

func TestValidate(t *testing.T) {
	tr := Default()
	for _, ok := range []string{"foo", "foobar123", mustEncode(t, "cosmwasm", []byte("x"), checksum.Bech32)} {
		got, err := tr.Validate(ok)
		if err != nil || got != ok {
			t.Fatalf("Validate(%q) = %q, %v", ok, got, err)
		}
	}
	for _, bad := range []string{"Foobar123", "FOOBAR123"} {
		_, err := tr.Validate(bad)
		if !errors.Is(err, ErrNotNormalized) {
			t.Fatalf("Validate(%q): want ErrNotNormalized, got %v", bad, err)
		}
	}
}

func TestMakeIsDeterministic(t *testing.T) {
	tr := mustNew(t, "osmo")
	a1, err := tr.Make("creator")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := tr.Make("creator")
	b, _ := tr.Make("bobby")
	if a1 != a2 || a1 == b {
		t.Fatalf("Make not deterministic/distinct: %q %q %q", a1, a2, b)
	}
	d, err := checksum.Bech32Codec{}.Decode(a1)
	if err != nil || d.Prefix != "osmo" || len(d.Payload) != 32 {
		t.Fatalf("Decode(%q) = %+v, %v", a1, d, err)
	}
	if _, err := tr.Validate(a1); err != nil {
		t.Fatalf("made address must validate: %v", err)
	}
}

// ==============================
// Injected codec
// ==============================

// fakeCodec simulates a checksummed-text codec with an easy to read format:
// "<prefix>|<variant>|<payload>". It records every call.
type fakeCodec struct {
	mu      sync.Mutex
	encodes []string
	decodes []string
	failEnc bool
}

func (f *fakeCodec) Encode(prefix string, payload []byte, v checksum.Variant) (string, error) {
	f.mu.Lock()
	f.encodes = append(f.encodes, prefix)
	f.mu.Unlock()
	if f.failEnc {
		return "", checksum.ErrPayloadTooLarge
	}
	return prefix + "|" + v.String() + "|" + string(payload), nil
}

func (f *fakeCodec) Decode(text string) (checksum.Decoded, error) {
	f.mu.Lock()
	f.decodes = append(f.decodes, text)
	f.mu.Unlock()
	parts := strings.SplitN(text, "|", 3)
	if len(parts) != 3 {
		return checksum.Decoded{}, errors.New("fake: malformed")
	}
	v, err := checksum.ParseVariant(parts[1])
	if err != nil {
		return checksum.Decoded{}, err
	}
	return checksum.Decoded{Prefix: parts[0], Payload: []byte(parts[2]), Variant: v}, nil
}

func TestDecisionOrderWithFakeCodec(t *testing.T) {
	fc := &fakeCodec{}
	tr, err := NewWithOptions(Options{Prefix: "abc", Codec: fc})
	if err != nil {
		t.Fatal(err)
	}

	// public prefix: pass-through, no encode
	if got := mustCanon(t, tr, "abc|bech32|Payload"); string(got) != "abc|bech32|Payload" {
		t.Fatalf("pass-through = %q", got)
	}
	if len(fc.encodes) != 0 {
		t.Fatalf("pass-through must not encode, got %v", fc.encodes)
	}

	// internal prefix: wrapped again, lowercased
	if got := mustCanon(t, tr, "cba|bech32|X"); string(got) != "cba|bech32|cba|bech32|x" {
		t.Fatalf("internal-prefix input = %q", got)
	}

	// plain text
	if got := mustCanon(t, tr, "Hello"); string(got) != "cba|bech32|hello" {
		t.Fatalf("plain = %q", got)
	}
	if got := mustHuman(t, tr, []byte("cba|bech32|hello")); got != "hello" {
		t.Fatalf("unwrap = %q", got)
	}
	if got := mustHuman(t, tr, []byte("abc|bech32|raw")); got != "abc|bech32|raw" {
		t.Fatalf("public humanize = %q", got)
	}
	if got := mustHuman(t, tr, []byte("zzz|bech32|raw")); got != "abc|bech32|zzz|bech32|raw" {
		t.Fatalf("foreign humanize = %q", got)
	}
	if got := mustHuman(t, tr, []byte("cba|bech32m|hello")); got != "abc|bech32|cba|bech32m|hello" {
		t.Fatalf("other-variant humanize = %q", got)
	}

	fc.failEnc = true
	if _, err := tr.Canonicalize("Hello"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if _, err := tr.Humanize([]byte("raw")); !errors.Is(err, ErrInvalidCanonicalAddress) {
		t.Fatalf("want ErrInvalidCanonicalAddress, got %v", err)
	}
}

func TestConcurrentUse(t *testing.T) {
	tr := mustNew(t, "juno")
	want := string(mustCanon(t, tr, "shared"))

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b, err := tr.Canonicalize("SHARED")
				if err != nil || string(b) != want {
					errs <- string(b)
					return
				}
				if h, err := tr.Humanize(b); err != nil || h != "shared" {
					errs <- h
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("concurrent mismatch: %q", e)
	}
}

func TestReverse(t *testing.T) {
	cases := map[string]string{"": "", "a": "a", "juno": "onuj", "cosmwasm": "msawmsoc"}
	for in, want := range cases {
		if got := Reverse(in); got != want {
			t.Fatalf("Reverse(%q) = %q, want %q", in, got, want)
		}
	}
}
