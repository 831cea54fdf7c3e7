// Package bechflip converts addresses between a human form (string) and a
// canonical form ([]byte) with a bech32 "prefix flip".
//
// Components:
//   - Transcoder: Canonicalize / Humanize under one public prefix and one
//     checksum variant (bech32 or bech32m).
//   - checksum.Codec: encodes and decodes (prefix, payload, variant).
//   - Memo: optional memoizing layer over a provider.Provider (Ristretto, BigCache).
//
// Prefixes:
//
//	public:   cosmwasm  - human addresses, passed through unchanged
//	internal: msawmsoc  - public reversed; wraps anything that is not a
//	                      public address so it survives as canonical bytes
//
// Round trip:
//
//	t, _ := bechflip.New("juno")
//	c, _ := t.Canonicalize("shorty") // onuj1... (wrapped)
//	h, _ := t.Humanize(c)            // "shorty"
//
// Canonicalize lowercases wrapped input, so "FOO" and "foo" share one
// canonical form. Humanize of bytes that are neither a public address nor an
// internal wrap (a hash digest, say) encodes them under the public prefix.
package bechflip
