package bechflip

import "github.com/unkn0wn-root/bechflip/checksum"

// Options configure a Transcoder. Only Prefix is required.
type Options struct {
	// Prefix is the public prefix, e.g. "juno". Lowercase, 1..83 printable
	// ASCII characters.
	Prefix string

	Variant  checksum.Variant    // 0 => checksum.Bech32
	Codec    checksum.Codec      // nil => checksum.Bech32Codec{}
	Internal func(string) string // derives the internal prefix; nil => Reverse
}
