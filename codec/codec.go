// Package codec serializes values to bytes. bechflip uses it for memo
// entries and for the machine-readable output formats of the CLI.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
