package bechflip

import (
	"errors"
	"fmt"
)

// Kind classifies transcoder failures.
type Kind uint8

const (
	KindInvalidInput Kind = iota + 1
	KindInvalidCanonicalAddress
	KindNotNormalized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidCanonicalAddress:
		return "invalid canonical address"
	case KindNotNormalized:
		return "address not normalized"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrInvalidInput            = errors.New("bechflip: invalid input")
	ErrInvalidCanonicalAddress = errors.New("bechflip: invalid canonical address")
	ErrNotNormalized           = errors.New("bechflip: address not normalized")
)

var (
	errBadPrefix   = errors.New("prefix must be 1..83 printable ASCII characters")
	errUpperPrefix = errors.New("prefix must be lowercase")
	errSamePrefix  = errors.New("internal prefix equals public prefix")
)

// Error is returned by every Transcoder operation.
type Error struct {
	Op    string // "new", "canonicalize", "humanize", "validate", "make"
	Kind  Kind
	Input string
	Err   error // underlying cause, may be nil
}

func newError(op string, kind Kind, input string, err error) *Error {
	return &Error{Op: op, Kind: kind, Input: input, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bechflip: %s %q: %s", e.Op, clip(e.Input), e.Kind)
	}
	return fmt.Sprintf("bechflip: %s %q: %s: %v", e.Op, clip(e.Input), e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrInvalidCanonicalAddress:
		return e.Kind == KindInvalidCanonicalAddress
	case ErrNotNormalized:
		return e.Kind == KindNotNormalized
	}
	return false
}

func clip(s string) string {
	const limit = 48
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
