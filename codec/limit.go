package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: payload too large")

// Limit wraps another codec and refuses to Decode payloads longer than
// MaxDecode bytes. Encode is forwarded unchanged. MaxDecode <= 0 disables
// the check.
//
// Memo entries come from a shared byte store; Limit keeps a corrupt or
// foreign entry from making the decoder allocate without bound.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

func (l Limit[V]) Encode(v V) ([]byte, error) { return l.Inner.Encode(v) }

func (l Limit[V]) Decode(b []byte) (V, error) {
	if l.MaxDecode > 0 && len(b) > l.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), l.MaxDecode)
	}
	return l.Inner.Decode(b)
}
