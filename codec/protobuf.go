package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Protobuf serializes any proto.Message. newMsg allocates the message Decode
// fills, e.g. func() *wrapperspb.BytesValue { return &wrapperspb.BytesValue{} }.
type Protobuf[T proto.Message] struct {
	newMsg func() T
}

func NewProtobuf[T proto.Message](newMsg func() T) Protobuf[T] {
	return Protobuf[T]{newMsg: newMsg}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.newMsg()
	err := proto.Unmarshal(b, m)
	return m, err
}

// BytesValue and StringValue carry canonical and human addresses as
// google.protobuf well-known wrapper messages.
func BytesValue() Protobuf[*wrapperspb.BytesValue] {
	return NewProtobuf(func() *wrapperspb.BytesValue { return &wrapperspb.BytesValue{} })
}

func StringValue() Protobuf[*wrapperspb.StringValue] {
	return NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
}
