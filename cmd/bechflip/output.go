package main

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/unkn0wn-root/bechflip/codec"
)

// record is one result line. For canon the output is Canonical, for every
// other op it is Human.
type record struct {
	Op        string `json:"op" msgpack:"op" cbor:"1,keyasint"`
	Input     string `json:"input" msgpack:"input" cbor:"2,keyasint"`
	Human     string `json:"human,omitempty" msgpack:"human,omitempty" cbor:"3,keyasint,omitempty"`
	Canonical []byte `json:"canonical,omitempty" msgpack:"canonical,omitempty" cbor:"4,keyasint,omitempty"`
	Error     string `json:"error,omitempty" msgpack:"error,omitempty" cbor:"5,keyasint,omitempty"`
}

func (r record) output() []byte {
	if r.Op == "canon" {
		return r.Canonical
	}
	return []byte(r.Human)
}

var (
	jsonRecord    = codec.JSON[record]{}
	cborRecord    = codec.MustCBOR[record](true)
	msgpackRecord = codec.Msgpack[record]{}
	protoBytes    = codec.BytesValue()
	protoString   = codec.StringValue()
	rawBytes      = codec.Bytes{}
	rawString     = codec.String{}
)

// emit writes r in rt.format. json is one object per line; cbor and msgpack
// are self-delimiting streams; proto writes varint length-prefixed
// google.protobuf.BytesValue (canon) or StringValue messages; raw writes the
// bare output bytes with no separator, so it only suits single results.
func (rt *runtime) emit(r record) error {
	var (
		b   []byte
		err error
	)
	switch rt.format {
	case "json":
		if b, err = jsonRecord.Encode(r); err == nil {
			b = append(b, '\n')
		}
	case "cbor":
		b, err = cborRecord.Encode(r)
	case "msgpack":
		b, err = msgpackRecord.Encode(r)
	default:
		if r.Error != "" {
			fmt.Fprintf(rt.errOut, "%q: %s\n", r.Input, r.Error)
			if rt.format == "proto" || rt.format == "raw" {
				return nil
			}
			_, err = fmt.Fprintln(rt.out)
			return err
		}
		switch rt.format {
		case "hex":
			b = []byte(hex.EncodeToString(r.output()) + "\n")
		case "proto":
			b, err = rt.protoFrame(r)
		case "raw":
			if r.Op == "canon" {
				b, err = rawBytes.Encode(r.Canonical)
			} else {
				b, err = rawString.Encode(r.Human)
			}
		default:
			b = append(r.output(), '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("encode %s output: %w", rt.format, err)
	}
	_, err = rt.out.Write(b)
	return err
}

func (rt *runtime) protoFrame(r record) ([]byte, error) {
	var (
		msg []byte
		err error
	)
	if r.Op == "canon" {
		msg, err = protoBytes.Encode(wrapperspb.Bytes(r.Canonical))
	} else {
		msg, err = protoString.Encode(wrapperspb.String(r.Human))
	}
	if err != nil {
		return nil, err
	}
	out := binary.AppendUvarint(make([]byte, 0, len(msg)+binary.MaxVarintLen64), uint64(len(msg)))
	return append(out, msg...), nil
}
