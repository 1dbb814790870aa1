// Package wire encodes simulation frames and control updates in the protobuf
// wire format described by proto/pandemica.proto.
package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"pandemica/internal/sim"
)

// Message field numbers.
const (
	messageFrame   protowire.Number = 1
	messageControl protowire.Number = 2
)

// ErrEmptyMessage is returned when a message carries neither body.
var ErrEmptyMessage = errors.New("wire: message has no body")

// Message is a decoded envelope. Exactly one of Frame and Control is set.
type Message struct {
	Frame   *sim.Frame
	Control *sim.ControlSettings
}

// MarshalFrame wraps f in a Message envelope.
func MarshalFrame(f sim.Frame) []byte {
	b := protowire.AppendTag(nil, messageFrame, protowire.BytesType)
	return protowire.AppendBytes(b, appendFrame(nil, f))
}

// MarshalControl wraps c in a Message envelope. Every field is written.
func MarshalControl(c sim.ControlSettings) []byte {
	b := protowire.AppendTag(nil, messageControl, protowire.BytesType)
	return protowire.AppendBytes(b, appendControl(nil, c))
}

// Unmarshal decodes a Message. Control fields absent from the payload keep
// the values in base.
func Unmarshal(b []byte, base sim.ControlSettings) (Message, error) {
	var msg Message
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType || (num != messageFrame && num != messageControl) {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		body, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		switch num {
		case messageFrame:
			f, err := decodeFrame(body)
			if err != nil {
				return 0, fmt.Errorf("frame: %w", err)
			}
			msg.Frame, msg.Control = &f, nil
		case messageControl:
			c, err := decodeControl(body, base)
			if err != nil {
				return 0, fmt.Errorf("control: %w", err)
			}
			msg.Control, msg.Frame = &c, nil
		}
		return n, nil
	})
	if err != nil {
		return Message{}, err
	}
	if msg.Frame == nil && msg.Control == nil {
		return Message{}, ErrEmptyMessage
	}
	return msg, nil
}

// walk calls fn for every field in b. fn returns how many bytes of the field
// value it consumed, or a negative protowire error code.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func consumeDouble(num protowire.Number, typ protowire.Type, b []byte, dst *float64) int {
	if typ != protowire.Fixed64Type {
		return protowire.ConsumeFieldValue(num, typ, b)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n >= 0 {
		*dst = math.Float64frombits(v)
	}
	return n
}

func consumeVarint(num protowire.Number, typ protowire.Type, b []byte, dst *uint64) int {
	if typ != protowire.VarintType {
		return protowire.ConsumeFieldValue(num, typ, b)
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = v
	}
	return n
}
