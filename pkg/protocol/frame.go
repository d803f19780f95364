package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// MaxFrameSize is the maximum allowed frame size (1 MB)
	MaxFrameSize = 1024 * 1024
)

var (
	ErrFrameTooLarge  = errors.New("frame exceeds maximum size (1 MB)")
	ErrMissingType    = errors.New("frame has no type discriminator")
	ErrEmptyFrame     = errors.New("empty frame")
	ErrInvalidPayload = errors.New("invalid frame payload")
)

// Frame is one discrete JSON message on the gateway connection. Every frame
// carries a "type" discriminator at the top level; the payload fields live
// alongside it, so the raw bytes are kept for a second, type-specific decode.
type Frame struct {
	Type string
	raw  json.RawMessage
}

// DecodeFrame parses the envelope of a single websocket text message.
// Only the type tag is examined here; payload decoding happens per-type
// via Decode once the frame has been routed.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &Frame{Type: env.Type, raw: raw}, nil
}

// Decode unmarshals the frame's payload fields into v.
func (f *Frame) Decode(v interface{}) error {
	if err := json.Unmarshal(f.raw, v); err != nil {
		return fmt.Errorf("decode %s frame: %w", f.Type, err)
	}
	return nil
}

// Raw returns the original frame bytes.
func (f *Frame) Raw() []byte {
	return f.raw
}

// NewFrame builds a frame from a type tag and payload fields. Used by tests
// and the mock connection; real inbound frames come from DecodeFrame.
func NewFrame(frameType string, payload interface{}) (*Frame, error) {
	raw, err := encodeTagged(frameType, payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Type: frameType, raw: raw}, nil
}

// Command is an outbound client-to-gateway message.
type Command interface {
	// CommandType returns the wire type tag.
	CommandType() string
}

// EncodeCommand serializes a command to a single JSON frame, splicing the
// type tag into the top-level object next to the command's own fields.
func EncodeCommand(cmd Command) ([]byte, error) {
	return encodeTagged(cmd.CommandType(), cmd)
}

func encodeTagged(frameType string, payload interface{}) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s frame: %w", frameType, err)
		}
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("encode %s frame: payload is not an object: %w", frameType, err)
		}
	}

	typeTag, err := json.Marshal(frameType)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeTag

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(out) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	return out, nil
}
