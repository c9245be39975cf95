package ble

import (
	"bytes"

	"soilsensor-go/errcode"
	"soilsensor-go/types"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// frameVersion leads every frame so gateways can reject layouts they do
// not know.
const frameVersion = 2

// TagLen is the size of the identity tag carried in each frame.
const TagLen = 4

// frame is the manufacturer-data payload. The sender is named by a short
// tag; gateways match it against tags computed from the same identity
// table.
type frame struct {
	_    struct{} `cbor:",toarray"`
	V    uint8
	Tag  []byte
	Type string
	Body string
}

// Frame is a decoded manufacturer-data payload.
type Frame struct {
	Tag     []byte
	Message types.Message
}

// From reports whether the frame was sent by id.
func (f Frame) From(id types.DeviceIdentity) bool {
	return bytes.Equal(f.Tag, Tag(id))
}

// Tag is the leading bytes of a name-based UUID of the device id.
func Tag(id types.DeviceIdentity) []byte {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(id.ID))
	return u[:TagLen]
}

var encMode, _ = cbor.CoreDetEncOptions().EncMode()

// EncodeFrame encodes m from id, failing when it would exceed max bytes.
func EncodeFrame(m types.Message, id types.DeviceIdentity, max int) ([]byte, error) {
	b, err := encMode.Marshal(frame{V: frameVersion, Tag: Tag(id), Type: m.Type, Body: m.Body})
	if err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "ble.EncodeFrame", Err: err}
	}
	if max > 0 && len(b) > max {
		return nil, &errcode.E{C: errcode.PayloadTooLarge, Op: "ble.EncodeFrame", Msg: m.Type}
	}
	return b, nil
}

// DecodeFrame is the gateway-side inverse of EncodeFrame.
func DecodeFrame(b []byte) (Frame, error) {
	var f frame
	if err := cbor.Unmarshal(b, &f); err != nil {
		return Frame{}, &errcode.E{C: errcode.Error, Op: "ble.DecodeFrame", Err: err}
	}
	if f.V != frameVersion {
		return Frame{}, &errcode.E{C: errcode.Unsupported, Op: "ble.DecodeFrame", Msg: "frame version"}
	}
	if len(f.Tag) != TagLen {
		return Frame{}, &errcode.E{C: errcode.Unsupported, Op: "ble.DecodeFrame", Msg: "tag length"}
	}
	return Frame{Tag: f.Tag, Message: types.Message{Type: f.Type, Body: f.Body}}, nil
}
