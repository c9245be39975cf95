// Package uplink publishes messages as frames over a serial link to a
// gateway modem, for builds without a network stack.
package uplink

import (
	"io"
	"sync"

	"soilsensor-go/errcode"
	"soilsensor-go/types"

	"github.com/fxamacker/cbor/v2"
)

// -----------------------------------------------------------------------------
// Framing: [type][len hi][len lo][payload]
// -----------------------------------------------------------------------------

const (
	FramePing byte = 0x01
	FramePub  byte = 0x10

	maxPayload = 0xFFFF
)

// Frame is a length-prefixed frame.
type Frame struct {
	Type    byte
	Payload []byte
}

type Reader struct{ r io.Reader }
type Writer struct{ w io.Writer }

func NewReader(r io.Reader) *Reader { return &Reader{r: r} }
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (fr *Reader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	n := int(hdr[1])<<8 | int(hdr[2])
	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: hdr[0], Payload: buf}, nil
}

// WriteFrame writes header and payload in one call so a frame is never
// split by a concurrent writer on the same port.
func (fw *Writer) WriteFrame(f Frame) error {
	if len(f.Payload) > maxPayload {
		return &errcode.E{C: errcode.PayloadTooLarge, Op: "uplink.WriteFrame"}
	}
	b := make([]byte, 0, 3+len(f.Payload))
	b = append(b, f.Type, byte(len(f.Payload)>>8), byte(len(f.Payload)))
	b = append(b, f.Payload...)
	_, err := fw.w.Write(b)
	return err
}

// -----------------------------------------------------------------------------
// Publisher
// -----------------------------------------------------------------------------

type Publisher struct {
	mu sync.Mutex
	w  *Writer
}

func NewPublisher(w io.Writer) *Publisher {
	return &Publisher{w: NewWriter(w)}
}

// Publish writes one FramePub carrying the CBOR-encoded message.
func (p *Publisher) Publish(typ, body string) error {
	payload, err := cbor.Marshal(types.Message{Type: typ, Body: body})
	if err != nil {
		return &errcode.E{C: errcode.Error, Op: "uplink.Publish", Err: err}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.WriteFrame(Frame{Type: FramePub, Payload: payload})
}

// Ping announces the device to the modem.
func (p *Publisher) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.WriteFrame(Frame{Type: FramePing})
}

// DecodePub returns the message in a FramePub payload.
func DecodePub(f Frame) (types.Message, error) {
	if f.Type != FramePub {
		return types.Message{}, &errcode.E{C: errcode.Unsupported, Op: "uplink.DecodePub"}
	}
	var m types.Message
	if err := cbor.Unmarshal(f.Payload, &m); err != nil {
		return types.Message{}, &errcode.E{C: errcode.Error, Op: "uplink.DecodePub", Err: err}
	}
	return m, nil
}
