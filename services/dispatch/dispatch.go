// Package dispatch decides where an outgoing status message goes.
//
// Exactly one primary path is used per message: the wide-area publisher,
// or the short-range broadcast transport when broadcast mode is on. The
// diagnostic log is a separate side channel gated by the serial switch.
// Transport failures never reach the caller; they are only counted.
package dispatch

import (
	"sync/atomic"

	"soilsensor-go/types"
)

// -----------------------------------------------------------------------------
// Collaborators
// -----------------------------------------------------------------------------

// WideAreaPublisher forwards a message over the network, addressed by type.
type WideAreaPublisher interface {
	Publish(typ, body string) error
}

// BroadcastTransport sends a message over a short-range link, tagged with
// the sending device's identity.
type BroadcastTransport interface {
	Broadcast(typ, body string, id types.DeviceIdentity) error
}

// DiagnosticLog is the append-only serial diagnostic sink.
type DiagnosticLog interface {
	Info(msg string)
}

// -----------------------------------------------------------------------------
// Dispatcher
// -----------------------------------------------------------------------------

// Stats counts dispatch outcomes. Dropped counts broadcast sends the
// transport accepted without emitting anything (the null transport).
type Stats struct {
	Published       uint64
	PublishFailed   uint64
	Broadcast       uint64
	BroadcastFailed uint64
	Dropped         uint64
	Logged          uint64
}

// Dropper is implemented by broadcast transports that discard messages.
type Dropper interface {
	Drops() bool
}

type Dispatcher struct {
	cfg types.DispatchConfig
	id  types.DeviceIdentity

	pub   WideAreaPublisher
	bcast BroadcastTransport
	log   DiagnosticLog

	published, publishFailed   atomic.Uint64
	broadcast, broadcastFailed atomic.Uint64
	dropped, logged            atomic.Uint64
}

// New builds a dispatcher. cfg is copied and never changes afterwards.
func New(cfg types.DispatchConfig, id types.DeviceIdentity, pub WideAreaPublisher, bcast BroadcastTransport, log DiagnosticLog) *Dispatcher {
	return &Dispatcher{cfg: cfg, id: id, pub: pub, bcast: bcast, log: log}
}

// Config returns the switches the dispatcher was built with.
func (d *Dispatcher) Config() types.DispatchConfig { return d.cfg }

// Identity returns the identity attached to broadcasts.
func (d *Dispatcher) Identity() types.DeviceIdentity { return d.id }

// Send routes one message. It never fails.
func (d *Dispatcher) Send(typ, body string) {
	if d.cfg.Broadcast {
		d.sendBroadcast(typ, body)
	} else {
		d.sendPublish(typ, body)
	}
	if d.cfg.Serial {
		d.log.Info(body)
		d.logged.Add(1)
	}
	// Separate record, gated the same way.
	if d.cfg.Serial {
		d.log.Info(types.LogPathActive)
		d.logged.Add(1)
	}
}

// SendMessage is Send for a types.Message.
func (d *Dispatcher) SendMessage(m types.Message) { d.Send(m.Type, m.Body) }

func (d *Dispatcher) sendPublish(typ, body string) {
	if err := d.pub.Publish(typ, body); err != nil {
		d.publishFailed.Add(1)
		return
	}
	d.published.Add(1)
}

func (d *Dispatcher) sendBroadcast(typ, body string) {
	if err := d.bcast.Broadcast(typ, body, d.id); err != nil {
		d.broadcastFailed.Add(1)
		return
	}
	d.broadcast.Add(1)
	if dr, ok := d.bcast.(Dropper); ok && dr.Drops() {
		d.dropped.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Published:       d.published.Load(),
		PublishFailed:   d.publishFailed.Load(),
		Broadcast:       d.broadcast.Load(),
		BroadcastFailed: d.broadcastFailed.Load(),
		Dropped:         d.dropped.Load(),
		Logged:          d.logged.Load(),
	}
}
