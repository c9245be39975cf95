// Package transport selects the short-range broadcast transport by name.
package transport

import (
	"sync"

	"soilsensor-go/errcode"
	"soilsensor-go/services/dispatch"
	"soilsensor-go/types"
)

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// Factory builds a broadcast transport from its config section.
type Factory func(cfg types.BroadcastConfig) (dispatch.BroadcastTransport, error)

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{}
)

// Register allows platform packages to add transports (eg. "ble").
func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

// Names lists registered transports, "null" included.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := []string{NullName}
	for n := range registry {
		if n != NullName {
			out = append(out, n)
		}
	}
	return out
}

// New builds the transport named in cfg.
func New(cfg types.BroadcastConfig) (dispatch.BroadcastTransport, error) {
	regMu.RLock()
	f, ok := registry[cfg.Transport]
	regMu.RUnlock()
	if ok {
		return f(cfg)
	}
	switch cfg.Transport {
	case NullName, "":
		return Null{}, nil
	default:
		return nil, &errcode.E{C: errcode.UnknownTransport, Op: "transport.New", Msg: cfg.Transport}
	}
}

// -----------------------------------------------------------------------------
// Null transport
// -----------------------------------------------------------------------------

const NullName = "null"

// Null accepts every message and emits nothing.
type Null struct{}

func (Null) Broadcast(string, string, types.DeviceIdentity) error { return nil }

// Drops reports that messages are discarded.
func (Null) Drops() bool { return true }
