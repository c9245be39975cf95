// Package ble broadcasts messages as BLE advertisements. Importing it
// registers the "ble" broadcast transport.
package ble

import (
	"sync"

	"soilsensor-go/errcode"
	"soilsensor-go/services/dispatch"
	"soilsensor-go/transport"
	"soilsensor-go/types"

	"tinygo.org/x/bluetooth"
)

const Name = "ble"

// Legacy advertising payload layout. The flags field is always present;
// each manufacturer-data element costs a length, an AD type and the
// company id ahead of its data.
const (
	MaxAdvertisement = 31
	flagsLen         = 3
	mfrHeaderLen     = 4

	// MaxFrame is the largest frame that fits beside the flags field.
	MaxFrame = MaxAdvertisement - flagsLen - mfrHeaderLen
)

func init() {
	transport.Register(Name, func(cfg types.BroadcastConfig) (dispatch.BroadcastTransport, error) {
		return New(cfg, nil)
	})
}

// Advertiser is the subset of *bluetooth.Advertisement in use.
type Advertiser interface {
	Configure(opts bluetooth.AdvertisementOptions) error
	Start() error
	Stop() error
}

type Transport struct {
	cfg types.BroadcastConfig

	mu      sync.Mutex
	adv     Advertiser
	enabled bool
	running bool
}

// New builds a transport over adv. A nil adv selects the default adapter,
// which is enabled on first use.
func New(cfg types.BroadcastConfig, adv Advertiser) (*Transport, error) {
	t := &Transport{cfg: cfg, adv: adv, enabled: adv != nil}
	return t, nil
}

func (t *Transport) ensureAdvertiser() error {
	if t.enabled {
		return nil
	}
	if err := bluetooth.DefaultAdapter.Enable(); err != nil {
		return &errcode.E{C: errcode.NotConnected, Op: "ble.Enable", Err: err}
	}
	t.adv = bluetooth.DefaultAdapter.DefaultAdvertisement()
	t.enabled = true
	return nil
}

// AdvertisementSize is the legacy payload size of opts: flags, local name
// and manufacturer data.
func AdvertisementSize(opts bluetooth.AdvertisementOptions) int {
	n := flagsLen
	if opts.LocalName != "" {
		n += 2 + len(opts.LocalName)
	}
	for _, md := range opts.ManufacturerData {
		n += mfrHeaderLen + len(md.Data)
	}
	return n
}

func (t *Transport) frameLimit() int {
	if t.cfg.MaxFrame > 0 && t.cfg.MaxFrame < MaxFrame {
		return t.cfg.MaxFrame
	}
	return MaxFrame
}

// Broadcast replaces the current advertisement with one carrying the
// message and the sender's tag.
func (t *Transport) Broadcast(typ, body string, id types.DeviceIdentity) error {
	data, err := EncodeFrame(types.Message{Type: typ, Body: body}, id, t.frameLimit())
	if err != nil {
		return err
	}
	opts := bluetooth.AdvertisementOptions{
		ManufacturerData: []bluetooth.ManufacturerDataElement{
			{CompanyID: t.cfg.CompanyID, Data: data},
		},
	}
	if AdvertisementSize(opts) > MaxAdvertisement {
		return &errcode.E{C: errcode.PayloadTooLarge, Op: "ble.Broadcast", Msg: typ}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureAdvertiser(); err != nil {
		return err
	}
	if t.running {
		_ = t.adv.Stop()
		t.running = false
	}
	if err := t.adv.Configure(opts); err != nil {
		return errcode.Wrap(errcode.Error, "ble.Configure", err)
	}
	if err := t.adv.Start(); err != nil {
		return errcode.Wrap(errcode.Error, "ble.Start", err)
	}
	t.running = true
	return nil
}

// Close stops advertising.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	t.running = false
	return t.adv.Stop()
}
