//go:build rp2040 || rp2350

package main

import (
	"context"
	"strings"
	"time"

	"soilsensor-go/diag"
	"soilsensor-go/services/config"
	"soilsensor-go/services/dispatch"
	"soilsensor-go/services/identity"
	"soilsensor-go/services/sensor"
	"soilsensor-go/transport"
	"soilsensor-go/transport/uplink"
	"soilsensor-go/x/strx"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Set per board: -ldflags "-X main.Device=pico -X main.DeviceID=e00fce68...".
var (
	Device   = "pico"
	DeviceID = ""
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	cfg, err := config.Load(Device)
	if err != nil {
		println("[main] config:", err.Error())
		halt()
	}

	dbg := diag.OpenUART(uartx.UART0, cfg.Serial.Baud, cfg.Serial.TXPin, cfg.Serial.RXPin)
	log := diag.NewLineLog(dbg)
	if !cfg.Dispatch.Serial {
		log = diag.NewLineLog(discard{})
	}

	up := diag.OpenUART(uartx.UART1, cfg.Uplink.Baud, cfg.Uplink.TXPin, cfg.Uplink.RXPin)
	pub := uplink.NewPublisher(up)
	if err := pub.Ping(); err != nil {
		println("[main] uplink ping:", err.Error())
	}

	ids := identity.Fixed(strx.First(cfg.Identity.ID, DeviceID, Device))
	self := identity.Resolve(ids.DeviceID(), identity.NewTable(cfg.Identity.Devices))

	bcast, err := transport.New(cfg.Broadcast)
	if err != nil {
		println("[main] broadcast transport:", err.Error(), "known:", strings.Join(transport.Names(), ","))
		halt()
	}

	d := dispatch.New(cfg.Dispatch, self, pub, bcast, log)
	svc := &sensor.Service{
		Sender:       d,
		Log:          log,
		Link:         dbg,
		Identity:     ids,
		Serial:       cfg.Dispatch.Serial,
		ReadyTimeout: cfg.Timing.ReadyTimeout(),
		Interval:     cfg.Timing.Interval(),
	}
	println("[main] running as", self.Name)
	svc.Run(context.Background())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// halt blocks forever, leaving USB CDC up for reflashing.
func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
