//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"soilsensor-go/diag"
	"soilsensor-go/services/config"
	"soilsensor-go/services/dispatch"
	"soilsensor-go/services/identity"
	"soilsensor-go/services/sensor"
	"soilsensor-go/transport"
	"soilsensor-go/transport/mqtt"

	_ "soilsensor-go/transport/ble"
)

// Device selects the embedded config: -ldflags "-X main.Device=field".
var Device = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(Device)
	if err != nil {
		println("[main] config:", err.Error())
		os.Exit(1)
	}

	// Serial off means no diagnostic sink at all.
	link := diag.NewTTYLink(cfg.Serial.Device, os.Stderr)
	var w io.Writer = io.Discard
	if cfg.Dispatch.Serial {
		var closer io.Closer
		w, closer = diag.Writer(cfg.Serial, link)
		defer closer.Close()
		defer link.Close()
	}
	log := diag.NewLog(w, cfg.Serial.Format)

	var ids sensor.IdentityResolver = identity.HostID()
	if cfg.Identity.ID != "" {
		ids = identity.Fixed(cfg.Identity.ID)
	}
	table := identity.NewTable(cfg.Identity.Devices)
	self := identity.Resolve(ids.DeviceID(), table)

	bcast, err := transport.New(cfg.Broadcast)
	if err != nil {
		println("[main] broadcast transport:", err.Error(), "known:", strings.Join(transport.Names(), ","))
		os.Exit(1)
	}
	if c, ok := bcast.(io.Closer); ok {
		defer c.Close()
	}

	// The publisher is only consulted outside broadcast mode.
	var pub dispatch.WideAreaPublisher
	var mq *mqtt.Publisher
	if !cfg.Dispatch.Broadcast {
		mq, err = mqtt.New(cfg.MQTT, self.ID)
		if err != nil {
			println("[main] mqtt:", err.Error())
			os.Exit(1)
		}
		// Publishes are skipped until the background connect succeeds.
		go func(errs <-chan error) {
			for err := range errs {
				println("[main] mqtt connect:", err.Error())
			}
		}(mq.Start())
		defer mq.Close(250 * time.Millisecond)
		pub = mq
	}
	if cfg.Dispatch.Broadcast && cfg.Broadcast.Transport == transport.NullName {
		println("[main] warning: broadcast mode with the null transport; messages are dropped")
	}
	if cfg.Dispatch.Calibrate {
		println("[main] warning: calibration mode requested but not available")
	}

	d := dispatch.New(cfg.Dispatch, self, pub, bcast, log)
	svc := &sensor.Service{
		Sender:       d,
		Log:          log,
		Link:         link,
		Identity:     ids,
		Serial:       cfg.Dispatch.Serial,
		ReadyTimeout: cfg.Timing.ReadyTimeout(),
		Interval:     cfg.Timing.Interval(),
	}

	println("[main] device", self.ID, "as", self.Name, "config", Device, "known devices", table.Len())
	svc.Run(ctx)

	st := d.Stats()
	println("[main] stopped: published", st.Published, "publish_failed", st.PublishFailed,
		"broadcast", st.Broadcast, "dropped", st.Dropped, "broadcast_failed", st.BroadcastFailed)
	if mq != nil {
		sent, skipped := mq.Counts()
		println("[main] mqtt: handed", sent, "skipped", skipped)
	}
}
