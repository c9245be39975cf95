// Package mqtt is the wide-area publisher: each message goes to
// <prefix>/<device id>/<type> with the body as payload.
package mqtt

import (
	"strings"
	"sync/atomic"
	"time"

	"soilsensor-go/errcode"
	"soilsensor-go/types"
	"soilsensor-go/x/strx"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Client is the subset of paho.Client the publisher uses.
type Client interface {
	Connect() paho.Token
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// newClient is swapped in tests.
var newClient = func(o *paho.ClientOptions) Client { return paho.NewClient(o) }

type Publisher struct {
	cfg      types.MQTTConfig
	deviceID string
	client   Client

	published atomic.Uint64
	skipped   atomic.Uint64
}

// StatusTopic carries "online"/"offline" (last will) for the device.
func StatusTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/status"
}

// Topic returns the publish topic for a message type.
func Topic(prefix, deviceID, typ string) string {
	return prefix + "/" + deviceID + "/" + sanitize(typ)
}

// sanitize keeps a type from adding levels or wildcards to the topic.
func sanitize(typ string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(typ)
}

// New configures a client for deviceID. Nothing is dialled until Start.
func New(cfg types.MQTTConfig, deviceID string) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "mqtt.New", Msg: "missing broker"}
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(strx.Coalesce(cfg.ClientID, deviceID))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout())
	opts.SetWill(StatusTopic(cfg.TopicPrefix, deviceID), "offline", cfg.QoS, true)

	p := &Publisher{cfg: cfg, deviceID: deviceID}
	opts.SetOnConnectHandler(func(c paho.Client) {
		c.Publish(StatusTopic(cfg.TopicPrefix, deviceID), cfg.QoS, true, "online")
	})
	p.client = newClient(opts)
	return p, nil
}

// Start dials the broker and returns at once; the client keeps retrying
// in the background and publishes are skipped until it connects. The
// channel yields the first connection error, if any, and is closed once
// that attempt settles.
func (p *Publisher) Start() <-chan error {
	tok := p.client.Connect()
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		<-tok.Done()
		if err := tok.Error(); err != nil {
			errs <- &errcode.E{C: errcode.NotConnected, Op: "mqtt.Start", Msg: p.cfg.Broker, Err: err}
		}
	}()
	return errs
}

// Publish hands the message to the client without waiting for delivery.
func (p *Publisher) Publish(typ, body string) error {
	if !p.client.IsConnectionOpen() {
		p.skipped.Add(1)
		return errcode.NotConnected
	}
	p.client.Publish(Topic(p.cfg.TopicPrefix, p.deviceID, typ), p.cfg.QoS, p.cfg.Retained, body)
	p.published.Add(1)
	return nil
}

// Close disconnects, allowing in-flight work the given grace.
func (p *Publisher) Close(grace time.Duration) {
	p.client.Disconnect(uint(grace / time.Millisecond))
}

// Counts returns messages handed to the client and messages skipped while
// disconnected.
func (p *Publisher) Counts() (published, skipped uint64) {
	return p.published.Load(), p.skipped.Load()
}
