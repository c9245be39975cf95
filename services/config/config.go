package config

import (
	"bytes"
	"errors"
	"io"

	"soilsensor-go/errcode"
	"soilsensor-go/types"
	"soilsensor-go/x/strx"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Defaults (match the stock firmware build)
// -----------------------------------------------------------------------------

const (
	DefaultReadyTimeoutMS   = 3000
	DefaultIntervalMS       = 5000
	DefaultTopicPrefix      = "soil"
	DefaultConnectTimeoutMS = 10000
	DefaultTransport        = "null"
	DefaultMaxFrame         = 24 // 31-byte advertisement less flags and manufacturer header
	DefaultLogFormat        = "text"
	DefaultMaxSizeMB        = 5
	DefaultBaud             = 115200
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Defaults returns the configuration used for keys a document leaves out.
func Defaults() types.Config {
	return types.Config{
		Dispatch: types.DispatchConfig{
			Broadcast: true,
			Serial:    true,
			Calibrate: false,
		},
		Timing: types.TimingConfig{
			ReadyTimeoutMS: DefaultReadyTimeoutMS,
			IntervalMS:     DefaultIntervalMS,
		},
		Identity: types.IdentityConfig{
			Devices: append([]types.DeviceIdentity(nil), knownDevices...),
		},
		MQTT: types.MQTTConfig{
			TopicPrefix:      DefaultTopicPrefix,
			ConnectTimeoutMS: DefaultConnectTimeoutMS,
		},
		Broadcast: types.BroadcastConfig{
			Transport: DefaultTransport,
			CompanyID: 0xFFFF,
			MaxFrame:  DefaultMaxFrame,
		},
		Serial: types.SerialConfig{
			Format:    DefaultLogFormat,
			MaxSizeMB: DefaultMaxSizeMB,
			Baud:      DefaultBaud,
		},
		Uplink: types.UplinkConfig{
			Baud: DefaultBaud,
		},
	}
}

// Load resolves the embedded document for device and decodes it.
func Load(device string) (types.Config, error) {
	if device == "" {
		return types.Config{}, &errcode.E{C: errcode.UnknownDevice, Op: "config.Load", Msg: "empty device name"}
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return types.Config{}, &errcode.E{C: errcode.UnknownDevice, Op: "config.Load", Msg: "no embedded config for device: " + device}
	}
	return Decode(raw)
}

// Decode parses a YAML document over Defaults and validates the result.
// Unknown keys are rejected.
func Decode(raw []byte) (types.Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return types.Config{}, &errcode.E{C: errcode.InvalidConfig, Op: "config.Decode", Err: err}
	}
	normalise(&cfg)
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// normalise restores defaults for values a document explicitly blanked.
func normalise(cfg *types.Config) {
	cfg.MQTT.TopicPrefix = strx.Coalesce(cfg.MQTT.TopicPrefix, DefaultTopicPrefix)
	cfg.Broadcast.Transport = strx.Coalesce(cfg.Broadcast.Transport, DefaultTransport)
	cfg.Serial.Format = strx.Coalesce(cfg.Serial.Format, DefaultLogFormat)
	if cfg.Broadcast.MaxFrame <= 0 {
		cfg.Broadcast.MaxFrame = DefaultMaxFrame
	}
	if cfg.MQTT.ConnectTimeoutMS <= 0 {
		cfg.MQTT.ConnectTimeoutMS = DefaultConnectTimeoutMS
	}
}

// Validate checks cross-field constraints.
func Validate(cfg types.Config) error {
	invalid := func(msg string) error {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config.Validate", Msg: msg}
	}
	if cfg.Dispatch.Calibrate && !cfg.Dispatch.Serial {
		return invalid("calibrate requires the serial link")
	}
	if cfg.Timing.IntervalMS <= 0 {
		return invalid("interval_ms must be positive")
	}
	if cfg.Timing.ReadyTimeoutMS < 0 {
		return invalid("ready_timeout_ms must not be negative")
	}
	if cfg.Broadcast.MaxFrame > DefaultMaxFrame {
		return invalid("broadcast max_frame exceeds the advertisement budget")
	}
	if cfg.MQTT.QoS > 2 {
		return invalid("mqtt qos must be 0, 1 or 2")
	}
	switch cfg.Serial.Format {
	case "text", "json":
	default:
		return invalid("serial format must be text or json")
	}
	seen := make(map[string]bool, len(cfg.Identity.Devices))
	for _, d := range cfg.Identity.Devices {
		if d.ID == "" || d.Name == "" {
			return invalid("identity entries need both id and name")
		}
		if seen[d.ID] {
			return invalid("duplicate identity id: " + d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}
