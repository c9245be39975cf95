package types

import "time"

// Agent configuration, decoded from the embedded per-device document.

type Config struct {
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Timing    TimingConfig    `yaml:"timing"`
	Identity  IdentityConfig  `yaml:"identity"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Serial    SerialConfig    `yaml:"serial"`
	Uplink    UplinkConfig    `yaml:"uplink"`
}

// DispatchConfig holds the three switches fixed for the process lifetime.
type DispatchConfig struct {
	Broadcast bool `yaml:"broadcast"` // short-range broadcast instead of wide-area publish
	Serial    bool `yaml:"serial"`    // diagnostic serial log; off saves battery
	Calibrate bool `yaml:"calibrate"` // soil calibration over serial (not implemented)
}

type TimingConfig struct {
	ReadyTimeoutMS int `yaml:"ready_timeout_ms"`
	IntervalMS     int `yaml:"interval_ms"`
}

func (t TimingConfig) ReadyTimeout() time.Duration {
	return time.Duration(t.ReadyTimeoutMS) * time.Millisecond
}

func (t TimingConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMS) * time.Millisecond
}

type IdentityConfig struct {
	// ID overrides the resolved device identifier when non-empty.
	ID      string           `yaml:"id"`
	Devices []DeviceIdentity `yaml:"devices"`
}

type MQTTConfig struct {
	Broker           string `yaml:"broker"` // tcp://host:1883, ssl://host:8883
	ClientID         string `yaml:"client_id"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	TopicPrefix      string `yaml:"topic_prefix"`
	QoS              byte   `yaml:"qos"`
	Retained         bool   `yaml:"retained"`
	ConnectTimeoutMS int    `yaml:"connect_timeout_ms"`
}

func (m MQTTConfig) ConnectTimeout() time.Duration {
	return time.Duration(m.ConnectTimeoutMS) * time.Millisecond
}

type BroadcastConfig struct {
	// Transport is a registered broadcast transport name ("null", "ble", ...).
	Transport string `yaml:"transport"`
	CompanyID uint16 `yaml:"company_id"`
	MaxFrame  int    `yaml:"max_frame"`
}

type SerialConfig struct {
	Device    string `yaml:"device"` // tty path; empty means stderr
	File      string `yaml:"file"`   // optional rotating copy
	Format    string `yaml:"format"` // "text" or "json"
	MaxSizeMB int    `yaml:"max_size_mb"`
	Baud      uint32 `yaml:"baud"`
	TXPin     int    `yaml:"tx_pin"`
	RXPin     int    `yaml:"rx_pin"`
}

// UplinkConfig selects the UART wired to a gateway modem on MCU builds.
type UplinkConfig struct {
	Baud  uint32 `yaml:"baud"`
	TXPin int    `yaml:"tx_pin"`
	RXPin int    `yaml:"rx_pin"`
}
