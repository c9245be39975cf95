package config

import "soilsensor-go/types"

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device name selected at build time (-ldflags "-X main.Device=...").
// Val: raw YAML for that device. Keys left out take Defaults().
// -----------------------------------------------------------------------------

// knownDevices pairs device ids with the names gateways know them by.
// Checked in with dummy ids.
var knownDevices = []types.DeviceIdentity{
	{ID: "xxxxxxxxxxxxxxxxx", Name: "BLE-Xen1"},
	{ID: "yyyyyyyyyyyyyyyyy", Name: "BLE-Xen6"},
}

// Stock bench build: broadcast mode with the serial log on.
const cfgDev = `
dispatch:
  broadcast: true
  serial: true
  calibrate: false
`

// Field build: wide-area publish, serial off for battery.
const cfgField = `
dispatch:
  broadcast: false
  serial: false
mqtt:
  broker: tcp://localhost:1883
  qos: 1
`

// Pico build: uplink modem on uart1, diagnostics on uart0.
const cfgPico = `
dispatch:
  broadcast: false
  serial: true
serial:
  baud: 115200
  tx_pin: 0
  rx_pin: 1
uplink:
  baud: 9600
  tx_pin: 4
  rx_pin: 5
`

var embeddedConfigs = map[string][]byte{
	"dev":   []byte(cfgDev),
	"field": []byte(cfgField),
	"pico":  []byte(cfgPico),
}
