package types

// ------------------------
// Messages
// ------------------------

// Message is a (type, body) pair created at each send site.
type Message struct {
	Type string `json:"type" cbor:"1,keyasint"`
	Body string `json:"body" cbor:"2,keyasint"`
}

// DeviceIdentity tags broadcast messages so a gateway can resolve the sender.
type DeviceIdentity struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Fixed texts emitted by the agent.
const (
	LogPathActive  = "logging path active"
	TickType       = "Test"
	TickBody       = "In a loop"
	GreetingPrefix = "Starting BLE Solar Soil Sensor with device ID "
	GreetingSuffix = "...."
)

// Greeting renders the startup record for a device id.
func Greeting(id string) string { return GreetingPrefix + id + GreetingSuffix }
