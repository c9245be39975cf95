// Package identity resolves this device's identifier and maps identifiers
// to the names gateways address them by.
package identity

import (
	"os"

	"soilsensor-go/types"

	"github.com/google/uuid"
)

// Lookup maps a device id to its table name.
type Lookup interface {
	Name(id string) (string, bool)
}

// Table is a read-only id -> name lookup built once at startup.
type Table struct {
	byID map[string]string
}

func NewTable(devices []types.DeviceIdentity) *Table {
	t := &Table{byID: make(map[string]string, len(devices))}
	for _, d := range devices {
		t.byID[d.ID] = d.Name
	}
	return t
}

// Name returns the display name for id.
func (t *Table) Name(id string) (string, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Len reports the number of known devices.
func (t *Table) Len() int { return len(t.byID) }

// Fixed is a resolver with a preset identifier.
type Fixed string

func (f Fixed) DeviceID() string { return string(f) }

// hostnameFn is swapped in tests.
var hostnameFn = os.Hostname

// HostID derives a stable identifier from the host name (UUID v5), so a
// host build keeps the same id across restarts without persisted state.
func HostID() Fixed {
	h, err := hostnameFn()
	if err != nil || h == "" {
		h = "localhost"
	}
	return Fixed(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(h)).String())
}

// Resolve pairs the device id with its table name. Unknown ids are named
// after themselves.
func Resolve(id string, names Lookup) types.DeviceIdentity {
	if n, ok := names.Name(id); ok {
		return types.DeviceIdentity{ID: id, Name: n}
	}
	return types.DeviceIdentity{ID: id, Name: id}
}
