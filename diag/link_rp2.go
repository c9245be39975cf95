//go:build rp2040 || rp2350

package diag

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// UARTLink is a hardware UART used as the diagnostic link or the uplink.
type UARTLink struct {
	u     *uartx.UART
	ready bool
}

// OpenUART configures hw. Defaults inside uartx apply for zero values.
func OpenUART(hw *uartx.UART, baud uint32, tx, rx int) *UARTLink {
	err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	})
	return &UARTLink{u: hw, ready: err == nil}
}

func (l *UARTLink) Ready() bool { return l.ready }

func (l *UARTLink) WaitReady(ctx context.Context, timeout time.Duration) bool {
	return WaitFor(ctx, l.Ready, timeout, 10*time.Millisecond)
}

func (l *UARTLink) Write(p []byte) (int, error) { return l.u.Write(p) }
