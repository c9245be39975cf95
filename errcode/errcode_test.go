package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, Unsupported, Of(Unsupported))
	assert.Equal(t, InvalidConfig, Of(&E{C: InvalidConfig, Op: "config.Load"}))
	assert.Equal(t, Error, Of(errors.New("boom")))
}

func TestE_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &E{C: NotConnected, Op: "mqtt.Start", Msg: "broker tcp://x:1883", Err: cause}

	assert.Equal(t, "mqtt.Start: not_connected: broker tcp://x:1883: dial tcp: refused", err.Error())
	require.ErrorIs(t, err, cause)

	// Still classifiable through fmt.Errorf wrapping by callers that keep the *E.
	var e *E
	require.ErrorAs(t, fmt.Errorf("startup: %w", err), &e)
	assert.Equal(t, NotConnected, e.Code())
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(OK, "noop", nil))

	err := Wrap(UnknownTransport, "transport.New", nil)
	require.Error(t, err)
	assert.Equal(t, UnknownTransport, Of(err))
	assert.Equal(t, "transport.New: unknown_transport", err.Error())
}
