package sensor

import (
	"context"
	"strings"
	"testing"
	"time"

	"soilsensor-go/services/dispatch"
	"soilsensor-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type call struct{ typ, body string }

type fakePublisher struct{ calls []call }

func (f *fakePublisher) Publish(typ, body string) error {
	f.calls = append(f.calls, call{typ, body})
	return nil
}

type nopBroadcast struct{}

func (nopBroadcast) Broadcast(string, string, types.DeviceIdentity) error { return nil }

type fakeLog struct{ lines []string }

func (f *fakeLog) Info(msg string) { f.lines = append(f.lines, msg) }

type fakeLink struct {
	calls   int
	timeout time.Duration
	ready   bool
}

func (f *fakeLink) WaitReady(_ context.Context, timeout time.Duration) bool {
	f.calls++
	f.timeout = timeout
	return f.ready
}

type fixedID string

func (f fixedID) DeviceID() string { return string(f) }

func newService(serial bool, sender Sender, log *fakeLog, link *fakeLink) *Service {
	return &Service{
		Sender:       sender,
		Log:          log,
		Link:         link,
		Identity:     fixedID("e00fce68"),
		Serial:       serial,
		ReadyTimeout: 3000 * time.Millisecond,
		Interval:     5000 * time.Millisecond,
	}
}

// -----------------------------------------------------------------------------
// Initialize
// -----------------------------------------------------------------------------

func TestInitialize_GreetingNotGatedBySerial(t *testing.T) {
	for _, serial := range []bool{false, true} {
		log := &fakeLog{}
		link := &fakeLink{}
		s := newService(serial, nil, log, link)

		s.Initialize(context.Background())

		require.Len(t, log.lines, 1, "serial=%v", serial)
		assert.True(t, strings.Contains(log.lines[0], "e00fce68"))
		assert.Equal(t, "Starting BLE Solar Soil Sensor with device ID e00fce68....", log.lines[0])
	}
}

func TestInitialize_WaitsForLinkOnlyWhenSerial(t *testing.T) {
	link := &fakeLink{}
	newService(false, nil, &fakeLog{}, link).Initialize(context.Background())
	assert.Zero(t, link.calls)

	// A link that never comes up must not block startup or raise anything.
	log := &fakeLog{}
	newService(true, nil, log, link).Initialize(context.Background())
	assert.Equal(t, 1, link.calls)
	assert.Equal(t, 3*time.Second, link.timeout)
	assert.Len(t, log.lines, 1)
}

// -----------------------------------------------------------------------------
// Run / Tick
// -----------------------------------------------------------------------------

func TestRun_ThreeTicksPublishWithFixedInterval(t *testing.T) {
	pub := &fakePublisher{}
	log := &fakeLog{}
	d := dispatch.New(types.DispatchConfig{Broadcast: false}, types.DeviceIdentity{}, pub, nopBroadcast{}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	s := newService(false, d, log, &fakeLink{})
	s.Sleep = func(ctx context.Context, dur time.Duration) bool {
		sleeps = append(sleeps, dur)
		if len(sleeps) == 3 {
			cancel()
			return false
		}
		return true
	}

	assert.Equal(t, StateInit, s.State())
	s.Run(ctx)

	want := call{"Test", "In a loop"}
	assert.Equal(t, []call{want, want, want}, pub.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, sleeps)
	assert.Len(t, log.lines, 1, "only the greeting; serial is off")
	assert.Equal(t, StateStopped, s.State())
}

func TestRun_CancelledBeforeFirstTick(t *testing.T) {
	pub := &fakePublisher{}
	log := &fakeLog{}
	d := dispatch.New(types.DispatchConfig{}, types.DeviceIdentity{}, pub, nopBroadcast{}, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newService(false, d, log, &fakeLink{})
	s.Run(ctx)

	assert.Empty(t, pub.calls)
	assert.Len(t, log.lines, 1)
	assert.Equal(t, "stopped", s.State().String())
}

func TestRun_StateReadableWhileRunning(t *testing.T) {
	d := dispatch.New(types.DispatchConfig{}, types.DeviceIdentity{}, &fakePublisher{}, nopBroadcast{}, &fakeLog{})
	s := newService(false, d, &fakeLog{}, &fakeLink{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	require.Eventually(t, func() bool { return s.State() == StateRunning }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, StateStopped, s.State())
}

func TestSleep(t *testing.T) {
	assert.True(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.False(t, Sleep(ctx, time.Hour))
	assert.Less(t, time.Since(start), time.Second)
}
