package sensor

import (
	"context"
	"sync/atomic"
	"time"

	"soilsensor-go/types"
)

// Sender is the dispatch operation the loop drives.
type Sender interface {
	Send(typ, body string)
}

// Logger is the diagnostic sink used for the startup greeting.
type Logger interface {
	Info(msg string)
}

// ReadyWaiter is the diagnostic link; WaitReady reports whether the link
// came up before timeout.
type ReadyWaiter interface {
	WaitReady(ctx context.Context, timeout time.Duration) bool
}

// IdentityResolver yields the process-wide device identifier.
type IdentityResolver interface {
	DeviceID() string
}

// State of the service.
type State uint8

const (
	StateInit State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "init"
	}
}

type Service struct {
	Sender   Sender
	Log      Logger
	Link     ReadyWaiter
	Identity IdentityResolver

	Serial       bool
	ReadyTimeout time.Duration
	Interval     time.Duration

	// Sleep blocks for d or until ctx is done; false means cancelled.
	Sleep func(ctx context.Context, d time.Duration) bool

	state atomic.Uint32
}

// State reports where the service is in INIT -> RUNNING -> STOPPED. It is
// safe to call while Run is in progress.
func (s *Service) State() State { return State(s.state.Load()) }

// Initialize waits (best effort) for the serial link, then logs the
// greeting. The greeting is written whether or not serial is enabled.
func (s *Service) Initialize(ctx context.Context) {
	if s.Serial && s.Link != nil {
		_ = s.Link.WaitReady(ctx, s.ReadyTimeout)
	}
	s.Log.Info(types.Greeting(s.Identity.DeviceID()))
}

// Tick sends the placeholder status message.
func (s *Service) Tick() {
	s.Sender.Send(types.TickType, types.TickBody)
}

// Run initialises and ticks every Interval until ctx is cancelled. It runs
// on the caller's goroutine; ticks never overlap.
func (s *Service) Run(ctx context.Context) {
	sleep := s.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	s.Initialize(ctx)
	s.state.Store(uint32(StateRunning))
	defer s.state.Store(uint32(StateStopped))

	for {
		if ctx.Err() != nil {
			return
		}
		s.Tick()
		if !sleep(ctx, s.Interval) {
			return
		}
	}
}

// Sleep is the default blocking delay.
func Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
