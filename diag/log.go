// Package diag is the diagnostic serial log: a writer for the link, its
// readiness wait, and the info-level sinks the agent writes to.
package diag

import (
	"context"
	"io"
	"sync"
	"time"
)

// Category tags every record written by the agent.
const Category = "app"

// LineLog writes "INFO app: <msg>\r\n" lines; used where slog is too heavy.
type LineLog struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineLog(w io.Writer) *LineLog { return &LineLog{w: w} }

func (l *LineLog) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, "INFO "+Category+": "+msg+"\r\n")
}

// WaitFor polls cond every poll until it holds, timeout elapses or ctx is
// done. It reports whether cond held.
func WaitFor(ctx context.Context, cond func() bool, timeout, poll time.Duration) bool {
	if cond() {
		return true
	}
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(poll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return cond()
		case <-tick.C:
			if cond() {
				return true
			}
		}
	}
}
