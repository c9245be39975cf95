//go:build !rp2040 && !rp2350

package diag

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"soilsensor-go/types"

	"gopkg.in/natefinch/lumberjack.v2"
)

const pollInterval = 50 * time.Millisecond

// TTYLink writes to a serial device node, opened lazily once it exists
// (USB gadgets enumerate late). Until then, or with no path, records go
// to the fallback writer.
type TTYLink struct {
	path     string
	fallback io.Writer

	mu sync.Mutex
	f  *os.File
}

func NewTTYLink(path string, fallback io.Writer) *TTYLink {
	if fallback == nil {
		fallback = os.Stderr
	}
	return &TTYLink{path: path, fallback: fallback}
}

// Ready reports whether records reach the device.
func (l *TTYLink) Ready() bool {
	if l.path == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openLocked()
}

// WaitReady blocks until the device opens or timeout passes.
func (l *TTYLink) WaitReady(ctx context.Context, timeout time.Duration) bool {
	return WaitFor(ctx, l.Ready, timeout, pollInterval)
}

func (l *TTYLink) openLocked() bool {
	if l.f != nil {
		return true
	}
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return false
	}
	l.f = f
	return true
}

func (l *TTYLink) Write(p []byte) (int, error) {
	if l.path == "" {
		return l.fallback.Write(p)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.openLocked() {
		return l.fallback.Write(p)
	}
	n, err := l.f.Write(p)
	if err != nil {
		// Device went away; reopen on the next write.
		_ = l.f.Close()
		l.f = nil
		return l.fallback.Write(p)
	}
	return n, nil
}

func (l *TTYLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Writer combines the link with the optional rotating file copy. The
// returned closer releases the file.
func Writer(cfg types.SerialConfig, link io.Writer) (io.Writer, io.Closer) {
	if cfg.File == "" {
		return link, nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: 3,
	}
	return io.MultiWriter(link, lj), lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
