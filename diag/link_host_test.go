//go:build !rp2040 && !rp2350

package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"soilsensor-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTYLink_NoPathUsesFallback(t *testing.T) {
	var fb bytes.Buffer
	l := NewTTYLink("", &fb)
	assert.True(t, l.WaitReady(context.Background(), time.Millisecond))

	_, err := l.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", fb.String())
	assert.NoError(t, l.Close())
}

func TestTTYLink_WaitsForDeviceNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttyGS0")
	var fb bytes.Buffer
	l := NewTTYLink(path, &fb)
	t.Cleanup(func() { _ = l.Close() })

	// Not there yet: falls back.
	_, err := l.Write([]byte("early\n"))
	require.NoError(t, err)
	assert.Equal(t, "early\n", fb.String())

	go func() {
		time.Sleep(60 * time.Millisecond)
		_ = os.WriteFile(path, nil, 0o600)
	}()
	require.True(t, l.WaitReady(context.Background(), 3*time.Second))

	_, err = l.Write([]byte("late\n"))
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "late\n", string(got))
}

func TestTTYLink_TimeoutIsNotAnError(t *testing.T) {
	l := NewTTYLink(filepath.Join(t.TempDir(), "missing"), &bytes.Buffer{})
	assert.False(t, l.WaitReady(context.Background(), 20*time.Millisecond))
}

func TestWriter_RotatingCopy(t *testing.T) {
	var link bytes.Buffer
	w, c := Writer(types.SerialConfig{}, &link)
	assert.Same(t, &link, w)
	assert.NoError(t, c.Close())

	file := filepath.Join(t.TempDir(), "diag.log")
	w, c = Writer(types.SerialConfig{File: file, MaxSizeMB: 1}, &link)
	NewLineLog(w).Info("both")
	require.NoError(t, c.Close())

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "INFO app: both\r\n", string(got))
	assert.Contains(t, link.String(), "INFO app: both")
}

func TestLog_JSONRecord(t *testing.T) {
	var buf bytes.Buffer
	NewLog(&buf, "json").Info("In a loop")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "In a loop", rec["msg"])
	assert.Equal(t, "app", rec["category"])
}

func TestLog_TextRecord(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(&buf, "text")
	l.Info("logging path active")
	l.l.Debug("dropped")

	out := buf.String()
	assert.Contains(t, out, `msg="logging path active"`)
	assert.Contains(t, out, "category=app")
	assert.NotContains(t, out, "dropped")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
