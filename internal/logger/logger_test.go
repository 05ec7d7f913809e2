package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("dashboard error", zap.String("stage", "load"))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "dashboard error", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "load", entry["stage"])
}

func TestNewWithWriterDefaultsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(Config{Level: "chatty"}, &buf)
	require.NoError(t, err)
	log.Debug("skip")
	log.Info("keep")
	assert.Contains(t, buf.String(), "keep")
	assert.NotContains(t, buf.String(), "skip")
}

type captured struct {
	events []*sentry.Event
}

func (c *captured) CaptureEvent(event *sentry.Event) *sentry.EventID {
	c.events = append(c.events, event)
	return nil
}

func TestSentryCoreForwardsErrors(t *testing.T) {
	hub := &captured{}
	core := newSentryCore(zapcore.DebugLevel, hub)
	log := zap.New(core).With(zap.String("session_id", "s1"))

	log.Warn("ignored")
	log.Error("dashboard error", zap.Error(errors.New("HTTP 500")), zap.Int("status", 500))

	require.Len(t, hub.events, 1)
	event := hub.events[0]
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "dashboard error", event.Message)
	assert.Equal(t, "s1", event.Extra["session_id"])
	assert.Equal(t, "HTTP 500", event.Extra["error"])
	assert.EqualValues(t, 500, event.Extra["status"])
}
