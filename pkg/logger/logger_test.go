package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	prev := Get()
	Set(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { Set(prev) })
	return buf
}

func TestInfow(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	Infow("forecast fetched", "tool", "weather_forecast", "periods", 14)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "forecast fetched", entry["msg"])
	assert.Equal(t, "weather_forecast", entry["tool"])
	assert.Equal(t, float64(14), entry["periods"])
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	Debugf("grid lookup for %f,%f", 47.6, -122.3)

	assert.Empty(t, buf.String())
}

func TestDebugEmittedAtDebugLevel(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	Debug("grid lookup")

	assert.Contains(t, buf.String(), "grid lookup")
}

func TestErrorf(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	Errorf("request failed: %v", assert.AnError)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
}
