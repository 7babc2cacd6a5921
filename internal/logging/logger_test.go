package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Console: &console})

	logger.Debug("hidden")
	logger.Info("run finished", "steps", 3, "error", "boom")

	out := console.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "run finished")
	assert.Contains(t, out, "steps=3")
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=")
}

func TestNew_FanoutToFile(t *testing.T) {
	var console, file bytes.Buffer
	logger := New(Options{Level: slog.LevelWarn, Console: &console, File: &file})

	logger.Debug("step", "n", 1)
	logger.Warn("shadowed rule", "line", 4)

	assert.NotContains(t, console.String(), "step")
	assert.Contains(t, console.String(), "shadowed rule")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "step", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.EqualValues(t, 1, rec["n"])
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() { logger.Error("nothing") })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
