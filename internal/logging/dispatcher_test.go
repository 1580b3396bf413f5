package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(dl *DispatcherLogger)
	}{
		{"DEBUG", func(dl *DispatcherLogger) { dl.Debug("msg", "command", ":SAVE:") }},
		{"INFO", func(dl *DispatcherLogger) { dl.Info("msg", "command", ":SAVE:") }},
		{"ERROR", func(dl *DispatcherLogger) { dl.Error("msg", "command", ":SAVE:") }},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			dl := NewDispatcherLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

			tt.log(dl)

			entry := decodeEntry(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "msg", entry["msg"])
			assert.Equal(t, ":SAVE:", entry["command"])
			assert.Equal(t, "dispatcher", entry["component"])
		})
	}
}

func TestDispatcherLogger_NumericValues(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	dl.Info("handled", "members", 4)

	entry := decodeEntry(t, &buf)
	assert.Equal(t, float64(4), entry["members"])
}

func TestDispatcherLogger_NilFallsBackToDefault(t *testing.T) {
	dl := NewDispatcherLogger(nil)
	require.NotNil(t, dl.Logger)
	assert.NotPanics(t, func() { dl.Debug("quiet") })
}
