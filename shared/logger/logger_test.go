package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	l, err := New(&Config{
		Level:      level,
		Format:     "json",
		TimeFormat: time.RFC3339,
		writer:     output,
	})
	require.NoError(t, err)
	return l, output
}

func decodeLines(t *testing.T, output *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel string
		emit      func(l *Logger)
	}{
		{
			name:      "debug level keeps debug",
			level:     "debug",
			wantLevel: "DEBUG",
			emit: func(l *Logger) {
				l.Debug("kept", slog.String("key", "value"))
			},
		},
		{
			name:      "info level drops debug",
			level:     "info",
			wantLevel: "INFO",
			emit: func(l *Logger) {
				l.Debug("dropped")
				l.Info("kept", slog.String("key", "value"))
			},
		},
		{
			name:      "warn level drops info",
			level:     "warn",
			wantLevel: "WARN",
			emit: func(l *Logger) {
				l.Info("dropped")
				l.Warn("kept", slog.String("key", "value"))
			},
		},
		{
			name:      "error level drops warn",
			level:     "error",
			wantLevel: "ERROR",
			emit: func(l *Logger) {
				l.Warn("dropped")
				l.Error("kept", slog.String("key", "value"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, output := newJSONLogger(t, tt.level)
			tt.emit(l)

			entries := decodeLines(t, output)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
			assert.Equal(t, "kept", entries[0]["msg"])
			assert.Equal(t, "value", entries[0]["key"])
			assert.Contains(t, entries[0], "time")
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	output := &bytes.Buffer{}
	l, err := New(&Config{Level: "info", Format: "console", NoColor: true, writer: output})
	require.NoError(t, err)

	l.Info("console test")

	assert.Contains(t, output.String(), "INF")
	assert.Contains(t, output.String(), "console test")
}

func TestNew_SourceLocation(t *testing.T) {
	output := &bytes.Buffer{}
	l, err := New(&Config{Level: "info", Format: "json", EnableSource: true, writer: output})
	require.NoError(t, err)

	l.Info("message with source")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	source, ok := entries[0]["source"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, source, "function")
	assert.Contains(t, source, "file")
	assert.Contains(t, source, "line")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNew_FileOutputError(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestNewDefaultAndNop(t *testing.T) {
	assert.NotNil(t, NewDefault().Logger)

	nop := NewNop()
	require.NotNil(t, nop.Logger)
	nop.Info("goes nowhere")
	assert.NoError(t, nop.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelInfo}, // case-sensitive
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_WithGroup(t *testing.T) {
	l, output := newJSONLogger(t, "info")

	l.WithGroup("mygroup").Info("test message", slog.String("key", "value"))

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	group := entries[0]["mygroup"].(map[string]interface{})
	assert.Equal(t, "value", group["key"])
}

func TestLogger_WithAttrs(t *testing.T) {
	l, output := newJSONLogger(t, "info")

	l.WithAttrs(
		slog.String("request_id", "12345"),
		slog.String("user_id", "user-67890"),
	).Info("test message")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "12345", entries[0]["request_id"])
	assert.Equal(t, "user-67890", entries[0]["user_id"])
}

func TestLogger_With(t *testing.T) {
	l, output := newJSONLogger(t, "info")

	l.With(slog.String("service", "petshop"), slog.Int("version", 1)).Info("operation complete")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "petshop", entries[0]["service"])
	assert.Equal(t, float64(1), entries[0]["version"]) // JSON numbers are float64
}
