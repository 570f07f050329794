package logger

import (
	"bufio"
	"bytes"
	"code4u_backend/internal/config"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		level string
		mode  string
		want  zapcore.Level
	}{
		{"", "debug", zapcore.DebugLevel},
		{"", "release", zapcore.InfoLevel},
		{"warn", "debug", zapcore.WarnLevel},
		{"ERROR", "release", zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		got, err := resolveLevel(config.LogConfig{Level: tc.level}, tc.mode)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.level+"/"+tc.mode)
	}

	_, err := resolveLevel(config.LogConfig{Level: "loud"}, "debug")
	assert.Error(t, err)
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(config.LogConfig{Level: "warn"}, "debug", zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", zap.String("level_id", "level-1"))
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "level-1")
}

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var console bytes.Buffer
	l, err := NewLogger(config.LogConfig{File: path, MaxSizeMB: 1}, "release", zapcore.AddSync(&console))
	require.NoError(t, err)

	l.Info("Level completed", zap.String("user_id", "u1"))
	l.Debug("dropped")
	require.NoError(t, l.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 1)
	assert.Equal(t, "Level completed", lines[0]["msg"])
	assert.Equal(t, "u1", lines[0]["user_id"])
	assert.Equal(t, "code4u-backend", lines[0]["service"])
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	err := InitLogger(&config.Config{Log: config.LogConfig{Level: "verbose"}})
	assert.Error(t, err)
	assert.Same(t, prev, Log)
}
