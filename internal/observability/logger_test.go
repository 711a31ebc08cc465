package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/surveywalk/internal/config"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1)) // debug level
}

func TestNewLoggerBadLevelFallsBack(t *testing.T) {
	log, err := NewLogger(config.LoggerConfig{Level: "chatty", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1), "bad level falls back to info")
}

func TestNewLoggerFileSink(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.log")
	log, err := NewLogger(config.LoggerConfig{Level: "info", Format: "console", LogFile: file, MaxSize: 1})
	require.NoError(t, err)

	log.Info("traversal started")
	// stdout Sync can fail on some platforms; only the file sink matters here
	_ = log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "traversal started")
}
