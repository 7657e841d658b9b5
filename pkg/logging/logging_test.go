package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chazu/formcutter/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"WARN":    "warn",
		"warning": "warn",
		"error":   "error",
		"":        "info",
		"bogus":   "info",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in).String(), "level %q", in)
	}
}

func TestNewRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formcutter.log")
	logger, closeFn, err := New(config.Logging{Logfile: path, MaxSize: 1, MaxAge: 1, Level: "warn"})
	require.NoError(t, err)

	logger.Info("dropped below level")
	logger.Warn("open form exported", zap.Int("forms", 1))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "open form exported", rec["msg"])
	assert.Equal(t, float64(1), rec["forms"])
}

func TestNewConsole(t *testing.T) {
	logger, closeFn, err := New(config.Default().Logging)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	_ = closeFn()
}

func TestNewRejectsNegativeRotation(t *testing.T) {
	_, _, err := New(config.Logging{Logfile: filepath.Join(t.TempDir(), "x.log"), MaxSize: -1})
	assert.Error(t, err)
}
