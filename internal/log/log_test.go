package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultConfig(t *testing.T) {
	t.Parallel()

	logger := New(nil)
	assert.NotNil(t, logger)
}

func TestNew_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo})

	logger.Info("test message", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "ts")
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo, Debug: true})

	logger.Debug("debug message")
	assert.Contains(t, buf.String(), "debug message")
}

func TestNew_InfoLevelHidesDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo})

	logger.Debug("debug message")
	assert.Empty(t, buf.String())
}
