package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("canvas", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("canvas", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	_, err = NewLogger("canvas", "loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestNewLoggerConfig(t *testing.T) {
	cfg := NewLoggerConfig()
	assert.Equal(t, "console", cfg.Encoding)
	assert.True(t, cfg.DisableStacktrace)
	assert.Equal(t, zap.InfoLevel, cfg.Level.Level())
}

func TestNewObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debug("frame", zap.Int("seq", 7))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "frame", entries[0].Message)
	assert.Equal(t, int64(7), entries[0].ContextMap()["seq"])
}

func TestNewNop(t *testing.T) {
	assert.False(t, NewNop().Core().Enabled(zapcore.ErrorLevel))
}
