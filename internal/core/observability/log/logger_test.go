package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core).With(String("component", "test"))

	logger.Warn("Something happened",
		Int("count", 3),
		Uint64("seq", 42),
		Float64("ratio", 0.5),
		Bool("first", true),
		Duration("elapsed", 15*time.Millisecond),
		Error(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "Something happened", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "test", ctx["component"])
	assert.Equal(t, int64(3), ctx["count"])
	assert.Equal(t, uint64(42), ctx["seq"])
	assert.Equal(t, 0.5, ctx["ratio"])
	assert.Equal(t, true, ctx["first"])
	assert.Equal(t, 15*time.Millisecond, ctx["elapsed"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogger_NilErrorIsOmitted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewWithCore(core).Info("Done", Error(nil))

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "error")
}

func TestLogger_Enabled(t *testing.T) {
	core, _ := observer.New(zapcore.WarnLevel)
	logger := NewWithCore(core)

	assert.False(t, logger.Enabled(LevelDebug))
	assert.False(t, logger.Enabled(LevelInfo))
	assert.True(t, logger.Enabled(LevelWarn))
	assert.True(t, logger.Enabled(LevelError))

	assert.False(t, NewNop().Enabled(LevelError))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("fatal")
	assert.Error(t, err)
}
