package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("DEBUG")
	assert.Equal(t, zapcore.DebugLevel, logLevel.Level())

	SetLevel("not-a-level")
	assert.Equal(t, zapcore.DebugLevel, logLevel.Level())

	SetLevel("warn")
	assert.Equal(t, zapcore.WarnLevel, logLevel.Level())
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNopLogger("test")
	assert.Equal(t, "test", l.Name())
	assert.NotPanics(t, func() {
		l.Debug("debug %d", 1)
		l.Info("info %s", "x")
		l.Warning("warn")
		l.With("source", "tariffs").Error("error %v", nil)
	})
}
