package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"tariff-observer/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------

var (
	baseMu   sync.Mutex
	base     *zap.Logger
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	sugar  *zap.SugaredLogger
	config *models.MConfig
}

// -----------------------------------------------------------------------------

// NewLogger creates a new named Logger sharing the process-wide zap core.
// The level from config, when present, is applied to every logger.
func NewLogger(config *models.MConfig, name string) *Logger {
	if config != nil && config.LogLevel != "" {
		SetLevel(config.LogLevel)
	}
	return &Logger{
		name:   name,
		sugar:  root().Named(name).Sugar(),
		config: config,
	}
}

// -----------------------------------------------------------------------------

// NewNopLogger returns a Logger that discards everything. Used by tests.
func NewNopLogger(name string) *Logger {
	return &Logger{name: name, sugar: zap.NewNop().Sugar()}
}

// -----------------------------------------------------------------------------

// SetLevel changes the level of every logger. Unknown levels are ignored.
func SetLevel(level string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return
	}
	logLevel.SetLevel(l)
}

// -----------------------------------------------------------------------------

func root() *zap.Logger {
	baseMu.Lock()
	defer baseMu.Unlock()
	if base != nil {
		return base
	}

	config := zap.NewProductionConfig()
	config.Level = logLevel
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: falling back to nop logger: %v\n", err)
		l = zap.NewNop()
	}
	base = l
	return base
}

// -----------------------------------------------------------------------------

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// With returns a child logger carrying structured key/value context
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{name: l.name, sugar: l.sugar.With(keysAndValues...), config: l.config}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Errorf("CRITICAL: "+format, args...)
	Sync()
	os.Exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered log entries
func Sync() {
	baseMu.Lock()
	defer baseMu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
