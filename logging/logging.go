// Package logging contains the zap backed loggers used by the tfmini driver and its tools.
package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// New returns a logger at INFO writing to appenders. Subloggers share its appenders.
func New(name string, appenders ...Appender) Logger {
	return newImpl(name, INFO, appenders...)
}

// NewTestLogger returns a logger at DEBUG that writes through tb.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also records entries for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newImpl("", DEBUG, NewTestAppender(tb), core), logs
}
