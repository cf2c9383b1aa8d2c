package logging

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// Level is a logging level.
type Level int

// The supported logging levels, in increasing order of severity.
const (
	DEBUG Level = iota - 1
	INFO
	WARN
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	}
	return fmt.Sprintf("Level(%d)", int(level))
}

// AsZap converts the Level to a `zapcore.Level`.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// AtomicLevel is a level that can be read and written concurrently.
type AtomicLevel struct {
	val *atomic.Int32
}

// NewAtomicLevelAt creates a new AtomicLevel at the given level.
func NewAtomicLevelAt(initLevel Level) AtomicLevel {
	return AtomicLevel{val: atomic.NewInt32(int32(initLevel))}
}

// Set changes the level.
func (level AtomicLevel) Set(newLevel Level) {
	level.val.Store(int32(newLevel))
}

// Get returns the level.
func (level AtomicLevel) Get() Level {
	return Level(level.val.Load())
}
