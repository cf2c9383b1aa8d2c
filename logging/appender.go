package logging

import (
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. It is the write half of `zapcore.Core`, so an observer
// core can be used directly.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes one tab separated line per entry.
type ConsoleAppender struct {
	io.Writer
}

// NewWriterAppender creates a new appender that writes to the input writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// NewFileAppender creates an appender writing to filename, rotated at 10MB with three compressed
// backups kept. The returned closer must be closed once logging is done.
func NewFileAppender(filename string) (ConsoleAppender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,
		MaxBackups: 3,
		Compress:   true,
	}
	return ConsoleAppender{rotator}, rotator
}

func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	fmt.Fprintln(appender.Writer, line)
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

// formatEntry renders time, level, logger name, caller, message and the fields as JSON. The line
// is still usable when the fields fail to encode; the error is returned alongside it.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{entry.Time.Format(timeFormat), strings.ToUpper(entry.Level.String())}
	if entry.LoggerName != "" {
		parts = append(parts, entry.LoggerName)
	}
	if entry.Caller.Defined {
		parts = append(parts, fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(entry.Caller.File)), path.Base(entry.Caller.File), entry.Caller.Line))
	}
	parts = append(parts, entry.Message)
	if len(fields) == 0 {
		return strings.Join(parts, "\t"), nil
	}

	// an empty entry leaves only the fields, in the order they were logged
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(parts, "\t"), err
	}
	defer buf.Free()
	return strings.Join(append(parts, buf.String()), "\t"), nil
}
