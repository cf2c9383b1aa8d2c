package logging

import "context"

// Logger is what the driver, the bus layer and the command line tool log through. Register and
// frame traces go through CDebugw so they can be switched on for one command by its context.
type Logger interface {
	Sublogger(subname string) Logger
	Level() Level
	SetLevel(level Level)
	AddAppender(appender Appender)
	Sync() error

	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}
