package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level AtomicLevel
	out   *appenderSet
}

// appenderSet is shared by a logger and all of its subloggers, so an appender added to the root
// after the driver was built still sees the driver's entries.
type appenderSet struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (set *appenderSet) add(appender Appender) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.appenders = append(set.appenders, appender)
}

func (set *appenderSet) list() []Appender {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return set.appenders
}

func newImpl(name string, level Level, appenders ...Appender) *impl {
	return &impl{
		name:  name,
		level: NewAtomicLevelAt(level),
		out:   &appenderSet{appenders: appenders},
	}
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{name: name, level: NewAtomicLevelAt(imp.level.Get()), out: imp.out}
}

func (imp *impl) Level() Level {
	return imp.level.Get()
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) AddAppender(appender Appender) {
	imp.out.add(appender)
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.out.list() {
		err = multierr.Combine(err, appender.Sync())
	}
	return err
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	key := DebugKey(ctx)
	if key == "" && imp.level.Get() > DEBUG {
		return
	}
	imp.emit(DEBUG, key, msg, keysAndValues)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.level.Get() <= INFO {
		imp.emit(INFO, "", msg, keysAndValues)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.level.Get() <= WARN {
		imp.emit(WARN, "", msg, keysAndValues)
	}
}

// emit must be called directly from the exported method so the caller lookup lands on the line
// that logged.
func (imp *impl) emit(level Level, debugKey, msg string, keysAndValues []interface{}) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     zapcore.NewEntryCaller(runtime.Caller(2)),
	}
	fields := pairsToFields(keysAndValues)
	if debugKey != "" {
		fields = append(fields, zap.String("debug_key", debugKey))
	}
	for _, appender := range imp.out.list() {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// pairsToFields reads keysAndValues as alternating keys and values.
func pairsToFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
