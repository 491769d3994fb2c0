package logger

import (
	"context"
	"sync"
	"sync/atomic"
)

// The package-level functions log through a process-wide Logger. Until
// SetGlobal runs they fall back to a debug-level pretty logger, so
// early startup code and tests can log without wiring anything.
//
//nolint:gochecknoglobals // process-wide logger singleton
var (
	global  atomic.Value // holds Logger
	setOnce sync.Once
	lazy    sync.Once
)

// SetGlobal installs the process-wide logger built from cfg. Call it
// once during startup, before anything logs; a second call panics.
func SetGlobal(cfg Config) {
	installed := false
	setOnce.Do(func() {
		// Disarm the lazy fallback.
		lazy.Do(func() {})

		l, err := newLogger(cfg)
		if err != nil {
			panic("[logger]: failed to initialize global logger: " + err.Error())
		}
		global.Store(l)
		installed = true
	})
	if !installed {
		panic("[logger]: SetGlobal can only be called once")
	}
}

// current returns the installed logger, arming the fallback when
// nothing was installed yet.
func current() Logger {
	if v := global.Load(); v != nil {
		l, ok := v.(Logger)
		if !ok {
			panic("[logger]: global contains invalid type")
		}
		return l
	}

	lazy.Do(func() {
		l, err := newLogger(Config{Level: levelDebug, Encoding: encPretty})
		if err != nil {
			panic("[logger]: failed to initialize default logger: " + err.Error())
		}
		global.Store(l)
	})

	l, ok := global.Load().(Logger)
	if !ok {
		panic("[logger]: global contains invalid type after initialization")
	}
	return l
}

// Debug logs a debug message through the global logger.
func Debug(msg any) { current().Debug(msg) }

// Info logs an info message through the global logger.
func Info(msg any) { current().Info(msg) }

// Warn logs a warning through the global logger.
func Warn(msg any) { current().Warn(msg) }

// Error logs an error message through the global logger.
func Error(msg any) { current().Error(msg) }

// Fatal logs through the global logger, then exits the process.
func Fatal(msg any) { current().Fatal(msg) }

// Debugf logs a formatted debug message through the global logger.
func Debugf(format string, args ...any) { current().Debugf(format, args...) }

// Infof logs a formatted info message through the global logger.
func Infof(format string, args ...any) { current().Infof(format, args...) }

// Warnf logs a formatted warning through the global logger.
func Warnf(format string, args ...any) { current().Warnf(format, args...) }

// Errorf logs a formatted error message through the global logger.
func Errorf(format string, args ...any) { current().Errorf(format, args...) }

// Fatalf logs a formatted message through the global logger, then
// exits the process.
func Fatalf(format string, args ...any) { current().Fatalf(format, args...) }

// Warnx logs an errx error with its structured fields at warn level.
func Warnx(err error) { current().Warnx(err) }

// Errorx logs an errx error with its structured fields at error level.
func Errorx(err error) { current().Errorx(err) }

// Fatalx logs an errx error with its structured fields, then exits the
// process.
func Fatalx(err error) { current().Fatalx(err) }

// With returns the global logger extended with the given key-value
// pairs.
func With(keysAndValues ...any) Logger {
	return current().With(keysAndValues...)
}

// WithContext returns the global logger enriched with the request
// metadata carried by ctx.
func WithContext(ctx context.Context) Logger {
	return current().WithContext(ctx)
}

// Named returns the global logger scoped under name.
func Named(name string) Logger {
	return current().Named(name)
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	return current().Sync()
}
