// Package logger is the structured logging layer of the service.
//
// It is a thin wrapper over zap: components receive the Logger
// interface, log lines carry the request metadata found in the
// context, and errx errors unfold into structured fields instead of
// flat strings.
package logger

import (
	"context"
	"errors"
	"os"

	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/geodepot/geodepot/meta"
)

// Logger is the logging interface handed to every component.
type Logger interface {
	// Plain messages, one per level. Fatal exits the process.
	Debug(msg any)
	Info(msg any)
	Warn(msg any)
	Error(msg any)
	Fatal(msg any)

	// Printf-style variants. Fatalf exits the process.
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)

	// Warnx, Errorx and Fatalx log an error, unfolding errx errors
	// into code, type, trace and field entries. Fatalx exits the
	// process.
	Warnx(err error)
	Errorx(err error)
	Fatalx(err error)

	// With returns a logger that adds the given key-value pairs to
	// every entry.
	With(keysAndValues ...any) Logger
	// WithContext returns a logger that adds the request metadata
	// carried by ctx to every entry.
	WithContext(ctx context.Context) Logger

	// Named appends a sub-scope to the logger's name.
	Named(name string) Logger

	// Sync flushes buffered entries. Call it on shutdown.
	Sync() error
}

// logger implements Logger on top of zap's SugaredLogger.
type logger struct {
	*zap.SugaredLogger
}

// New creates a new Logger instance with the provided configuration.
func New(cfg Config) (Logger, error) {
	return newLogger(cfg)
}

func newLogger(cfg Config) (Logger, error) {
	if cfg.Disable {
		return &logger{zap.NewNop().Sugar()}, nil
	}

	zapConfig, err := cfg.getZapConfig()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	// Pretty mode builds a core around the colored development encoder.
	if cfg.Encoding == encPretty {
		core := zapcore.NewCore(
			newPrettyEncoder(zapConfig.EncoderConfig),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		)
		zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
		return &logger{zapLogger.Sugar()}, nil
	}

	jsonLogger, err := zapConfig.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &logger{jsonLogger.Sugar()}, nil
}

func (l *logger) Warnx(err error) {
	var e errx.ErrorX
	if errors.As(err, &e) {
		l.withErrorX(e).Warn(err.Error())
		return
	}
	l.Warn(err.Error())
}

func (l *logger) Errorx(err error) {
	var e errx.ErrorX
	if errors.As(err, &e) {
		l.withErrorX(e).Error(err.Error())
		return
	}
	l.Error(err.Error())
}

func (l *logger) Fatalx(err error) {
	var e errx.ErrorX
	if errors.As(err, &e) {
		l.withErrorX(e).Fatal(err.Error())
		return
	}
	l.Fatal(err.Error())
}

func (l *logger) withErrorX(e errx.ErrorX) Logger {
	return l.With(
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_trace", e.Trace(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	)
}

func (l *logger) With(keysAndValues ...any) Logger {
	return &logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}

	md := meta.ExtractMetaFromContext(ctx)
	if len(md) == 0 {
		return l
	}

	// Keys must be plain strings for the sugared logger.
	kv := make([]any, 0, len(md)*2)
	for k, v := range md {
		kv = append(kv, string(k), v)
	}
	return l.With(kv...)
}

func (l *logger) Named(name string) Logger {
	return &logger{SugaredLogger: l.SugaredLogger.Named(name)}
}

func (l *logger) Debug(msg any) { l.SugaredLogger.Debug(msg) }
func (l *logger) Info(msg any)  { l.SugaredLogger.Info(msg) }
func (l *logger) Warn(msg any)  { l.SugaredLogger.Warn(msg) }
func (l *logger) Error(msg any) { l.SugaredLogger.Error(msg) }
func (l *logger) Fatal(msg any) { l.SugaredLogger.Fatal(msg) }
