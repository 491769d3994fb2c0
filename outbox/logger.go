package outbox

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"

	"github.com/geodepot/geodepot/observability/logger"
)

var _ watermill.LoggerAdapter = (*loggerAdapter)(nil)

// loggerAdapter adapts the zap based logger to the watermill Logger.
type loggerAdapter struct {
	base logger.Logger
}

func newLoggerAdapter(logger logger.Logger) *loggerAdapter {
	return &loggerAdapter{
		base: logger,
	}
}

func (l *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.withZapFields(fields).With("error", err).Error(msg)
}

func (l *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.withZapFields(fields).Info(msg)
}

func (l *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.withZapFields(fields).Debug(msg)
}

func (l *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.withZapFields(fields).Debug(msg)
}

func (l *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{
		base: l.withZapFields(fields),
	}
}

func (l *loggerAdapter) withZapFields(fields watermill.LogFields) logger.Logger {
	log := l.base
	for k, v := range fields {
		log = log.With(zap.Any(k, v))
	}
	return log
}
