package geoip

import (
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// newErrorLogger returns a retryablehttp.LeveledLogger that only forwards
// errors, at debug level. Lookup reports failures itself.
func newErrorLogger(log *zap.Logger) retryablehttp.LeveledLogger {
	return &errorLogger{log: log.Sugar()}
}

type errorLogger struct {
	log *zap.SugaredLogger
}

func (l *errorLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *errorLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *errorLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (l *errorLogger) Warn(msg string, keysAndValues ...interface{}) {}
