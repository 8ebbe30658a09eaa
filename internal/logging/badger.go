package logging

import (
	"strings"

	"go.uber.org/zap"
)

// BadgerLogger routes badger's log lines into zap. Badger logs routine
// compaction at info level, so info is demoted to debug.
type BadgerLogger struct {
	sugar *zap.SugaredLogger
}

func NewBadgerLogger(logger *zap.Logger) *BadgerLogger {
	return &BadgerLogger{sugar: logger.Named("badger").WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *BadgerLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(trim(format), args...)
}

func (l *BadgerLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(trim(format), args...)
}

func (l *BadgerLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debugf(trim(format), args...)
}

func (l *BadgerLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(trim(format), args...)
}

func trim(format string) string {
	return strings.TrimRight(format, "\n")
}
